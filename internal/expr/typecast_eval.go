package expr

import (
	"strings"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// csharpPrimitiveNames maps C#'s built-in keyword/alias spellings to their
// element type, covering both the keyword ("int") and the BCL name
// ("System.Int32") forms a cast's parenthesised type name may use.
var csharpPrimitiveNames = map[string]corapi.ElementType{
	"bool": corapi.ElementBoolean, "System.Boolean": corapi.ElementBoolean,
	"char": corapi.ElementChar, "System.Char": corapi.ElementChar,
	"sbyte": corapi.ElementI1, "System.SByte": corapi.ElementI1,
	"byte": corapi.ElementU1, "System.Byte": corapi.ElementU1,
	"short": corapi.ElementI2, "System.Int16": corapi.ElementI2,
	"ushort": corapi.ElementU2, "System.UInt16": corapi.ElementU2,
	"int": corapi.ElementI4, "System.Int32": corapi.ElementI4,
	"uint": corapi.ElementU4, "System.UInt32": corapi.ElementU4,
	"long": corapi.ElementI8, "System.Int64": corapi.ElementI8,
	"ulong": corapi.ElementU8, "System.UInt64": corapi.ElementU8,
	"float": corapi.ElementR4, "System.Single": corapi.ElementR4,
	"double": corapi.ElementR8, "System.Double": corapi.ElementR8,
}

// TypeCastNode implements `(T) expr` for both numeric conversions and
// reference-type casts (spec.md §4.5's TypeCast contract). Numeric casts
// narrow/widen the evaluated value; reference casts are checked at
// Evaluate against the runtime class's base-class chain and return the
// operand unchanged, since the debugger only needs the cast to type-check,
// not to allocate a new boxed representation.
type TypeCastNode struct {
	typeName string
	operand  Node

	targetElem corapi.ElementType
	isNumeric  bool
	typ        StaticType
}

func (n *TypeCastNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}
	if err := n.operand.Compile(childCtx); err != nil {
		return err
	}

	if elemType, ok := csharpPrimitiveNames[n.typeName]; ok {
		if !n.operand.StaticType().IsNumeric && !n.operand.StaticType().IsBoolean {
			return dbgerr.New(dbgerr.Type, "cannot cast a non-numeric value to "+n.typeName)
		}
		n.targetElem = elemType
		n.isNumeric = true
		n.typ = StaticType{
			IsNumeric: elemType != corapi.ElementBoolean,
			IsBoolean: elemType == corapi.ElementBoolean,
			Sig:       corapi.TypeSignature{CorType: elemType, TypeName: canonicalNumericName(elemType)},
		}
		return nil
	}

	if !n.operand.StaticType().IsReference {
		return dbgerr.New(dbgerr.Type, "cannot cast a value type to "+n.typeName)
	}
	if ctx.Frame != nil {
		if _, err := ctx.Frame.ResolveClass(n.typeName); err != nil {
			return dbgerr.Wrap(dbgerr.Resolution, "unknown cast target type "+n.typeName, err)
		}
	}
	n.typ = StaticType{IsReference: true, IsString: strings.HasSuffix(n.typeName, "String"), Sig: corapi.TypeSignature{TypeName: n.typeName, CorType: corapi.ElementClass}}
	return nil
}

func (n *TypeCastNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	value, err := n.operand.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	if !n.isNumeric {
		if err := checkCastCompatible(ctx, value, n.typeName); err != nil {
			return nil, err
		}
		return value, nil
	}

	p, ok := value.(*dbgvalue.Primitive)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "cast operand is not a primitive value")
	}

	if n.targetElem == corapi.ElementBoolean {
		b, ok := p.Raw().(bool)
		if !ok {
			return nil, dbgerr.New(dbgerr.Runtime, "cannot cast a non-boolean to bool")
		}
		return dbgvalue.NewPrimitive(corapi.ElementBoolean, b), nil
	}

	if isFloating(n.targetElem) {
		return dbgvalue.NewPrimitive(n.targetElem, wrapNumeric(n.targetElem, asFloat64(p.Raw()), 0, 0)), nil
	}
	i := asInt64(p.Raw())
	return dbgvalue.NewPrimitive(n.targetElem, narrowInt(n.targetElem, i)), nil
}

// narrowInt truncates i to the bit width/signedness of target, mirroring
// C#'s unchecked explicit-conversion semantics.
func narrowInt(target corapi.ElementType, i int64) interface{} {
	switch target {
	case corapi.ElementI1:
		return int8(i)
	case corapi.ElementU1:
		return uint8(i)
	case corapi.ElementI2:
		return int16(i)
	case corapi.ElementU2:
		return uint16(i)
	case corapi.ElementChar:
		return rune(uint16(i))
	case corapi.ElementI4:
		return int32(i)
	case corapi.ElementU4:
		return uint32(i)
	case corapi.ElementI8:
		return i
	case corapi.ElementU8:
		return uint64(i)
	default:
		return int32(i)
	}
}

// checkCastCompatible verifies value's runtime class is typeName or
// derives from it, walking the base chain with ctx's resolver; when the
// chain ends (or cannot be resolved further) without reaching typeName,
// the cast fails with a Runtime error. A null reference, or a value that
// is not a class instance, always casts successfully.
func checkCastCompatible(ctx *EvalContext, value dbgvalue.DbgObject, typeName string) error {
	if value.IsNull() {
		return nil
	}
	class, ok := value.(*dbgvalue.Class)
	if !ok {
		return nil
	}
	name := class.Type().TypeName
	for n := name; n != ""; {
		if n == typeName {
			return nil
		}
		if ctx.Frame == nil {
			break
		}
		resolved, err := ctx.Frame.ResolveClass(n)
		if err != nil {
			break
		}
		base, ok, err := resolved.BaseClass()
		if err != nil || !ok {
			break
		}
		n, err = base.Name()
		if err != nil {
			break
		}
	}
	return dbgerr.New(dbgerr.Runtime, "cannot cast "+name+" to "+typeName)
}

func (n *TypeCastNode) StaticType() StaticType { return n.typ }
