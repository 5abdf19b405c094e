package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// UnaryNode implements the `+ - ~ !` prefix operators of spec.md §4.5.
type UnaryNode struct {
	op      string
	operand Node

	promoted corapi.ElementType
	typ      StaticType
}

func (n *UnaryNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}
	if err := n.operand.Compile(childCtx); err != nil {
		return err
	}
	ot := n.operand.StaticType()

	switch n.op {
	case "!":
		if !ot.IsBoolean {
			return dbgerr.New(dbgerr.Type, "'!' requires a boolean operand")
		}
		n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
		return nil
	case "~":
		if !ot.IsNumeric || isFloating(ot.Sig.CorType) {
			return dbgerr.New(dbgerr.Type, "'~' requires an integral operand")
		}
		n.promoted = promoteSmallInt(ot.Sig.CorType)
		n.typ = StaticType{IsNumeric: true, Sig: corapi.TypeSignature{CorType: n.promoted, TypeName: canonicalNumericName(n.promoted)}}
		return nil
	case "+":
		if !ot.IsNumeric {
			return dbgerr.New(dbgerr.Type, "unary '+' requires a numeric operand")
		}
		n.promoted = promoteUnaryPlus(ot.Sig.CorType)
		n.typ = StaticType{IsNumeric: true, Sig: corapi.TypeSignature{CorType: n.promoted, TypeName: canonicalNumericName(n.promoted)}}
		return nil
	case "-":
		if !ot.IsNumeric {
			return dbgerr.New(dbgerr.Type, "unary '-' requires a numeric operand")
		}
		n.promoted = promoteUnaryMinus(ot.Sig.CorType)
		n.typ = StaticType{IsNumeric: true, Sig: corapi.TypeSignature{CorType: n.promoted, TypeName: canonicalNumericName(n.promoted)}}
		return nil
	default:
		return dbgerr.New(dbgerr.Internal, "unknown unary operator "+n.op)
	}
}

func (n *UnaryNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	operand, err := n.operand.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	if n.op == "!" {
		b, err := primitiveBool(operand)
		if err != nil {
			return nil, err
		}
		return dbgvalue.NewPrimitive(corapi.ElementBoolean, !b), nil
	}

	p, ok := operand.(*dbgvalue.Primitive)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "unary operator applied to a non-primitive value")
	}

	if isFloating(n.promoted) {
		f := asFloat64(p.Raw())
		switch n.op {
		case "+":
			return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, f, 0, 0)), nil
		case "-":
			return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, -f, 0, 0)), nil
		}
	}

	i := asInt64(p.Raw())
	switch n.op {
	case "+":
		return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, 0, i, uint64(i))), nil
	case "-":
		return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, 0, -i, uint64(-i))), nil
	case "~":
		return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, 0, ^i, uint64(^i))), nil
	}
	return nil, dbgerr.New(dbgerr.Internal, "unknown unary operator "+n.op)
}

func (n *UnaryNode) StaticType() StaticType { return n.typ }
