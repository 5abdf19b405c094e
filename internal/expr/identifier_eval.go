package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
	"github.com/coredbg/clrdbg/internal/frame"
)

// IdentifierNode resolves a name against the stack-frame view: locals
// and arguments first, then this.name, then implicit static fields of
// the containing class (spec.md §4.5's Identifier contract).
type IdentifierNode struct {
	name string

	typ StaticType
}

func (n *IdentifierNode) Compile(ctx *CompileContext) error {
	if ctx.Frame == nil {
		return dbgerr.New(dbgerr.Internal, "identifier compiled without a stack frame")
	}

	value, found, err := ctx.Frame.Lookup(n.name)
	if err != nil {
		return dbgerr.Wrap(dbgerr.Runtime, "failed to resolve identifier "+n.name, err)
	}
	if found {
		n.typ = staticTypeOf(value)
		return nil
	}

	if class, ok, err := ctx.Frame.Raw().ContainingClass(); err == nil && ok {
		if m, err := ctx.Frame.GetMemberFromClassName(mustClassName(class), n.name); err == nil {
			n.typ = staticTypeFromMember(m)
			return nil
		}
	}

	return dbgerr.New(dbgerr.Resolution, "identifier not found: "+n.name)
}

func (n *IdentifierNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	value, found, err := ctx.Frame.Lookup(n.name)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read identifier "+n.name, err)
	}
	if found {
		return ctx.Factory.Create(value, EvalDepth)
	}

	// Fall back to an implicit static field/property of the containing
	// class, mirroring the Compile-time fallback above.
	class, ok, err := ctx.Frame.Raw().ContainingClass()
	if err != nil || !ok {
		return nil, dbgerr.New(dbgerr.Resolution, "identifier not found: "+n.name)
	}
	m, err := ctx.Frame.GetMemberFromClassName(mustClassName(class), n.name)
	if err != nil {
		return nil, dbgerr.New(dbgerr.Resolution, "identifier not found: "+n.name)
	}
	if m.Field != nil && m.Field.IsStatic {
		v, err := class.StaticFieldValue(*m.Field, ctx.Frame.Raw())
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read static field "+n.name, err)
		}
		return ctx.Factory.Create(v, EvalDepth)
	}
	if m.Property != nil && m.Property.GetterToken != 0 {
		fn, err := ctx.Frame.Raw().FindFunction(m.Property.GetterToken)
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve getter for "+n.name, err)
		}
		result, err := ctx.Invoker.InvokeEval(ctx.Ctx, fn, nil, nil)
		if err != nil {
			return nil, err
		}
		return ctx.Factory.Create(result, EvalDepth-1)
	}
	return nil, dbgerr.New(dbgerr.NotImplemented, "identifier "+n.name+" has no readable value")
}

func (n *IdentifierNode) StaticType() StaticType { return n.typ }

func staticTypeOf(v corapi.Value) StaticType {
	elemType := v.ElementType()
	typeName := ""
	// For class/valuetype/object values the element type alone does not
	// carry the declared type name a following member access needs to
	// resolve against (`x.Field` needs x's class name); read it through
	// the metadata surface rather than materialising the whole value.
	if ov, ok := v.(corapi.ObjectValue); ok {
		if class, err := ov.Class(); err == nil {
			if name, err := class.Name(); err == nil {
				typeName = name
			}
		}
	}
	st := StaticType{Sig: corapi.TypeSignature{CorType: elemType, TypeName: typeName}}
	switch {
	case elemType == corapi.ElementBoolean:
		st.IsBoolean = true
	case elemType == corapi.ElementString:
		st.IsString, st.IsReference = true, true
	case isNumeric(elemType):
		st.IsNumeric = true
	default:
		st.IsReference = true
	}
	return st
}

func staticTypeFromMember(m *frame.Member) StaticType {
	var sig corapi.TypeSignature
	switch {
	case m.Field != nil:
		sig = m.Field.Type
	case m.Property != nil:
		sig = m.Property.Type
	}
	st := StaticType{Sig: sig}
	switch {
	case sig.CorType == corapi.ElementBoolean:
		st.IsBoolean = true
	case sig.CorType == corapi.ElementString:
		st.IsString, st.IsReference = true, true
	case isNumeric(sig.CorType):
		st.IsNumeric = true
	default:
		st.IsReference = true
	}
	return st
}

func mustClassName(class corapi.Class) string {
	name, err := class.Name()
	if err != nil {
		return ""
	}
	return name
}
