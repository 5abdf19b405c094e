package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// RawEvaluator is implemented by nodes whose value can be produced as an
// un-materialised corapi.Value, needed by postfix operators (member
// access, indexing, method calls) that must read fields or dispatch
// methods on the live runtime value rather than its already-summarised
// DbgObject form.
type RawEvaluator interface {
	EvaluateRaw(ctx *EvalContext) (corapi.Value, error)
}

// rawValueOf obtains node's value as a corapi.Value: directly through
// RawEvaluator when available, otherwise by materialising and unwrapping
// the retained handle of a class/string DbgObject.
func rawValueOf(ctx *EvalContext, node Node) (corapi.Value, error) {
	if re, ok := node.(RawEvaluator); ok {
		return re.EvaluateRaw(ctx)
	}
	obj, err := node.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if lit, ok := obj.(*literalStringObject); ok {
		return ctx.Invoker.InvokeNewString(ctx.Ctx, lit.value)
	}
	return rawValueFromObject(obj)
}

// rawValueFromObject unwraps the retained handle of an already-materialised
// class/string DbgObject, for callers that evaluated once already and must
// not re-invoke the node (arrays, whose element access has its own
// re-dereference rule and must not be double-evaluated for a receiver with
// side effects). A primitive is re-boxed through literalValue rather than
// rejected: constructing a generic scalar value needs no managed-code
// invocation on a real debug surface (unlike a getter or method call), so
// a computed/literal argument can still be passed to get_Item/method
// calls without an eval round trip. A literalStringObject has no handle to
// unwrap (it needs a real Invoker.InvokeNewString round trip to become a
// managed string): rawValueOf handles it before calling here, and one that
// does reach this function (an indexer receiver such as "abc"[0]) is
// rejected by the default case.
func rawValueFromObject(obj dbgvalue.DbgObject) (corapi.Value, error) {
	switch v := obj.(type) {
	case *dbgvalue.Class:
		if v.Handle() == nil {
			return nil, dbgerr.New(dbgerr.Runtime, "value has no retained handle to access further")
		}
		return v.Handle().Value()
	case *dbgvalue.String:
		return v.Handle().Value()
	case *dbgvalue.Primitive:
		return &literalValue{et: v.Type().CorType, raw: v.Raw()}, nil
	default:
		return nil, dbgerr.New(dbgerr.Type, "value has no members or elements to access")
	}
}

// literalValue adapts a computed/literal scalar to corapi.GenericValue so
// it can be passed where a corapi.Value argument is expected, mirroring
// how a real debug API can construct a primitive value (e.g.
// ICorDebugEval::CreateValue for primitive types) without invoking any
// managed code.
type literalValue struct {
	et  corapi.ElementType
	raw interface{}
}

func (v *literalValue) ElementType() corapi.ElementType { return v.et }
func (v *literalValue) Raw() (interface{}, error)       { return v.raw, nil }

// EvaluateRaw for an identifier simply resolves the frame lookup without
// the Factory.Create materialisation step, so a following member/index
// access can keep chaining off the live value.
func (n *IdentifierNode) EvaluateRaw(ctx *EvalContext) (corapi.Value, error) {
	value, found, err := ctx.Frame.Lookup(n.name)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read identifier "+n.name, err)
	}
	if !found {
		return nil, dbgerr.New(dbgerr.Resolution, "identifier not found: "+n.name)
	}
	return value, nil
}

// MemberAccessNode implements `a.m` (spec.md §4.5's Field/PropertyAccess
// contract): instance member resolution first, then a static field or
// property of the receiver's declared type walking the base-class chain,
// with a qualified `TypeName.m` form handled directly when the receiver
// identifier does not resolve to a value in scope.
type MemberAccessNode struct {
	receiver Node
	member   string

	staticOnly     bool
	staticTypeName string

	resolvedField *corapi.FieldDef
	resolvedProp  *corapi.PropertyDef
	typ           StaticType
}

func (n *MemberAccessNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}

	if id, ok := n.receiver.(*IdentifierNode); ok {
		if compileErr := id.Compile(childCtx); compileErr != nil {
			if ctx.Frame == nil {
				return compileErr
			}
			m, rerr := ctx.Frame.GetMemberFromClassName(id.name, n.member)
			if rerr != nil {
				return compileErr
			}
			n.staticOnly = true
			n.staticTypeName = id.name
			n.resolvedField = m.Field
			n.resolvedProp = m.Property
			n.typ = staticTypeFromMember(m)
			return nil
		}
	} else if err := n.receiver.Compile(childCtx); err != nil {
		return err
	}

	rt := n.receiver.StaticType()
	if !rt.IsReference {
		return dbgerr.New(dbgerr.Type, "'.' requires a reference-typed receiver")
	}
	if ctx.Frame == nil {
		return dbgerr.New(dbgerr.Internal, "member access compiled without a stack frame")
	}
	m, err := ctx.Frame.GetMemberFromClassName(rt.Sig.TypeName, n.member)
	if err != nil {
		return err
	}
	n.resolvedField = m.Field
	n.resolvedProp = m.Property
	n.typ = staticTypeFromMember(m)
	return nil
}

func (n *MemberAccessNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	if n.staticOnly {
		class, err := ctx.Frame.ResolveClass(n.staticTypeName)
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve "+n.staticTypeName, err)
		}
		return n.readStaticField(ctx, class)
	}

	raw, err := rawValueOf(ctx, n.receiver)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(corapi.ObjectValue)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "member access receiver is not an object")
	}

	if n.resolvedField != nil {
		if n.resolvedField.IsStatic {
			class, err := obj.Class()
			if err != nil {
				return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to resolve receiver class", err)
			}
			return n.readStaticField(ctx, class)
		}
		v, err := obj.GetFieldValue(*n.resolvedField)
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read field "+n.member, err)
		}
		return ctx.Factory.Create(v, EvalDepth)
	}

	return n.readProperty(ctx, obj, raw)
}

func (n *MemberAccessNode) readStaticField(ctx *EvalContext, class corapi.Class) (dbgvalue.DbgObject, error) {
	v, err := class.StaticFieldValue(*n.resolvedField, ctx.Frame.Raw())
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read static field "+n.member, err)
	}
	return ctx.Factory.Create(v, EvalDepth)
}

func (n *MemberAccessNode) readProperty(ctx *EvalContext, obj corapi.ObjectValue, receiver corapi.Value) (dbgvalue.DbgObject, error) {
	if n.resolvedProp == nil || n.resolvedProp.GetterToken == 0 {
		return nil, dbgerr.New(dbgerr.NotImplemented, "property "+n.member+" has no getter")
	}
	fn, err := ctx.Frame.Raw().FindFunction(n.resolvedProp.GetterToken)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve getter for "+n.member, err)
	}
	result, err := ctx.Invoker.InvokeEval(ctx.Ctx, fn, nil, []corapi.Value{receiver})
	if err != nil {
		return nil, err
	}
	return ctx.Factory.Create(result, EvalDepth-1)
}

func (n *MemberAccessNode) StaticType() StaticType { return n.typ }
