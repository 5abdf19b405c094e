package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// IndexerNode implements `a[i]` (spec.md §4.5's IndexerAccess contract):
// array receivers re-dereference their element on every access (delegated
// to dbgvalue.Array.ElementAt, which already carries that rule); any other
// reference receiver dispatches its `get_Item` method through the
// coordinator, mirroring instance-property access.
type IndexerNode struct {
	receiver, index Node

	typ StaticType
}

func (n *IndexerNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}
	if err := n.receiver.Compile(childCtx); err != nil {
		return err
	}
	if err := n.index.Compile(childCtx); err != nil {
		return err
	}
	if !n.index.StaticType().IsNumeric {
		return dbgerr.New(dbgerr.Type, "indexer requires a numeric index")
	}
	if !n.receiver.StaticType().IsReference {
		return dbgerr.New(dbgerr.Type, "indexer requires a reference-typed receiver")
	}
	// The precise element type is only known once the receiver is
	// materialised (an array's ElementTypeSignature, or get_Item's return
	// type, neither of which static compilation has access to here), so
	// the static type is an unclassified reference: a numeric operator, a
	// numeric cast or a member access applied to an indexer result fails
	// to compile.
	n.typ = StaticType{IsReference: true}
	return nil
}

func (n *IndexerNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	idxObj, err := n.index.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := indexValue(idxObj)
	if err != nil {
		return nil, err
	}

	receiverObj, err := n.receiver.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if arr, ok := receiverObj.(*dbgvalue.Array); ok {
		return arr.ElementAt(idx)
	}

	raw, err := rawValueFromObject(receiverObj)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(corapi.ObjectValue)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "indexer receiver is not indexable")
	}
	return n.invokeGetItem(ctx, obj, raw)
}

func (n *IndexerNode) invokeGetItem(ctx *EvalContext, obj corapi.ObjectValue, receiver corapi.Value) (dbgvalue.DbgObject, error) {
	class, err := obj.Class()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to resolve indexer receiver class", err)
	}
	getter, err := findMethodByName(class, "get_Item")
	if err != nil {
		return nil, err
	}
	// get_Item's index argument must be a corapi.Value (InvokeEval takes
	// one, not an already-materialised DbgObject), so it is re-resolved
	// from the index expression directly rather than from idxObj.
	idxRaw, err := rawValueOf(ctx, n.index)
	if err != nil {
		return nil, err
	}
	fn, err := ctx.Frame.Raw().FindFunction(getter.Token)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve get_Item", err)
	}
	result, err := ctx.Invoker.InvokeEval(ctx.Ctx, fn, nil, []corapi.Value{receiver, idxRaw})
	if err != nil {
		return nil, err
	}
	return ctx.Factory.Create(result, EvalDepth-1)
}

func (n *IndexerNode) StaticType() StaticType { return n.typ }

// indexValue extracts a non-negative flat index from an evaluated
// primitive index expression.
func indexValue(obj dbgvalue.DbgObject) (uint64, error) {
	p, ok := obj.(*dbgvalue.Primitive)
	if !ok {
		return 0, dbgerr.New(dbgerr.Type, "index expression did not evaluate to a primitive value")
	}
	i := asInt64(p.Raw())
	if i < 0 {
		return 0, dbgerr.New(dbgerr.Runtime, "array index out of range")
	}
	return uint64(i), nil
}

// findMethodByName looks up a zero/one-parameter accessor method by exact
// name (get_Item, getters), walking the base-class chain.
func findMethodByName(class corapi.Class, name string) (*corapi.MethodDef, error) {
	for class != nil {
		methods, err := class.Methods()
		if err == nil {
			for i := range methods {
				if methods[i].Name == name {
					return &methods[i], nil
				}
			}
		}
		base, ok, err := class.BaseClass()
		if err != nil || !ok {
			break
		}
		class = base
	}
	return nil, dbgerr.New(dbgerr.Resolution, "method "+name+" not found")
}
