package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// CallNode implements `a.m(args)` and the implicit-receiver `m(args)` form
// (spec.md §4.5's MethodCall contract): name+arity filtering followed by
// the exact > implicit-numeric > reference-upcast overload tie-break.
// Grounded on original_source/third_party/cloud-debug-java/csharp_expression.h's
// MethodCallExpression, generalised with a C#-style overload tie-break in
// place of Java's single-dispatch method lookup.
type CallNode struct {
	receiver Node // nil for an implicit `this` receiver
	method   string
	args     []Node

	resolvedMethod *corapi.MethodDef
	typ            StaticType
}

func (n *CallNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}

	argTypes := make([]StaticType, 0, len(n.args))
	for _, a := range n.args {
		if err := a.Compile(childCtx); err != nil {
			return err
		}
		argTypes = append(argTypes, a.StaticType())
	}

	class, err := n.resolveReceiverClass(ctx, childCtx)
	if err != nil {
		return err
	}

	method, err := resolveOverload(class, n.method, argTypes)
	if err != nil {
		return err
	}
	n.resolvedMethod = method
	// MethodDef carries no return-type signature, so the call's static
	// type is an unclassified reference: a numeric operator, a numeric
	// cast or a member access applied to a call result fails to compile.
	n.typ = StaticType{IsReference: true}
	return nil
}

func (n *CallNode) resolveReceiverClass(ctx *CompileContext, childCtx *CompileContext) (corapi.Class, error) {
	if n.receiver == nil {
		if ctx.Frame == nil {
			return nil, dbgerr.New(dbgerr.Internal, "method call compiled without a stack frame")
		}
		class, ok, err := ctx.Frame.Raw().ContainingClass()
		if err != nil || !ok {
			return nil, dbgerr.New(dbgerr.Resolution, "cannot resolve implicit receiver for "+n.method)
		}
		return class, nil
	}

	if id, ok := n.receiver.(*IdentifierNode); ok {
		if cerr := id.Compile(childCtx); cerr != nil {
			if ctx.Frame == nil {
				return nil, cerr
			}
			class, rerr := ctx.Frame.ResolveClass(id.name)
			if rerr != nil {
				return nil, cerr
			}
			return class, nil
		}
		return n.resolveInstanceClass(ctx, id.StaticType())
	}

	if err := n.receiver.Compile(childCtx); err != nil {
		return nil, err
	}
	return n.resolveInstanceClass(ctx, n.receiver.StaticType())
}

func (n *CallNode) resolveInstanceClass(ctx *CompileContext, rt StaticType) (corapi.Class, error) {
	if !rt.IsReference {
		return nil, dbgerr.New(dbgerr.Type, "method call requires a reference-typed receiver")
	}
	if ctx.Frame == nil {
		return nil, dbgerr.New(dbgerr.Internal, "method call compiled without a stack frame")
	}
	class, err := ctx.Frame.ResolveClass(rt.Sig.TypeName)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve receiver type "+rt.Sig.TypeName, err)
	}
	return class, nil
}

func (n *CallNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	// Arguments (and, for an explicit receiver, the receiver itself) are
	// resolved as corapi.Value rather than DbgObject, since InvokeEval
	// takes the former; a computed/literal scalar is re-boxed through
	// literalValue (see rawValueFromObject) rather than rejected.
	args := make([]corapi.Value, 0, len(n.args)+1)

	if !n.resolvedMethod.IsStatic {
		var receiverVal corapi.Value
		var err error
		if n.receiver == nil {
			var found bool
			receiverVal, found, err = ctx.Frame.Lookup("this")
			if err == nil && !found {
				err = dbgerr.New(dbgerr.Resolution, "no 'this' receiver available for "+n.method)
			}
		} else {
			receiverVal, err = rawValueOf(ctx, n.receiver)
		}
		if err != nil {
			return nil, err
		}
		args = append(args, receiverVal)
	}

	for _, a := range n.args {
		v, err := rawValueOf(ctx, a)
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.NotImplemented, "method call argument has no runtime-backed value", err)
		}
		args = append(args, v)
	}

	fn, err := ctx.Frame.Raw().FindFunction(n.resolvedMethod.Token)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve method "+n.method, err)
	}
	result, err := ctx.Invoker.InvokeEval(ctx.Ctx, fn, nil, args)
	if err != nil {
		return nil, err
	}
	return ctx.Factory.Create(result, EvalDepth-1)
}

func (n *CallNode) StaticType() StaticType { return n.typ }

// resolveOverload filters class's (and, failing a match, its base
// classes') methods by name+arity, then picks the best candidate by the
// exact > implicit-numeric-widening > reference-upcast tie-break. Two
// candidates sharing the best rank make the call ambiguous, which is a
// Type error.
func resolveOverload(class corapi.Class, name string, argTypes []StaticType) (*corapi.MethodDef, error) {
	var candidates []corapi.MethodDef
	for c := class; c != nil; {
		methods, err := c.Methods()
		if err == nil {
			for _, m := range methods {
				if m.Name == name && len(m.ParamTypes) == len(argTypes) {
					candidates = append(candidates, m)
				}
			}
		}
		if len(candidates) > 0 {
			break
		}
		base, ok, err := c.BaseClass()
		if err != nil || !ok {
			break
		}
		c = base
	}
	if len(candidates) == 0 {
		return nil, dbgerr.New(dbgerr.Resolution, "no method named "+name+" with matching arity found")
	}

	bestIdx, bestRank, tied := -1, 3, false
	for i, m := range candidates {
		rank, ok := candidateRank(m, argTypes)
		if !ok {
			continue
		}
		if rank < bestRank {
			bestIdx, bestRank, tied = i, rank, false
		} else if rank == bestRank {
			tied = true
		}
	}
	if bestIdx < 0 {
		return nil, dbgerr.New(dbgerr.Resolution, "no overload of "+name+" is applicable to the given arguments")
	}
	if tied {
		return nil, dbgerr.New(dbgerr.Type, "ambiguous call to "+name+": more than one overload matches equally well")
	}
	result := candidates[bestIdx]
	return &result, nil
}

// candidateRank scores one overload candidate against the call's argument
// static types: 0 if every parameter matches exactly, 1 if the worst
// parameter match is an implicit numeric widening, 2 if the worst is a
// reference upcast. Returns ok=false if any parameter is not applicable at
// all (e.g. a narrowing numeric conversion, or an incompatible category).
func candidateRank(m corapi.MethodDef, argTypes []StaticType) (int, bool) {
	worst := 0
	for i, pt := range m.ParamTypes {
		at := argTypes[i]
		switch {
		case pt.CorType == at.Sig.CorType && pt.TypeName == at.Sig.TypeName:
			// exact match, no rank change
		case at.IsNumeric && isNumeric(pt.CorType) && numericWidens(at.Sig.CorType, pt.CorType):
			if worst < 1 {
				worst = 1
			}
		case at.IsReference && pt.CorType != corapi.ElementString && !isNumeric(pt.CorType) && pt.CorType != corapi.ElementBoolean:
			if worst < 2 {
				worst = 2
			}
		default:
			return 0, false
		}
	}
	return worst, true
}

// numericWidens reports whether from converts to to without loss under
// C#'s implicit numeric conversion table (a strict subset: only the
// widenings this module's promotion rules can already represent).
func numericWidens(from, to corapi.ElementType) bool {
	rank := map[corapi.ElementType]int{
		corapi.ElementI1: 0, corapi.ElementU1: 0, corapi.ElementI2: 1, corapi.ElementU2: 1,
		corapi.ElementChar: 1, corapi.ElementI4: 2, corapi.ElementU4: 3, corapi.ElementI8: 4,
		corapi.ElementU8: 4, corapi.ElementR4: 5, corapi.ElementR8: 6,
	}
	fr, fok := rank[from]
	tr, tok := rank[to]
	if !fok || !tok {
		return false
	}
	return fr < tr
}
