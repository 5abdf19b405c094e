package expr

import (
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// ConditionalNode implements `cond ? thenExpr : elseExpr` (spec.md §4.5).
// The condition must be boolean; the branch static types are not unified
// beyond requiring both to compile, since the evaluator only ever
// evaluates the taken branch.
type ConditionalNode struct {
	cond, thenExpr, elseExpr Node

	typ StaticType
}

func (n *ConditionalNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}
	if err := n.cond.Compile(childCtx); err != nil {
		return err
	}
	if !n.cond.StaticType().IsBoolean {
		return dbgerr.New(dbgerr.Type, "'?:' condition must be boolean")
	}
	if err := n.thenExpr.Compile(childCtx); err != nil {
		return err
	}
	if err := n.elseExpr.Compile(childCtx); err != nil {
		return err
	}
	n.typ = n.thenExpr.StaticType()
	return nil
}

func (n *ConditionalNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	cond, err := n.cond.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	b, err := primitiveBool(cond)
	if err != nil {
		return nil, err
	}
	if b {
		return n.thenExpr.Evaluate(ctx)
	}
	return n.elseExpr.Evaluate(ctx)
}

func (n *ConditionalNode) StaticType() StaticType { return n.typ }
