// Package expr implements the C#-syntax expression compiler and
// evaluators of spec.md §4.5: a lexer and recursive-descent parser build
// an AST, then each node's Compile/Evaluate pair resolves static types
// and produces a DbgObject against a live stack frame.
//
// Grounded throughout on
// original_source/third_party/cloud-debug-java/csharp_expression.h/.cc
// (AST node shapes, the Compile-fails-by-returning-an-error pattern) and
// the per-operator evaluator files named in DESIGN.md.
package expr

import (
	"context"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
	"github.com/coredbg/clrdbg/internal/frame"
)

// maxExpressionDepth bounds AST depth (spec.md §4.5's "recommended 25"),
// grounded on csharp_expression.cc's kMaxTreeDepth walk guard.
const maxExpressionDepth = 25

// EvalDepth is the object-materialisation depth budget Evaluate passes
// to the factory when a node produces a container DbgObject.
const EvalDepth = dbgvalue.DefaultEvalDepth

// Invoker is the subset of the eval coordinator expression evaluation
// needs: running a property getter or method call through the
// rendezvous. internal/coordinator.Coordinator implements this.
type Invoker interface {
	InvokeEval(ctx context.Context, fn corapi.Function, genericArgs []corapi.TypeSignature, args []corapi.Value) (corapi.Value, error)
	InvokeNewString(ctx context.Context, content string) (corapi.Value, error)
}

// StaticType is the compile-time type information Compile attaches to a
// node: its TypeSignature plus the classification Compile needs to apply
// promotion/compatibility rules without re-querying the signature.
type StaticType struct {
	Sig         corapi.TypeSignature
	IsBoolean   bool
	IsNumeric   bool
	IsReference bool
	IsString    bool
}

// CompileContext is threaded through Compile calls: the frame providing
// static metadata lookups, and the current AST depth for the bound check.
type CompileContext struct {
	Frame *frame.StackFrame
	Depth int
}

// child returns a CompileContext for a subexpression one level deeper,
// failing once maxExpressionDepth is exceeded.
func (c *CompileContext) child() (*CompileContext, error) {
	if c.Depth+1 > maxExpressionDepth {
		return nil, dbgerr.New(dbgerr.Type, "expression tree exceeds maximum depth")
	}
	return &CompileContext{Frame: c.Frame, Depth: c.Depth + 1}, nil
}

// EvalContext is threaded through Evaluate calls.
type EvalContext struct {
	Ctx     context.Context
	Frame   *frame.StackFrame
	Factory *dbgvalue.Factory
	Invoker Invoker
}

// Node is one AST node / Evaluator, per spec.md §4.5's two-operation
// contract. Evaluate must be idempotent given the same live frame;
// Compile may mutate the node to cache resolved tokens/types for later
// Evaluate calls.
type Node interface {
	Compile(ctx *CompileContext) error
	Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error)
	StaticType() StaticType
}

// Compile is the package entry point: parse text, then Compile the root
// node against frame's static metadata.
func Compile(text string, fr *frame.StackFrame) (Node, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Type, "failed to tokenize expression", err)
	}
	p := &Parser{tokens: tokens}
	node, err := p.ParseExpression()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Type, "failed to parse expression", err)
	}
	if !p.atEnd() {
		return nil, dbgerr.New(dbgerr.Type, "unexpected trailing input in expression")
	}
	if err := node.Compile(&CompileContext{Frame: fr, Depth: 0}); err != nil {
		return nil, err
	}
	return node, nil
}
