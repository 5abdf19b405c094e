package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

type literalKind int

const (
	literalInt literalKind = iota
	literalFloat
	literalString
	literalChar
	literalBool
	literalNull
)

// LiteralNode holds a literal's parsed value (spec.md §4.5's Literal
// contract). Compile builds the wrapped DbgObject and its static type;
// Evaluate returns that object unconditionally.
type LiteralNode struct {
	kind    literalKind
	intVal  int64
	fltVal  float64
	strVal  string
	boolVal bool

	wrapped dbgvalue.DbgObject
	typ     StaticType
}

func (n *LiteralNode) Compile(ctx *CompileContext) error {
	switch n.kind {
	case literalInt:
		n.wrapped = dbgvalue.NewPrimitive(corapi.ElementI4, int32(n.intVal))
		n.typ = StaticType{Sig: n.wrapped.Type(), IsNumeric: true}
	case literalFloat:
		n.wrapped = dbgvalue.NewPrimitive(corapi.ElementR8, n.fltVal)
		n.typ = StaticType{Sig: n.wrapped.Type(), IsNumeric: true}
	case literalChar:
		n.wrapped = dbgvalue.NewPrimitive(corapi.ElementChar, rune(n.intVal))
		n.typ = StaticType{Sig: n.wrapped.Type(), IsNumeric: true}
	case literalBool:
		n.wrapped = dbgvalue.NewPrimitive(corapi.ElementBoolean, n.boolVal)
		n.typ = StaticType{Sig: n.wrapped.Type(), IsBoolean: true}
	case literalString:
		n.wrapped = &literalStringObject{value: n.strVal}
		n.typ = StaticType{Sig: corapi.TypeSignature{CorType: corapi.ElementString, TypeName: "System.String"}, IsString: true, IsReference: true}
	case literalNull:
		n.wrapped = dbgvalue.NewNull(corapi.TypeSignature{CorType: corapi.ElementObject, TypeName: "System.Object"})
		n.typ = StaticType{Sig: n.wrapped.Type(), IsReference: true}
	default:
		return dbgerr.New(dbgerr.Internal, "unknown literal kind")
	}
	return nil
}

func (n *LiteralNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	return n.wrapped, nil
}

func (n *LiteralNode) StaticType() StaticType { return n.typ }

// literalStringObject carries a parse-time string constant; it is not
// backed by a managed string handle (there is nothing to dereference for
// a literal), so it implements DbgObject directly rather than going
// through dbgvalue.Factory. Content() lets the binary evaluator read it
// for string concatenation/equality without a coordinator round trip.
type literalStringObject struct {
	value string
}

func (s *literalStringObject) Type() dbgvalue.TypeSignature {
	return dbgvalue.TypeSignature{CorType: corapi.ElementString, TypeName: "System.String"}
}
func (s *literalStringObject) IsNull() bool          { return false }
func (s *literalStringObject) Depth() int            { return 0 }
func (s *literalStringObject) Err() error            { return nil }
func (s *literalStringObject) Content() (string, error) { return s.value, nil }
