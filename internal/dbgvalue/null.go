package dbgvalue

// Null is the DbgObject variant for a null reference; it carries only its
// declared TypeSignature (spec.md §3). Grounded on original_source/dbgobject.cc's
// null-reference branch of DbgObject::Initialize, which short-circuits to a
// type-only object without dereferencing.
type Null struct {
	base
}

func NewNull(typ TypeSignature) *Null {
	return &Null{base: base{typ: typ, null: true}}
}
