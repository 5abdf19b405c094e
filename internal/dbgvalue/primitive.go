package dbgvalue

import "github.com/coredbg/clrdbg/internal/corapi"

// Primitive is the DbgObject<T> variant for a fundamental scalar, copied
// by value with no managed reference retained (spec.md §3). Grounded on
// original_source/dbgprimitive.h's DbgPrimitive<T> template, generalised
// from a C++ template parameter to a boxed interface{} since Go has no
// equivalent instantiate-per-T mechanism that fits a variant interface.
type Primitive struct {
	base
	value interface{}
}

// NewPrimitive constructs a Primitive from a raw scalar and its element
// type, with depth fixed at 0 as the original does (primitives never have
// members to descend into).
func NewPrimitive(elemType corapi.ElementType, value interface{}) *Primitive {
	return &Primitive{
		base: base{
			typ:   TypeSignature{CorType: elemType, TypeName: canonicalTypeName(elemType)},
			depth: 0,
		},
		value: value,
	}
}

// Raw returns the underlying Go value: bool, int8/16/32/64, uint8/16/32/64,
// float32/64, or rune.
func (p *Primitive) Raw() interface{} { return p.value }
