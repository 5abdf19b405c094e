package dbgvalue

import (
	"strings"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// Array is the DbgObject variant for a (possibly multi-dimensional)
// managed array: strong handle, rank, per-dimension lengths, element
// TypeSignature, and on-demand element fetch (spec.md §3). Grounded on
// original_source/dbgarray.h/.cc.
type Array struct {
	base
	handle     *Handle
	value      corapi.ArrayValue
	dimensions []uint32
	elemType   TypeSignature
	factory    *Factory
}

// MaxArrayItemsToRetrieve is exported for callers (wire encoding, tests)
// that need to know the truncation bound applied to PrintValue-equivalent
// serialisation.
const MaxArrayItemsToRetrieve = maxArrayItemsToRetrieve

func newArray(handle *Handle, value corapi.ArrayValue, dims []uint32, elemType TypeSignature, depth int, factory *Factory) *Array {
	// CLR display form: one "[]" for a vector, "[,]" for rank 2, and so on.
	name := elemType.TypeName + "[]"
	if len(dims) > 1 {
		name = elemType.TypeName + "[" + strings.Repeat(",", len(dims)-1) + "]"
	}
	return &Array{
		base:       base{typ: TypeSignature{CorType: corapi.ElementArray, TypeName: name}, depth: depth},
		handle:     handle,
		value:      value,
		dimensions: dims,
		elemType:   elemType,
		factory:    factory,
	}
}

func (a *Array) Dimensions() []uint32       { return a.dimensions }
func (a *Array) ElementType() TypeSignature { return a.elemType }

// TotalItems is the product of dimensions, mirroring
// original_source/dbgarray.cc's total_items computation in PrintValue.
func (a *Array) TotalItems() uint64 {
	var total uint64 = 1
	for _, d := range a.dimensions {
		total *= uint64(d)
	}
	return total
}

// ElementAt re-derives the element at a flat index by re-dereferencing the
// underlying array handle on every call — it must never be served from a
// cache taken before a prior Continue, per the rule carried from
// original_source/dbgarray.cc's GetArrayItem comment ("We have to keep
// dereferencing the array item while traversing the array instead of just
// dereferencing it once at the start because we can't store the
// dereferenced value directly as it may be lost when pAppDomain->Continue
// is called.").
//
// Open question #3 (DESIGN.md): calling this before the array handle was
// ever initialised is a precondition violation, reported as an Internal
// error rather than a panic.
func (a *Array) ElementAt(flatIndex uint64) (DbgObject, error) {
	if a.value == nil {
		return nil, dbgerr.New(dbgerr.Internal, "ElementAt called on an array with no opened handle")
	}
	if flatIndex >= a.TotalItems() {
		return nil, dbgerr.New(dbgerr.Runtime, "array index out of range")
	}
	item, err := a.value.Element(flatIndex)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to fetch array element", err)
	}
	nextDepth := a.depth - 1
	return a.factory.Create(item, nextDepth)
}
