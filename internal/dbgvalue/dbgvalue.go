// Package dbgvalue implements the DbgObject variant hierarchy and the
// object/class materialisers of spec.md §3, §4.1 and §4.2.
//
// Grounded on original_source/dbgobject.h/.cc, dbgprimitive.h,
// dbgstring.h/.cc, dbgarray.h/.cc, dbgclass.h/.cc, dbgclassfield.h/.cc and
// dbgclassproperty.h/.cc — see DESIGN.md for the detailed mapping.
package dbgvalue

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// TypeSignature is spec.md §3's (runtime_type_tag, fully_qualified_name) pair.
type TypeSignature = corapi.TypeSignature

// maxDereferenceDepth bounds the dereference loop of §4.1 step 1. Grounded
// on original_source/dbgobject.cc's kReferenceDepth.
const maxDereferenceDepth = 10

// maxArrayItemsToRetrieve bounds array materialisation. Grounded on
// original_source/dbgarray.cc's kMaxArrayItemsToRetrieve.
const maxArrayItemsToRetrieve = 1000

// DefaultEvalDepth is the default object-inspection depth budget used when
// no configuration overrides it, grounded on
// original_source/variablemanager.cc's VariableManager::VariableManager
// (object_depth_ = 5).
const DefaultEvalDepth = 5

// DbgObject is the common surface of every materialised runtime value.
// Invariant (spec.md §3): IsNull() -> no members/value; Err() == nil iff
// the object initialised successfully.
type DbgObject interface {
	Type() TypeSignature
	IsNull() bool
	Depth() int
	Err() error
}

// base carries the fields every variant shares: depth budget, init error,
// and (when relevant) the null flag. Embedded by each concrete variant.
type base struct {
	typ   TypeSignature
	depth int
	err   error
	null  bool
}

func (b *base) Type() TypeSignature { return b.typ }
func (b *base) Depth() int          { return b.depth }
func (b *base) Err() error          { return b.err }
func (b *base) IsNull() bool        { return b.null }

// Handle is the strong-reference abstraction of spec.md §3: it pins a
// runtime value across suspend/resume cycles and is explicitly released.
// Grounded on original_source/ccomptr.h's refcounted COM pointer pattern,
// generalised to a plain Go refcount since there is no COM here.
type Handle struct {
	value corapi.Value
	refs  int
}

// NewHandle wraps value with an initial reference count of 1, mirroring
// original_source/dbgobject.cc's CreateStrongHandle.
func NewHandle(value corapi.Value) *Handle {
	return &Handle{value: value, refs: 1}
}

func (h *Handle) AddRef() {
	h.refs++
}

// Release decrements the refcount; once it reaches zero the handle no
// longer yields a value. Double-release is a programmer error surfaced as
// an Internal error rather than a panic, per spec.md §9's "fail with a
// clear diagnostic" guidance for precondition violations.
func (h *Handle) Release() error {
	if h.refs <= 0 {
		return dbgerr.New(dbgerr.Internal, "handle released more times than acquired")
	}
	h.refs--
	if h.refs == 0 {
		h.value = nil
	}
	return nil
}

func (h *Handle) Value() (corapi.Value, error) {
	if h.refs <= 0 || h.value == nil {
		return nil, dbgerr.New(dbgerr.Internal, "handle used after release")
	}
	return h.value, nil
}
