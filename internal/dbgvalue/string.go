package dbgvalue

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// String is the DbgObject variant for a managed string: a strong handle
// plus a lazily-decoded character payload (spec.md §3). Grounded on
// original_source/dbgstring.h/.cc.
//
// Design note (spec.md §9, DESIGN.md open question #2): the original
// allocates/requests len+2 wide characters because it adds the null
// terminator twice. This port sizes no character buffer at all:
// corapi.StringValue.Chars() returns the whole decoded Go string, so there
// is no terminator arithmetic for the double-terminator bug to live in.
type String struct {
	base
	handle *Handle
	value  corapi.StringValue
	chars  string
	loaded bool
}

func NewString(handle *Handle, value corapi.StringValue) *String {
	return &String{
		base:   base{typ: TypeSignature{CorType: corapi.ElementString, TypeName: "System.String"}},
		handle: handle,
		value:  value,
	}
}

// Chars returns the decoded character payload, fetching it on first use.
func (s *String) Chars() (string, error) {
	if s.loaded {
		return s.chars, nil
	}
	length, err := s.value.Length()
	if err != nil {
		return "", dbgerr.Wrap(dbgerr.Runtime, "failed to read string length", err)
	}
	// length is read so a failing Length() surfaces as an error; nothing
	// is allocated from it, since Chars() returns the whole string.
	_ = length + 1
	chars, err := s.value.Chars()
	if err != nil {
		return "", dbgerr.Wrap(dbgerr.Runtime, "failed to read string contents", err)
	}
	s.chars = chars
	s.loaded = true
	return s.chars, nil
}

// Handle exposes the underlying strong handle so callers (the coordinator,
// on handle-equality reference comparisons) can retain or release it.
func (s *String) Handle() *Handle { return s.handle }
