package dbgvalue

import "github.com/coredbg/clrdbg/internal/corapi"

// Fakes implementing corapi's interfaces, used only by this package's own
// tests to exercise Factory without a real runtime-debug-surface binding.

type fakePrimitive struct {
	et  corapi.ElementType
	raw interface{}
}

func (f *fakePrimitive) ElementType() corapi.ElementType { return f.et }
func (f *fakePrimitive) Raw() (interface{}, error)       { return f.raw, nil }

type fakeRef struct {
	et     corapi.ElementType
	isNull bool
	target corapi.Value
}

func (f *fakeRef) ElementType() corapi.ElementType    { return f.et }
func (f *fakeRef) IsNull() bool                       { return f.isNull }
func (f *fakeRef) Dereference() (corapi.Value, error) { return f.target, nil }

// fakeCycle is a reference that dereferences to itself, used to exercise
// the bounded dereference loop (invariant 4).
type fakeCycle struct{ et corapi.ElementType }

func (f *fakeCycle) ElementType() corapi.ElementType    { return f.et }
func (f *fakeCycle) IsNull() bool                       { return false }
func (f *fakeCycle) Dereference() (corapi.Value, error) { return f, nil }

type fakeString struct{ s string }

func (f *fakeString) ElementType() corapi.ElementType { return corapi.ElementString }
func (f *fakeString) Length() (uint32, error)         { return uint32(len([]rune(f.s))), nil }
func (f *fakeString) Chars() (string, error)          { return f.s, nil }

type fakeArray struct {
	dims    []uint32
	elemSig corapi.TypeSignature
	items   []corapi.Value
	calls   int // number of Element calls, i.e. runtime re-dereferences
}

func (f *fakeArray) ElementType() corapi.ElementType { return corapi.ElementArray }
func (f *fakeArray) Dimensions() ([]uint32, error)   { return f.dims, nil }
func (f *fakeArray) ElementTypeSignature() (corapi.TypeSignature, error) {
	return f.elemSig, nil
}
func (f *fakeArray) Element(i uint64) (corapi.Value, error) { f.calls++; return f.items[i], nil }

type fakeClass struct {
	token    uint32
	name     string
	fields   []corapi.FieldDef
	props    []corapi.PropertyDef
	generics []corapi.TypeSignature
}

func (c *fakeClass) Token() uint32                               { return c.token }
func (c *fakeClass) Name() (string, error)                       { return c.name, nil }
func (c *fakeClass) GenericArgs() ([]corapi.TypeSignature, error) { return c.generics, nil }
func (c *fakeClass) Fields() ([]corapi.FieldDef, error)           { return c.fields, nil }
func (c *fakeClass) Properties() ([]corapi.PropertyDef, error)    { return c.props, nil }
func (c *fakeClass) Methods() ([]corapi.MethodDef, error)         { return nil, nil }
func (c *fakeClass) BaseClass() (corapi.Class, bool, error)       { return nil, false, nil }
func (c *fakeClass) StaticFieldValue(field corapi.FieldDef, frame corapi.Frame) (corapi.Value, error) {
	return nil, nil
}

type fakeObject struct {
	et          corapi.ElementType
	class       *fakeClass
	fieldValues map[string]corapi.Value
}

func (o *fakeObject) ElementType() corapi.ElementType { return o.et }
func (o *fakeObject) Class() (corapi.Class, error)    { return o.class, nil }
func (o *fakeObject) GetFieldValue(field corapi.FieldDef) (corapi.Value, error) {
	return o.fieldValues[field.Name], nil
}
func (o *fakeObject) GetStaticFieldValue(field corapi.FieldDef, frame corapi.Frame) (corapi.Value, error) {
	return o.fieldValues[field.Name], nil
}
