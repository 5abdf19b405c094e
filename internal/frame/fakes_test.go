package frame

import (
	"errors"

	"github.com/coredbg/clrdbg/internal/corapi"
)

type fakeValue struct{ et corapi.ElementType }

func (f fakeValue) ElementType() corapi.ElementType { return f.et }

type fakeGeneric struct {
	fakeValue
	raw interface{}
}

func (f fakeGeneric) Raw() (interface{}, error) { return f.raw, nil }

type fakeClass struct {
	name    string
	fields  []corapi.FieldDef
	props   []corapi.PropertyDef
	methods []corapi.MethodDef
	base    *fakeClass
}

func (c *fakeClass) Token() uint32                          { return 1 }
func (c *fakeClass) Name() (string, error)                  { return c.name, nil }
func (c *fakeClass) GenericArgs() ([]corapi.TypeSignature, error) { return nil, nil }
func (c *fakeClass) Fields() ([]corapi.FieldDef, error)      { return c.fields, nil }
func (c *fakeClass) Properties() ([]corapi.PropertyDef, error) { return c.props, nil }
func (c *fakeClass) Methods() ([]corapi.MethodDef, error)      { return c.methods, nil }
func (c *fakeClass) BaseClass() (corapi.Class, bool, error) {
	if c.base == nil {
		return nil, false, nil
	}
	return c.base, true, nil
}
func (c *fakeClass) StaticFieldValue(field corapi.FieldDef, frame corapi.Frame) (corapi.Value, error) {
	return nil, nil
}

type fakeObject struct {
	fakeValue
	class  *fakeClass
	fields map[string]corapi.Value
}

func (o *fakeObject) Class() (corapi.Class, error) { return o.class, nil }
func (o *fakeObject) GetFieldValue(field corapi.FieldDef) (corapi.Value, error) {
	return o.fields[field.Name], nil
}
func (o *fakeObject) GetStaticFieldValue(field corapi.FieldDef, frame corapi.Frame) (corapi.Value, error) {
	return o.fields[field.Name], nil
}

type fakeFrame struct {
	locals  []corapi.LocalVar
	args    []corapi.LocalVar
	class   corapi.Class
}

func (f *fakeFrame) MethodName() (string, error)                  { return "M", nil }
func (f *fakeFrame) FileName() (string, error)                    { return "Program.cs", nil }
func (f *fakeFrame) Line() (uint32, error)                        { return 10, nil }
func (f *fakeFrame) LocalVariables() ([]corapi.LocalVar, error)   { return f.locals, nil }
func (f *fakeFrame) Arguments() ([]corapi.LocalVar, error)        { return f.args, nil }
func (f *fakeFrame) FindFunction(token uint32) (corapi.Function, error) {
	return nil, nil
}
func (f *fakeFrame) ContainingClass() (corapi.Class, bool, error) {
	if f.class == nil {
		return nil, false, nil
	}
	return f.class, true, nil
}

type fakeResolver struct {
	classes map[string]corapi.Class
}

func (r *fakeResolver) ResolveClass(typeName string) (corapi.Class, error) {
	c, ok := r.classes[typeName]
	if !ok {
		return nil, errors.New("type not found: " + typeName)
	}
	return c, nil
}
