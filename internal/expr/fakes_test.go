package expr

import (
	"context"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
	"github.com/coredbg/clrdbg/internal/frame"
)

type fakeGeneric struct {
	et  corapi.ElementType
	val interface{}
}

func (v *fakeGeneric) ElementType() corapi.ElementType { return v.et }
func (v *fakeGeneric) Raw() (interface{}, error)       { return v.val, nil }

func fakePrim(et corapi.ElementType, val interface{}) corapi.Value {
	return &fakeGeneric{et: et, val: val}
}

type fakeArray struct {
	dims    []uint32
	elemSig corapi.TypeSignature
	elems   []corapi.Value
}

func (a *fakeArray) ElementType() corapi.ElementType                    { return corapi.ElementArray }
func (a *fakeArray) Dimensions() ([]uint32, error)                      { return a.dims, nil }
func (a *fakeArray) ElementTypeSignature() (corapi.TypeSignature, error) { return a.elemSig, nil }
func (a *fakeArray) Element(flatIndex uint64) (corapi.Value, error)     { return a.elems[flatIndex], nil }

type fakeStringValue struct{ s string }

func (v *fakeStringValue) ElementType() corapi.ElementType { return corapi.ElementString }
func (v *fakeStringValue) Length() (uint32, error)         { return uint32(len(v.s)), nil }
func (v *fakeStringValue) Chars() (string, error)          { return v.s, nil }

type fakeFunction struct{ token uint32 }

func (f *fakeFunction) Token() uint32 { return f.token }

type fakeClass struct {
	name    string
	fields  []corapi.FieldDef
	props   []corapi.PropertyDef
	methods []corapi.MethodDef
	base    *fakeClass
	statics map[string]corapi.Value
}

func (c *fakeClass) Token() uint32                                { return 1 }
func (c *fakeClass) Name() (string, error)                        { return c.name, nil }
func (c *fakeClass) GenericArgs() ([]corapi.TypeSignature, error)  { return nil, nil }
func (c *fakeClass) Fields() ([]corapi.FieldDef, error)            { return c.fields, nil }
func (c *fakeClass) Properties() ([]corapi.PropertyDef, error)     { return c.props, nil }
func (c *fakeClass) Methods() ([]corapi.MethodDef, error)          { return c.methods, nil }
func (c *fakeClass) BaseClass() (corapi.Class, bool, error) {
	if c.base == nil {
		return nil, false, nil
	}
	return c.base, true, nil
}
func (c *fakeClass) StaticFieldValue(field corapi.FieldDef, fr corapi.Frame) (corapi.Value, error) {
	return c.statics[field.Name], nil
}

type fakeObject struct {
	et     corapi.ElementType
	class  *fakeClass
	fields map[string]corapi.Value
}

func (o *fakeObject) ElementType() corapi.ElementType { return o.et }
func (o *fakeObject) Class() (corapi.Class, error)    { return o.class, nil }
func (o *fakeObject) GetFieldValue(field corapi.FieldDef) (corapi.Value, error) {
	return o.fields[field.Name], nil
}
func (o *fakeObject) GetStaticFieldValue(field corapi.FieldDef, fr corapi.Frame) (corapi.Value, error) {
	return o.fields[field.Name], nil
}

type fakeResolver struct {
	classes map[string]corapi.Class
}

func (r *fakeResolver) ResolveClass(typeName string) (corapi.Class, error) {
	c, ok := r.classes[typeName]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return string(e) }

var errNotFound = notFoundErr("type not found")

type fakeRawFrame struct {
	locals    []corapi.LocalVar
	args      []corapi.LocalVar
	class     corapi.Class
	hasClass  bool
	functions map[uint32]corapi.Function
}

func (f *fakeRawFrame) MethodName() (string, error) { return "TestMethod", nil }
func (f *fakeRawFrame) FileName() (string, error)   { return "Test.cs", nil }
func (f *fakeRawFrame) Line() (uint32, error)        { return 1, nil }
func (f *fakeRawFrame) LocalVariables() ([]corapi.LocalVar, error) { return f.locals, nil }
func (f *fakeRawFrame) Arguments() ([]corapi.LocalVar, error)      { return f.args, nil }
func (f *fakeRawFrame) FindFunction(token uint32) (corapi.Function, error) {
	if fn, ok := f.functions[token]; ok {
		return fn, nil
	}
	return &fakeFunction{token: token}, nil
}
func (f *fakeRawFrame) ContainingClass() (corapi.Class, bool, error) {
	return f.class, f.hasClass, nil
}

type fakeInvoker struct {
	calls        int
	result       corapi.Value
	err          error
	newStrCalls  int
	newStrResult corapi.Value
	newStrErr    error
}

func (inv *fakeInvoker) InvokeEval(ctx context.Context, fn corapi.Function, generics []corapi.TypeSignature, args []corapi.Value) (corapi.Value, error) {
	inv.calls++
	if inv.err != nil {
		return nil, inv.err
	}
	return inv.result, nil
}

func (inv *fakeInvoker) InvokeNewString(ctx context.Context, content string) (corapi.Value, error) {
	inv.newStrCalls++
	if inv.newStrErr != nil {
		return nil, inv.newStrErr
	}
	if inv.newStrResult != nil {
		return inv.newStrResult, nil
	}
	return &fakeStringValue{s: content}, nil
}

func newTestFrame(raw *fakeRawFrame, resolver *fakeResolver) *frame.StackFrame {
	if resolver == nil {
		return frame.New(raw, nil)
	}
	return frame.New(raw, resolver)
}

func newTestEvalContext(fr *frame.StackFrame, invoker Invoker) *EvalContext {
	return &EvalContext{
		Ctx:     context.Background(),
		Frame:   fr,
		Factory: dbgvalue.NewFactory(fr.Raw()),
		Invoker: invoker,
	}
}
