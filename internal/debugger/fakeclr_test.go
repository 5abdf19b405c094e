package debugger

import (
	"github.com/coredbg/clrdbg/internal/corapi"
)

// --- primitive / generic values ---

type fakeGeneric struct {
	et  corapi.ElementType
	val interface{}
}

func (v *fakeGeneric) ElementType() corapi.ElementType { return v.et }
func (v *fakeGeneric) Raw() (interface{}, error)       { return v.val, nil }

func fakeInt(n int32) corapi.Value  { return &fakeGeneric{et: corapi.ElementI4, val: n} }
func fakeBool(b bool) corapi.Value  { return &fakeGeneric{et: corapi.ElementBoolean, val: b} }

// --- string ---

type fakeString struct{ s string }

func (s *fakeString) ElementType() corapi.ElementType { return corapi.ElementString }
func (s *fakeString) Length() (uint32, error)         { return uint32(len(s.s)), nil }
func (s *fakeString) Chars() (string, error)          { return s.s, nil }

// --- array ---

type fakeArray struct {
	dims    []uint32
	elemSig corapi.TypeSignature
	elems   []corapi.Value
}

func (a *fakeArray) ElementType() corapi.ElementType                     { return corapi.ElementArray }
func (a *fakeArray) Dimensions() ([]uint32, error)                       { return a.dims, nil }
func (a *fakeArray) ElementTypeSignature() (corapi.TypeSignature, error) { return a.elemSig, nil }
func (a *fakeArray) Element(flatIndex uint64) (corapi.Value, error)      { return a.elems[flatIndex], nil }

// --- class / object ---

type fakeFunction struct{ token uint32 }

func (f *fakeFunction) Token() uint32 { return f.token }

type fakeClass struct {
	name   string
	fields []corapi.FieldDef
	props  []corapi.PropertyDef
}

func (c *fakeClass) Token() uint32                               { return 1 }
func (c *fakeClass) Name() (string, error)                       { return c.name, nil }
func (c *fakeClass) GenericArgs() ([]corapi.TypeSignature, error) { return nil, nil }
func (c *fakeClass) Fields() ([]corapi.FieldDef, error)           { return c.fields, nil }
func (c *fakeClass) Properties() ([]corapi.PropertyDef, error)    { return c.props, nil }
func (c *fakeClass) Methods() ([]corapi.MethodDef, error)         { return nil, nil }
func (c *fakeClass) BaseClass() (corapi.Class, bool, error)       { return nil, false, nil }
func (c *fakeClass) StaticFieldValue(field corapi.FieldDef, fr corapi.Frame) (corapi.Value, error) {
	return nil, nil
}

type fakeObject struct {
	class  *fakeClass
	fields map[string]corapi.Value
}

func (o *fakeObject) ElementType() corapi.ElementType { return corapi.ElementClass }
func (o *fakeObject) Class() (corapi.Class, error)    { return o.class, nil }
func (o *fakeObject) GetFieldValue(field corapi.FieldDef) (corapi.Value, error) {
	return o.fields[field.Name], nil
}
func (o *fakeObject) GetStaticFieldValue(field corapi.FieldDef, fr corapi.Frame) (corapi.Value, error) {
	return o.fields[field.Name], nil
}

// --- resolver ---

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

// --- frame ---

type fakeRawFrame struct {
	methodName string
	file       string
	line       uint32
	locals     []corapi.LocalVar
	args       []corapi.LocalVar
}

func (f *fakeRawFrame) MethodName() (string, error)                { return f.methodName, nil }
func (f *fakeRawFrame) FileName() (string, error)                  { return f.file, nil }
func (f *fakeRawFrame) Line() (uint32, error)                      { return f.line, nil }
func (f *fakeRawFrame) LocalVariables() ([]corapi.LocalVar, error) { return f.locals, nil }
func (f *fakeRawFrame) Arguments() ([]corapi.LocalVar, error)      { return f.args, nil }
func (f *fakeRawFrame) FindFunction(token uint32) (corapi.Function, error) {
	return &fakeFunction{token: token}, nil
}
func (f *fakeRawFrame) ContainingClass() (corapi.Class, bool, error) { return nil, false, nil }

// --- eval / thread ---

// fakeEval returns whatever fakeThread.evalResults has recorded for the
// function token it was called with, mirroring the real coordinator's
// "Call starts it, Result reads what completed" split (Result is only
// meaningful once the test has simulated EvalComplete/EvalException).
type fakeEval struct {
	thread *fakeThread
	fn     corapi.Function
	newStr *fakeString

	aborted bool
}

func (e *fakeEval) Call(fn corapi.Function, generics []corapi.TypeSignature, args []corapi.Value) error {
	e.fn = fn
	e.thread.calls = append(e.thread.calls, fn.Token())
	return nil
}
func (e *fakeEval) NewString(content string) error {
	e.newStr = &fakeString{s: content}
	return nil
}
func (e *fakeEval) Result() (corapi.Value, error) {
	if e.newStr != nil {
		return e.newStr, nil
	}
	if e.fn == nil {
		return nil, nil
	}
	return e.thread.evalResults[e.fn.Token()], nil
}
func (e *fakeEval) Abort() error { e.aborted = true; return nil }

type fakeThread struct {
	frames      []corapi.Frame
	evalResults map[uint32]corapi.Value
	calls       []uint32
}

func (t *fakeThread) Frames() ([]corapi.Frame, error) { return t.frames, nil }
func (t *fakeThread) CreateEval() (corapi.Eval, error) {
	return &fakeEval{thread: t}, nil
}

// --- app domain / sink ---

type fakeAppDomain struct{ continues int }

func (d *fakeAppDomain) Continue() error { d.continues++; return nil }

type fakeSink struct{ snapshots []string }

func (s *fakeSink) EmitSnapshot(json string) error {
	s.snapshots = append(s.snapshots, json)
	return nil
}

// --- PDB backend ---

type fakeNative struct{ armed bool }

func (n *fakeNative) Arm() error    { n.armed = true; return nil }
func (n *fakeNative) Disarm() error { n.armed = false; return nil }

type fakeBackend struct {
	docs    []corapi.PDBDocument
	natives map[uint32]map[uint32]*fakeNative
}

func newFakeBackend(docs []corapi.PDBDocument) *fakeBackend {
	return &fakeBackend{docs: docs, natives: make(map[uint32]map[uint32]*fakeNative)}
}

func (b *fakeBackend) Documents() ([]corapi.PDBDocument, error) { return b.docs, nil }
func (b *fakeBackend) CreateNativeBreakpoint(moduleID uint64, methodToken, ilOffset uint32) (corapi.NativeBreakpoint, error) {
	if b.natives[methodToken] == nil {
		b.natives[methodToken] = make(map[uint32]*fakeNative)
	}
	n := &fakeNative{}
	b.natives[methodToken][ilOffset] = n
	return n, nil
}
