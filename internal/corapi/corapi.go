// Package corapi declares the capabilities this module requires from the
// managed-runtime debug surface: the collaborator spec.md §6 describes as
// "the core consumes capabilities equivalent to...". This module never
// prescribes an ABI; it only depends on these interfaces, so a real CLR
// debug-API binding and a test fake are equally valid implementations.
package corapi

// ElementType mirrors the CLR's CorElementType enumeration closely enough
// to drive type classification (spec.md §4.1 step 3) without depending on
// an actual COM binding.
type ElementType int

const (
	ElementVoid ElementType = iota
	ElementBoolean
	ElementChar
	ElementI1
	ElementU1
	ElementI2
	ElementU2
	ElementI4
	ElementU4
	ElementI8
	ElementU8
	ElementR4
	ElementR8
	ElementI  // native int
	ElementU  // native uint
	ElementString
	ElementArray
	ElementClass
	ElementValueType
	ElementObject
	ElementUnknown
)

// IsPrimitive reports whether t is one of the fundamental scalar types
// that materialise directly into a Primitive<T> DbgObject.
func (t ElementType) IsPrimitive() bool {
	switch t {
	case ElementBoolean, ElementChar,
		ElementI1, ElementU1, ElementI2, ElementU2,
		ElementI4, ElementU4, ElementI8, ElementU8,
		ElementR4, ElementR8, ElementI, ElementU:
		return true
	default:
		return false
	}
}

// Value is any runtime value the debug surface can hand back: a local, an
// argument, a field value, a method-call result. Concrete values also
// implement one of ReferenceValue, BoxedValue, GenericValue, StringValue,
// ArrayValue or ObjectValue depending on ElementType().
type Value interface {
	ElementType() ElementType
}

// ReferenceValue is a value that refers to another value and may be null.
// Object materialisation dereferences these in a bounded loop (spec.md
// §4.1 step 1).
type ReferenceValue interface {
	Value
	IsNull() bool
	Dereference() (Value, error)
}

// BoxedValue is a boxed value type; Unbox extracts the payload (§4.1 step 2).
type BoxedValue interface {
	Value
	Unbox() (Value, error)
}

// GenericValue is a fundamental scalar whose bits can be read generically,
// mirroring ICorDebugGenericValue::GetValue.
type GenericValue interface {
	Value
	// Raw returns the scalar as one of bool, int8/16/32/64, uint8/16/32/64,
	// float32/64, or rune (for ElementChar), matching ElementType().
	Raw() (interface{}, error)
}

// StringValue is a managed string. The character payload is fetched lazily
// per spec.md §3's "String: ... decoded character payload (lazily)".
type StringValue interface {
	Value
	// Length returns the string length in UTF-16 code units (not including
	// a terminator). Chars returns the whole decoded string, so callers
	// size no buffer from Length().
	Length() (uint32, error)
	Chars() (string, error)
}

// ArrayValue is a (possibly multi-dimensional) managed array.
type ArrayValue interface {
	Value
	Dimensions() ([]uint32, error)
	ElementTypeSignature() (TypeSignature, error)
	// Element re-derives the element at a flat index by re-dereferencing
	// the underlying array handle; it must never be served from a cache
	// taken before a prior Continue (spec.md §4.5 indexer-access note,
	// grounded on original_source/dbgarray.cc's GetArrayItem comment).
	Element(flatIndex uint64) (Value, error)
}

// TypeSignature is the (runtime_type_tag, fully_qualified_name) pair of
// spec.md §3.
type TypeSignature struct {
	CorType  ElementType
	TypeName string
}

// Class describes a CLR class/valuetype's metadata: token, name, fields,
// properties, methods, generic arguments and base class.
type Class interface {
	Token() uint32
	Name() (string, error)
	GenericArgs() ([]TypeSignature, error)
	Fields() ([]FieldDef, error)
	Properties() ([]PropertyDef, error)
	// Methods enumerates callable methods (not property accessors) for
	// method-call overload resolution (spec.md §4.5).
	Methods() ([]MethodDef, error)
	BaseClass() (Class, bool, error)
	// StaticFieldValue reads a static field directly from class metadata,
	// for `TypeName.field` access with no receiver instance in scope.
	StaticFieldValue(field FieldDef, frame Frame) (Value, error)
}

// MethodDef is one metadata method definition: a name + parameter-type
// signature, used to resolve `a.m(args...)` by name and arity before
// overload resolution picks the best match.
type MethodDef struct {
	Token      uint32
	Name       string
	IsStatic   bool
	ParamTypes []TypeSignature
}

// FieldDef is one metadata field definition.
type FieldDef struct {
	Token    uint32
	Name     string
	IsStatic bool
	// Hidden marks a compiler-synthesized field that should never be
	// surfaced to a user directly (e.g. an auto-property backing field,
	// surfaced instead as the property's own name).
	Hidden bool
	// Type is the field's declared signature, used to report a static
	// type for expression identifiers/member accesses that resolve to
	// this field without reading its runtime value.
	Type TypeSignature
}

// PropertyDef is one metadata property definition. GetterToken is 0 when
// the property has no getter (write-only).
type PropertyDef struct {
	Name        string
	GetterToken uint32
	SetterToken uint32
	// Type is the property's declared signature (see FieldDef.Type).
	Type TypeSignature
}

// ObjectValue is a (dereferenced, unboxed) class or valuetype instance.
type ObjectValue interface {
	Value
	Class() (Class, error)
	GetFieldValue(field FieldDef) (Value, error)
	// GetStaticFieldValue reads a static field's value using the active
	// frame for context (spec.md §3's ClassField contract).
	GetStaticFieldValue(field FieldDef, frame Frame) (Value, error)
}

// Frame is a single IL stack frame.
type Frame interface {
	MethodName() (string, error)
	FileName() (string, error)
	Line() (uint32, error)
	// LocalVariables returns (value, name, hidden) triples in slot order.
	LocalVariables() ([]LocalVar, error)
	Arguments() ([]LocalVar, error)
	// FindFunction resolves a method token (a property getter/setter, or
	// a called method) to an invocable Function within this frame's module.
	FindFunction(token uint32) (Function, error)
	// ContainingClass is the class the frame's method is declared on, used
	// to resolve implicit `this.member` and implicit static-field access.
	ContainingClass() (Class, bool, error)
}

// LocalVar is one slot of a frame's locals or arguments.
type LocalVar struct {
	Slot   int
	Name   string
	Hidden bool
	Value  Value
}

// Function is an invocable CLR method, resolved via a metadata token.
type Function interface {
	Token() uint32
}

// Thread is the CLR thread an eval is performed on.
type Thread interface {
	// CreateEval allocates a fresh eval handle on this thread (§4.3 step 2a).
	CreateEval() (Eval, error)
}

// Eval is a single pending or completed managed-method invocation.
type Eval interface {
	// Call starts invoking fn with args (the first argument is the
	// implicit receiver for instance calls, absent for static calls).
	Call(fn Function, genericArgs []TypeSignature, args []Value) error
	// NewString starts evaluating the construction of a managed string.
	NewString(content string) error
	// Result returns the completed value. It is only called once the
	// coordinator's rendezvous has confirmed the eval finished (the
	// Coordinator never polls Result while an eval is still pending — see
	// internal/coordinator's sync.Cond rendezvous, which replaces the
	// original's WaitForEval poll loop).
	Result() (Value, error)
	// Abort cancels a pending eval (used on timeout).
	Abort() error
}

// TypeResolver resolves a fully-qualified type name to its Class metadata,
// used by field/property-access evaluators to resolve "TypeName.Member"
// static access and by the stack-frame view to walk base-class chains.
type TypeResolver interface {
	ResolveClass(typeName string) (Class, error)
}

// SequencePoint is one PDB sequence-point entry within a method.
type SequencePoint struct {
	StartLine uint32
	EndLine   uint32
	ILOffset  uint32
}

// PDBMethod is one method's line-range and sequence-point table, as read
// from a portable PDB, used by breakpoint resolution (spec.md §4.6).
type PDBMethod struct {
	Token          uint32
	FirstLine      uint32
	LastLine       uint32
	SequencePoints []SequencePoint
}

// PDBDocument is one source file's methods, keyed by its PDB-recorded path,
// scoped to the module that carries it. ModuleID disambiguates method
// tokens, which are only unique within a single module (spec.md §4.2's
// resolved `(module, method-token, IL-offset)` key).
type PDBDocument struct {
	ModuleID uint64
	Path     string
	Methods  []PDBMethod
}

// PDBProvider enumerates every source document known across loaded
// modules. Implementations re-query as modules load; the registry calls
// this again on a module-load/class-load event to re-attempt resolution
// of Unresolved breakpoints.
type PDBProvider interface {
	Documents() ([]PDBDocument, error)
}

// NativeBreakpoint is one physical (method, IL-offset) arming.
type NativeBreakpoint interface {
	Arm() error
	Disarm() error
}

// BreakpointBackend is the subset of the debug surface the breakpoint
// registry drives: PDB lookup plus native breakpoint arming.
type BreakpointBackend interface {
	PDBProvider
	CreateNativeBreakpoint(moduleID uint64, methodToken uint32, ilOffset uint32) (NativeBreakpoint, error)
}
