package dbgvalue

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// Factory is the object materialiser of spec.md §4.1: given a runtime
// value and a depth budget, it produces a DbgObject. Grounded on
// original_source/dbgobject.cc's DbgObject::CreateDbgObject /
// CreateDbgObjectHelper / Dereference / DereferenceAndUnbox.
type Factory struct {
	activeFrame corapi.Frame
}

// NewFactory builds a Factory that materialises static-field reads against
// frame (nil is fine when no static field will be read).
func NewFactory(frame corapi.Frame) *Factory {
	return &Factory{activeFrame: frame}
}

// Create runs the full §4.1 algorithm: dereference loop, unbox, type
// classify, and attaches the depth budget to containers.
func (f *Factory) Create(value corapi.Value, depth int) (DbgObject, error) {
	if value == nil {
		return nil, dbgerr.New(dbgerr.Internal, "nil runtime value passed to Factory.Create")
	}

	deref, isNull, nullType, err := f.dereferenceAndUnbox(value)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to dereference/unbox value", err)
	}
	if isNull {
		return NewNull(nullType), nil
	}

	return f.classify(deref, depth)
}

// dereferenceAndUnbox follows reference chains up to maxDereferenceDepth
// (§4.1 step 1, grounded on dbgobject.cc's kReferenceDepth loop bound),
// then unboxes a boxed value type if present (step 2).
func (f *Factory) dereferenceAndUnbox(value corapi.Value) (corapi.Value, bool, TypeSignature, error) {
	current := value
	for i := 0; i < maxDereferenceDepth; i++ {
		ref, ok := current.(corapi.ReferenceValue)
		if !ok {
			break
		}
		if ref.IsNull() {
			return nil, true, TypeSignature{CorType: current.ElementType(), TypeName: canonicalTypeName(current.ElementType())}, nil
		}
		next, err := ref.Dereference()
		if err != nil {
			return nil, false, TypeSignature{}, err
		}
		current = next
	}
	if _, stillReference := current.(corapi.ReferenceValue); stillReference {
		return nil, false, TypeSignature{}, dbgerr.New(dbgerr.Runtime, "reference chain exceeded max dereference depth")
	}

	if boxed, ok := current.(corapi.BoxedValue); ok {
		unboxed, err := boxed.Unbox()
		if err != nil {
			return nil, false, TypeSignature{}, err
		}
		current = unboxed
	}

	return current, false, TypeSignature{}, nil
}

// classify switches on the dereferenced value's element type (§4.1 step 3)
// and attaches the depth budget (step 4): containers inherit depth-1,
// everything else gets 0.
func (f *Factory) classify(value corapi.Value, depth int) (DbgObject, error) {
	elemType := value.ElementType()

	switch {
	case elemType.IsPrimitive():
		gv, ok := value.(corapi.GenericValue)
		if !ok {
			return nil, dbgerr.New(dbgerr.Internal, "primitive element type without GenericValue support")
		}
		raw, err := gv.Raw()
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read primitive value", err)
		}
		return NewPrimitive(elemType, raw), nil

	case elemType == corapi.ElementString:
		sv, ok := value.(corapi.StringValue)
		if !ok {
			return nil, dbgerr.New(dbgerr.Internal, "string element type without StringValue support")
		}
		handle := NewHandle(value)
		return NewString(handle, sv), nil

	case elemType == corapi.ElementArray:
		av, ok := value.(corapi.ArrayValue)
		if !ok {
			return nil, dbgerr.New(dbgerr.Internal, "array element type without ArrayValue support")
		}
		dims, err := av.Dimensions()
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read array dimensions", err)
		}
		elemSig, err := av.ElementTypeSignature()
		if err != nil {
			return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read array element type", err)
		}
		handle := NewHandle(value)
		return newArray(handle, av, dims, elemSig, depth-1, f), nil

	case elemType == corapi.ElementClass, elemType == corapi.ElementValueType, elemType == corapi.ElementObject:
		ov, ok := value.(corapi.ObjectValue)
		if !ok {
			return nil, dbgerr.New(dbgerr.Internal, "class/valuetype element type without ObjectValue support")
		}
		mat := &classMaterializer{factory: f}
		return mat.materialize(ov, f.activeFrame, depth-1, elemType == corapi.ElementValueType)

	default:
		return nil, dbgerr.New(dbgerr.NotImplemented, "unsupported element type in object materialisation")
	}
}
