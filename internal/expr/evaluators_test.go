package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

func compileAndEval(t *testing.T, text string, fr *fakeRawFrame, resolver *fakeResolver, invoker Invoker) (dbgvalue.DbgObject, error) {
	t.Helper()
	stackFrame := newTestFrame(fr, resolver)
	node, err := Compile(text, stackFrame)
	require.NoError(t, err)
	return node.Evaluate(newTestEvalContext(stackFrame, invoker))
}

func TestLiteralsCompileAndEvaluate(t *testing.T) {
	fr := &fakeRawFrame{}

	obj, err := compileAndEval(t, "42", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(42), obj.(*dbgvalue.Primitive).Raw())

	obj, err = compileAndEval(t, "3.5", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, obj.(*dbgvalue.Primitive).Raw())

	obj, err = compileAndEval(t, `"hi"`, fr, nil, nil)
	require.NoError(t, err)
	s, err := obj.(*literalStringObject).Content()
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	obj, err = compileAndEval(t, "true", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, obj.(*dbgvalue.Primitive).Raw())

	obj, err = compileAndEval(t, "null", fr, nil, nil)
	require.NoError(t, err)
	assert.True(t, obj.IsNull())
}

func TestIdentifierLocalLookup(t *testing.T) {
	fr := &fakeRawFrame{locals: []corapi.LocalVar{{Name: "x", Value: fakePrim(corapi.ElementI4, int32(5))}}}
	obj, err := compileAndEval(t, "x", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(5), obj.(*dbgvalue.Primitive).Raw())
}

func TestIdentifierThisFieldLookup(t *testing.T) {
	class := &fakeClass{name: "Counter", fields: []corapi.FieldDef{{Name: "count", Type: corapi.TypeSignature{CorType: corapi.ElementI4}}}}
	obj := &fakeObject{et: corapi.ElementObject, class: class, fields: map[string]corapi.Value{"count": fakePrim(corapi.ElementI4, int32(9))}}
	fr := &fakeRawFrame{args: []corapi.LocalVar{{Name: "this", Value: obj}}}

	result, err := compileAndEval(t, "count", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(9), result.(*dbgvalue.Primitive).Raw())
}

func TestIdentifierNotFound(t *testing.T) {
	fr := &fakeRawFrame{}
	stackFrame := newTestFrame(fr, nil)
	_, err := Compile("missing", stackFrame)
	assert.Error(t, err)
}

func TestBinaryArithmeticPromotion(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, "1 + 2 * 3", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(7), result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "1.5 + 2", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, result.(*dbgvalue.Primitive).Raw())
}

func TestBinaryShiftTakesResultTypeFromLeftOperand(t *testing.T) {
	fr := &fakeRawFrame{locals: []corapi.LocalVar{
		{Name: "x", Value: fakePrim(corapi.ElementI4, int32(8))},
		{Name: "y", Value: fakePrim(corapi.ElementI8, int64(1))},
	}}
	result, err := compileAndEval(t, "x >> y", fr, nil, nil)
	require.NoError(t, err)
	prim := result.(*dbgvalue.Primitive)
	assert.Equal(t, int32(4), prim.Raw())
	assert.Equal(t, corapi.ElementI4, prim.Type().CorType, "shift result type must follow the left operand, not the wider right operand")
}

func TestBinaryStringConcatenation(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, `"a" + "b"`, fr, nil, nil)
	require.NoError(t, err)
	s, err := result.(*literalStringObject).Content()
	require.NoError(t, err)
	assert.Equal(t, "ab", s)
}

func TestBinaryRelationalAndEquality(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, "3 < 5", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "3 == 3", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, result.(*dbgvalue.Primitive).Raw())
}

func TestBinaryLogicalShortCircuit(t *testing.T) {
	fr := &fakeRawFrame{locals: []corapi.LocalVar{{Name: "x", Value: fakePrim(corapi.ElementI4, int32(1))}}}
	// The right-hand side divides by zero; short-circuiting on a false
	// left operand must prevent it from ever being evaluated.
	result, err := compileAndEval(t, "false && (1 / 0 == 1)", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, false, result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "true || (1 / 0 == 1)", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, result.(*dbgvalue.Primitive).Raw())
}

func TestBinaryDivisionByZero(t *testing.T) {
	fr := &fakeRawFrame{}
	_, err := compileAndEval(t, "1 / 0", fr, nil, nil)
	assert.Error(t, err)
}

func TestUnaryOperators(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, "-5", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(-5), result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "!true", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, false, result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "~0", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), result.(*dbgvalue.Primitive).Raw())
}

func TestConditionalOperator(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, "true ? 1 : 2", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "false ? 1 : 2", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), result.(*dbgvalue.Primitive).Raw())
}

func TestConditionalRequiresBooleanCondition(t *testing.T) {
	fr := &fakeRawFrame{}
	stackFrame := newTestFrame(fr, nil)
	_, err := Compile("1 ? 2 : 3", stackFrame)
	assert.Error(t, err)
}

func TestTypeCastNumericNarrowing(t *testing.T) {
	fr := &fakeRawFrame{}
	result, err := compileAndEval(t, "(byte)300", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(44), result.(*dbgvalue.Primitive).Raw())

	result, err = compileAndEval(t, "(double)3", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.(*dbgvalue.Primitive).Raw())
}

func TestFieldAccessInstanceField(t *testing.T) {
	class := &fakeClass{name: "Point", fields: []corapi.FieldDef{{Name: "X", Type: corapi.TypeSignature{CorType: corapi.ElementI4}}}}
	obj := &fakeObject{et: corapi.ElementObject, class: class, fields: map[string]corapi.Value{"X": fakePrim(corapi.ElementI4, int32(3))}}
	fr := &fakeRawFrame{args: []corapi.LocalVar{{Name: "p", Value: obj}}}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Point": class}}

	result, err := compileAndEval(t, "p.X", fr, resolver, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), result.(*dbgvalue.Primitive).Raw())
}

func TestFieldAccessStaticFieldQualifiedByTypeName(t *testing.T) {
	class := &fakeClass{
		name:    "Counter",
		fields:  []corapi.FieldDef{{Name: "Total", IsStatic: true, Type: corapi.TypeSignature{CorType: corapi.ElementI4}}},
		statics: map[string]corapi.Value{"Total": fakePrim(corapi.ElementI4, int32(100))},
	}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Counter": class}}
	fr := &fakeRawFrame{}

	result, err := compileAndEval(t, "Counter.Total", fr, resolver, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(100), result.(*dbgvalue.Primitive).Raw())
}

func TestFieldAccessBaseClassWalk(t *testing.T) {
	base := &fakeClass{name: "Base", fields: []corapi.FieldDef{{Name: "Id", Type: corapi.TypeSignature{CorType: corapi.ElementI4}}}}
	derived := &fakeClass{name: "Derived", base: base}
	obj := &fakeObject{et: corapi.ElementObject, class: derived, fields: map[string]corapi.Value{"Id": fakePrim(corapi.ElementI4, int32(7))}}
	fr := &fakeRawFrame{args: []corapi.LocalVar{{Name: "d", Value: obj}}}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Derived": derived}}

	result, err := compileAndEval(t, "d.Id", fr, resolver, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(7), result.(*dbgvalue.Primitive).Raw())
}

func TestFieldAccessPropertyInvokesGetter(t *testing.T) {
	class := &fakeClass{
		name:  "Widget",
		props: []corapi.PropertyDef{{Name: "Name", GetterToken: 42, Type: corapi.TypeSignature{CorType: corapi.ElementString}}},
	}
	obj := &fakeObject{et: corapi.ElementObject, class: class, fields: map[string]corapi.Value{}}
	fr := &fakeRawFrame{args: []corapi.LocalVar{{Name: "w", Value: obj}}}
	invoker := &fakeInvoker{result: fakePrim(corapi.ElementI4, int32(1))}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Widget": class}}

	_, err := compileAndEval(t, "w.Name", fr, resolver, invoker)
	require.NoError(t, err)
	assert.Equal(t, 1, invoker.calls)
}

func TestIndexerArrayElementAccess(t *testing.T) {
	elems := []corapi.Value{fakePrim(corapi.ElementI4, int32(10)), fakePrim(corapi.ElementI4, int32(20))}
	arr := &fakeArray{dims: []uint32{2}, elemSig: corapi.TypeSignature{CorType: corapi.ElementI4}, elems: elems}
	fr := &fakeRawFrame{locals: []corapi.LocalVar{{Name: "xs", Value: arr}}}

	result, err := compileAndEval(t, "xs[1]", fr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(20), result.(*dbgvalue.Primitive).Raw())
}

func TestIndexerGetItemDispatch(t *testing.T) {
	class := &fakeClass{name: "Map", methods: []corapi.MethodDef{{Token: 77, Name: "get_Item", ParamTypes: []corapi.TypeSignature{{CorType: corapi.ElementI4}}}}}
	obj := &fakeObject{et: corapi.ElementObject, class: class}
	fr := &fakeRawFrame{locals: []corapi.LocalVar{{Name: "m", Value: obj}}}
	invoker := &fakeInvoker{result: fakePrim(corapi.ElementI4, int32(55))}

	result, err := compileAndEval(t, "m[0]", fr, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, int32(55), result.(*dbgvalue.Primitive).Raw())
	assert.Equal(t, 1, invoker.calls)
}

func TestCallMethodResolvesByNameAndArity(t *testing.T) {
	class := &fakeClass{
		name: "Calculator",
		methods: []corapi.MethodDef{
			{Token: 10, Name: "Add", ParamTypes: []corapi.TypeSignature{{CorType: corapi.ElementI4}}},
			{Token: 11, Name: "Add", ParamTypes: []corapi.TypeSignature{{CorType: corapi.ElementI4}, {CorType: corapi.ElementI4}}},
		},
	}
	obj := &fakeObject{et: corapi.ElementObject, class: class}
	fr := &fakeRawFrame{locals: []corapi.LocalVar{
		{Name: "c", Value: obj},
		{Name: "a", Value: fakePrim(corapi.ElementI4, int32(1))},
		{Name: "b", Value: fakePrim(corapi.ElementI4, int32(2))},
	}}
	invoker := &fakeInvoker{result: fakePrim(corapi.ElementI4, int32(3))}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Calculator": class}}

	result, err := compileAndEval(t, "c.Add(a, b)", fr, resolver, invoker)
	require.NoError(t, err)
	assert.Equal(t, int32(3), result.(*dbgvalue.Primitive).Raw())
	assert.Equal(t, 1, invoker.calls)
}

func TestCallMethodWithStringLiteralArgumentConstructsManagedString(t *testing.T) {
	class := &fakeClass{
		name: "Logger",
		methods: []corapi.MethodDef{
			{Token: 20, Name: "Log", ParamTypes: []corapi.TypeSignature{{CorType: corapi.ElementString, TypeName: "System.String"}}},
		},
	}
	obj := &fakeObject{et: corapi.ElementObject, class: class}
	fr := &fakeRawFrame{locals: []corapi.LocalVar{{Name: "l", Value: obj}}}
	invoker := &fakeInvoker{result: fakePrim(corapi.ElementI4, int32(0))}
	resolver := &fakeResolver{classes: map[string]corapi.Class{"Logger": class}}

	_, err := compileAndEval(t, `l.Log("hi")`, fr, resolver, invoker)
	require.NoError(t, err)
	assert.Equal(t, 1, invoker.newStrCalls)
	assert.Equal(t, 1, invoker.calls)
}

func TestCallNoApplicableOverloadFails(t *testing.T) {
	class := &fakeClass{
		name: "Calculator",
		methods: []corapi.MethodDef{
			{Token: 10, Name: "Add", ParamTypes: []corapi.TypeSignature{{CorType: corapi.ElementI4}}},
		},
	}
	obj := &fakeObject{et: corapi.ElementObject, class: class}
	fr := &fakeRawFrame{locals: []corapi.LocalVar{
		{Name: "c", Value: obj},
		{Name: "a", Value: fakePrim(corapi.ElementI4, int32(1))},
		{Name: "b", Value: fakePrim(corapi.ElementI4, int32(2))},
	}}

	resolver := &fakeResolver{classes: map[string]corapi.Class{"Calculator": class}}

	stackFrame := newTestFrame(fr, resolver)
	_, err := Compile("c.Add(a, b)", stackFrame)
	assert.Error(t, err)
}
