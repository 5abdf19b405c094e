package expr

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// BinaryNode implements arithmetic/bit/shift/relational/equality/logical
// operators, per spec.md §4.5's Binary contract. Grounded on
// original_source/third_party/cloud-debug-java/binary_expression_evaluator.h's
// Compile-then-Evaluate shape and csharp_expression.cc's numeric-promotion
// rules, translated to a Go switch rather than a function-pointer table.
type BinaryNode struct {
	op          string
	left, right Node

	promoted corapi.ElementType
	typ      StaticType
}

var relationalOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var equalityOps = map[string]bool{"==": true, "!=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}
var shiftOps = map[string]bool{"<<": true, ">>": true}

func (n *BinaryNode) Compile(ctx *CompileContext) error {
	childCtx, err := ctx.child()
	if err != nil {
		return err
	}
	if err := n.left.Compile(childCtx); err != nil {
		return err
	}
	if err := n.right.Compile(childCtx); err != nil {
		return err
	}

	lt, rt := n.left.StaticType(), n.right.StaticType()

	if logicalOps[n.op] {
		if !lt.IsBoolean || !rt.IsBoolean {
			return dbgerr.New(dbgerr.Type, "'"+n.op+"' requires boolean operands")
		}
		n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
		return nil
	}

	if equalityOps[n.op] {
		if lt.IsString && rt.IsString {
			n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
			return nil
		}
		if lt.IsBoolean && rt.IsBoolean {
			n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
			return nil
		}
		if lt.IsNumeric && rt.IsNumeric {
			n.promoted = promoteBinary(n.op, lt.Sig.CorType, rt.Sig.CorType)
			n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
			return nil
		}
		if lt.IsReference && rt.IsReference {
			n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
			return nil
		}
		return dbgerr.New(dbgerr.Type, "'"+n.op+"' operands are not comparable")
	}

	if relationalOps[n.op] {
		if !lt.IsNumeric || !rt.IsNumeric {
			return dbgerr.New(dbgerr.Type, "'"+n.op+"' requires numeric operands")
		}
		n.promoted = promoteBinary(n.op, lt.Sig.CorType, rt.Sig.CorType)
		n.typ = StaticType{IsBoolean: true, Sig: corapi.TypeSignature{CorType: corapi.ElementBoolean, TypeName: "System.Boolean"}}
		return nil
	}

	if n.op == "+" && lt.IsString && rt.IsString {
		n.typ = StaticType{IsString: true, IsReference: true, Sig: corapi.TypeSignature{CorType: corapi.ElementString, TypeName: "System.String"}}
		return nil
	}

	if !lt.IsNumeric || !rt.IsNumeric {
		return dbgerr.New(dbgerr.Type, "'"+n.op+"' requires numeric operands")
	}
	if shiftOps[n.op] {
		// C#'s shift operators take their result type from the left
		// operand alone (widened past byte/short/char); the right
		// operand only supplies a shift count, masked at Evaluate time,
		// and never participates in the result-type promotion.
		n.promoted = promoteSmallInt(lt.Sig.CorType)
	} else {
		n.promoted = promoteBinary(n.op, lt.Sig.CorType, rt.Sig.CorType)
	}
	typeName := canonicalNumericName(n.promoted)
	n.typ = StaticType{IsNumeric: true, Sig: corapi.TypeSignature{CorType: n.promoted, TypeName: typeName}}
	return nil
}

func (n *BinaryNode) Evaluate(ctx *EvalContext) (dbgvalue.DbgObject, error) {
	if logicalOps[n.op] {
		left, err := n.left.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		lv, err := primitiveBool(left)
		if err != nil {
			return nil, err
		}
		if n.op == "&&" && !lv {
			return dbgvalue.NewPrimitive(corapi.ElementBoolean, false), nil
		}
		if n.op == "||" && lv {
			return dbgvalue.NewPrimitive(corapi.ElementBoolean, true), nil
		}
		right, err := n.right.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		rv, err := primitiveBool(right)
		if err != nil {
			return nil, err
		}
		return dbgvalue.NewPrimitive(corapi.ElementBoolean, rv), nil
	}

	left, err := n.left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	right, err := n.right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	if equalityOps[n.op] {
		eq, err := n.stringOrReferenceEquals(left, right)
		if err == errNotStringOrReference {
			return n.numericCompare(left, right)
		}
		if err != nil {
			return nil, err
		}
		if n.op == "!=" {
			eq = !eq
		}
		return dbgvalue.NewPrimitive(corapi.ElementBoolean, eq), nil
	}

	if relationalOps[n.op] {
		return n.numericCompare(left, right)
	}

	if n.op == "+" {
		if n.typ.IsString {
			ls, err := stringContent(left)
			if err != nil {
				return nil, err
			}
			rs, err := stringContent(right)
			if err != nil {
				return nil, err
			}
			return &literalStringObject{value: ls + rs}, nil
		}
	}

	return n.arithmetic(left, right)
}

var errNotStringOrReference = dbgerr.New(dbgerr.Internal, "not a string/reference comparison")

func (n *BinaryNode) stringOrReferenceEquals(left, right dbgvalue.DbgObject) (bool, error) {
	ls, lok, err := tryStringContent(left)
	if err != nil {
		return false, err
	}
	rs, rok, err := tryStringContent(right)
	if err != nil {
		return false, err
	}
	if lok && rok {
		return ls == rs, nil
	}
	if n.typ.Sig.CorType == corapi.ElementBoolean && !n.typ.IsNumeric {
		if lb, lIsBool := rawBool(left); lIsBool {
			if rb, rIsBool := rawBool(right); rIsBool {
				return lb == rb, nil
			}
		}
	}
	if left.IsNull() || right.IsNull() {
		return left.IsNull() && right.IsNull(), nil
	}
	if lc, ok := left.(*dbgvalue.Class); ok {
		if rc, ok := right.(*dbgvalue.Class); ok {
			return lc.Handle() == rc.Handle(), nil
		}
	}
	if ls2, ok := left.(*dbgvalue.String); ok {
		if rs2, ok := right.(*dbgvalue.String); ok {
			lc, err := ls2.Chars()
			if err != nil {
				return false, err
			}
			rc, err := rs2.Chars()
			if err != nil {
				return false, err
			}
			return lc == rc, nil
		}
	}
	return false, errNotStringOrReference
}

func rawBool(obj dbgvalue.DbgObject) (bool, bool) {
	p, ok := obj.(*dbgvalue.Primitive)
	if !ok {
		return false, false
	}
	b, ok := p.Raw().(bool)
	return b, ok
}

func (n *BinaryNode) numericCompare(left, right dbgvalue.DbgObject) (dbgvalue.DbgObject, error) {
	lf, rf, li, ri, isFloat, err := n.promotedOperands(left, right)
	if err != nil {
		return nil, err
	}
	var result bool
	if isFloat {
		result = compareFloat(n.op, lf, rf)
	} else {
		result = compareInt(n.op, li, ri)
	}
	return dbgvalue.NewPrimitive(corapi.ElementBoolean, result), nil
}

func compareFloat(op string, l, r float64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func compareInt(op string, l, r int64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func (n *BinaryNode) promotedOperands(left, right dbgvalue.DbgObject) (lf, rf float64, li, ri int64, isFloat bool, err error) {
	lp, ok := left.(*dbgvalue.Primitive)
	if !ok {
		return 0, 0, 0, 0, false, dbgerr.New(dbgerr.Type, "non-primitive operand in numeric expression")
	}
	rp, ok := right.(*dbgvalue.Primitive)
	if !ok {
		return 0, 0, 0, 0, false, dbgerr.New(dbgerr.Type, "non-primitive operand in numeric expression")
	}
	isFloat = n.promoted == corapi.ElementR4 || n.promoted == corapi.ElementR8
	if isFloat {
		return asFloat64(lp.Raw()), asFloat64(rp.Raw()), 0, 0, true, nil
	}
	return 0, 0, asInt64(lp.Raw()), asInt64(rp.Raw()), false, nil
}

func (n *BinaryNode) arithmetic(left, right dbgvalue.DbgObject) (dbgvalue.DbgObject, error) {
	lp, ok := left.(*dbgvalue.Primitive)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "non-primitive left operand in arithmetic expression")
	}
	rp, ok := right.(*dbgvalue.Primitive)
	if !ok {
		return nil, dbgerr.New(dbgerr.Type, "non-primitive right operand in arithmetic expression")
	}

	if shiftOps[n.op] {
		shiftAmount := asInt64(rp.Raw())
		mask := int64(31)
		if n.promoted == corapi.ElementI8 || n.promoted == corapi.ElementU8 {
			mask = 63
		}
		shiftAmount &= mask
		lv := asInt64(lp.Raw())
		var result int64
		if n.op == "<<" {
			result = lv << uint(shiftAmount)
		} else {
			result = lv >> uint(shiftAmount)
		}
		return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, 0, result, uint64(result))), nil
	}

	if n.promoted == corapi.ElementR4 || n.promoted == corapi.ElementR8 {
		lv, rv := asFloat64(lp.Raw()), asFloat64(rp.Raw())
		var result float64
		switch n.op {
		case "+":
			result = lv + rv
		case "-":
			result = lv - rv
		case "*":
			result = lv * rv
		case "/":
			result = lv / rv
		default:
			return nil, dbgerr.New(dbgerr.NotImplemented, "unsupported floating-point operator "+n.op)
		}
		return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, result, 0, 0)), nil
	}

	lv, rv := asInt64(lp.Raw()), asInt64(rp.Raw())
	var result int64
	switch n.op {
	case "+":
		result = lv + rv
	case "-":
		result = lv - rv
	case "*":
		result = lv * rv
	case "/":
		if rv == 0 {
			return nil, dbgerr.New(dbgerr.Runtime, "division by zero")
		}
		if lv == minInt64For(n.promoted) && rv == -1 {
			return nil, dbgerr.New(dbgerr.Runtime, "arithmetic overflow")
		}
		result = lv / rv
	case "%":
		if rv == 0 {
			return nil, dbgerr.New(dbgerr.Runtime, "division by zero")
		}
		result = lv % rv
	case "&":
		result = lv & rv
	case "|":
		result = lv | rv
	case "^":
		result = lv ^ rv
	default:
		return nil, dbgerr.New(dbgerr.NotImplemented, "unsupported integer operator "+n.op)
	}
	return dbgvalue.NewPrimitive(n.promoted, wrapNumeric(n.promoted, 0, result, uint64(result))), nil
}

func minInt64For(elemType corapi.ElementType) int64 {
	if elemType == corapi.ElementI4 {
		return int64(int32(-2147483648))
	}
	return -9223372036854775808
}

func (n *BinaryNode) StaticType() StaticType { return n.typ }

func primitiveBool(obj dbgvalue.DbgObject) (bool, error) {
	p, ok := obj.(*dbgvalue.Primitive)
	if !ok {
		return false, dbgerr.New(dbgerr.Type, "expected a boolean operand")
	}
	b, ok := p.Raw().(bool)
	if !ok {
		return false, dbgerr.New(dbgerr.Type, "expected a boolean operand")
	}
	return b, nil
}

// stringContent reads the character payload of a string DbgObject,
// failing if obj is not string-shaped.
func stringContent(obj dbgvalue.DbgObject) (string, error) {
	s, ok, err := tryStringContent(obj)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dbgerr.New(dbgerr.Type, "expected a string operand")
	}
	return s, nil
}

func tryStringContent(obj dbgvalue.DbgObject) (string, bool, error) {
	switch v := obj.(type) {
	case *literalStringObject:
		s, err := v.Content()
		return s, true, err
	case *dbgvalue.String:
		s, err := v.Chars()
		return s, true, err
	default:
		return "", false, nil
	}
}

func canonicalNumericName(t corapi.ElementType) string {
	switch t {
	case corapi.ElementI4:
		return "System.Int32"
	case corapi.ElementI8:
		return "System.Int64"
	case corapi.ElementU4:
		return "System.UInt32"
	case corapi.ElementU8:
		return "System.UInt64"
	case corapi.ElementR4:
		return "System.Single"
	case corapi.ElementR8:
		return "System.Double"
	default:
		return "System.Int32"
	}
}
