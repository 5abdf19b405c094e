package expr

import "github.com/coredbg/clrdbg/internal/corapi"

// isIntegral reports whether t is one of the integral element types
// (signed/unsigned 8/16/32/64-bit, char, native int/uint).
func isIntegral(t corapi.ElementType) bool {
	switch t {
	case corapi.ElementI1, corapi.ElementU1, corapi.ElementI2, corapi.ElementU2,
		corapi.ElementChar, corapi.ElementI4, corapi.ElementU4,
		corapi.ElementI8, corapi.ElementU8, corapi.ElementI, corapi.ElementU:
		return true
	default:
		return false
	}
}

func isFloating(t corapi.ElementType) bool {
	return t == corapi.ElementR4 || t == corapi.ElementR8
}

func isNumeric(t corapi.ElementType) bool {
	return isIntegral(t) || isFloating(t)
}

func isUnsigned(t corapi.ElementType) bool {
	switch t {
	case corapi.ElementU1, corapi.ElementU2, corapi.ElementU4, corapi.ElementU8, corapi.ElementU, corapi.ElementChar:
		return true
	default:
		return false
	}
}

// promoteSmallInt implements "sbyte/byte/short/ushort/char promote to
// int" (spec.md §4.5).
func promoteSmallInt(t corapi.ElementType) corapi.ElementType {
	switch t {
	case corapi.ElementI1, corapi.ElementU1, corapi.ElementI2, corapi.ElementU2, corapi.ElementChar:
		return corapi.ElementI4
	default:
		return t
	}
}

// promoteUnaryPlus promotes an operand to at least int (§4.5 "Unary +").
func promoteUnaryPlus(t corapi.ElementType) corapi.ElementType {
	return promoteSmallInt(t)
}

// promoteUnaryMinus additionally widens uint to long to avoid silent
// overflow on negation (§4.5 "Unary −").
func promoteUnaryMinus(t corapi.ElementType) corapi.ElementType {
	p := promoteSmallInt(t)
	if p == corapi.ElementU4 {
		return corapi.ElementI8
	}
	return p
}

// promoteBinary implements spec.md §4.5's binary numeric promotion:
// small ints promote to int; any double operand promotes the whole
// expression to double, any remaining float operand to float; mixed
// int/long promotes to long; subtracting an unsigned int from a signed
// operand promotes to long to avoid overflow wrap.
func promoteBinary(op string, lt, rt corapi.ElementType) corapi.ElementType {
	lt, rt = promoteSmallInt(lt), promoteSmallInt(rt)

	if lt == corapi.ElementR8 || rt == corapi.ElementR8 {
		return corapi.ElementR8
	}
	if lt == corapi.ElementR4 || rt == corapi.ElementR4 {
		return corapi.ElementR4
	}
	if op == "-" {
		if (lt == corapi.ElementU4 && isSignedIntegral(rt)) || (rt == corapi.ElementU4 && isSignedIntegral(lt)) {
			return corapi.ElementI8
		}
	}
	if lt == corapi.ElementU8 || rt == corapi.ElementU8 {
		return corapi.ElementU8
	}
	if lt == corapi.ElementI8 || rt == corapi.ElementI8 {
		return corapi.ElementI8
	}
	return corapi.ElementI4
}

func isSignedIntegral(t corapi.ElementType) bool {
	switch t {
	case corapi.ElementI1, corapi.ElementI2, corapi.ElementI4, corapi.ElementI8, corapi.ElementI:
		return true
	default:
		return false
	}
}

// asFloat64 converts a primitive Go value (as stored in a
// dbgvalue.Primitive) to float64 for arithmetic in the promoted domain.
func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case int8:
		return float64(n)
	case uint8:
		return float64(n)
	case int16:
		return float64(n)
	case uint16:
		return float64(n)
	case int32:
		return float64(n)
	case uint32:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case uint8:
		return int64(n)
	case int16:
		return int64(n)
	case uint16:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		return 0
	}
}

func asUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case int32:
		return uint64(n)
	case uint32:
		return uint64(n)
	case int64:
		return uint64(n)
	case uint64:
		return n
	default:
		return uint64(asInt64(v))
	}
}

// wrapNumeric converts a computed value in the promoted domain back into
// the Go representation a dbgvalue.Primitive of elemType expects.
func wrapNumeric(elemType corapi.ElementType, f float64, i int64, u uint64) interface{} {
	switch elemType {
	case corapi.ElementR8:
		return f
	case corapi.ElementR4:
		return float32(f)
	case corapi.ElementU8, corapi.ElementU:
		return u
	case corapi.ElementI8, corapi.ElementI:
		return i
	case corapi.ElementU4:
		return uint32(u)
	default:
		return int32(i)
	}
}
