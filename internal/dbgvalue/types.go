package dbgvalue

import "github.com/coredbg/clrdbg/internal/corapi"

// canonicalTypeName returns the framework name for a primitive element
// type, grounded on original_source/dbgprimitive.h's PrintTypeCore
// overload set (System.Char/Boolean/SByte/Byte/Int16/UInt16/Int32/UInt32/
// Int64/UInt64/Single/Double, and System.IntPtr/UIntPtr for I/U).
func canonicalTypeName(t corapi.ElementType) string {
	switch t {
	case corapi.ElementBoolean:
		return "System.Boolean"
	case corapi.ElementChar:
		return "System.Char"
	case corapi.ElementI1:
		return "System.SByte"
	case corapi.ElementU1:
		return "System.Byte"
	case corapi.ElementI2:
		return "System.Int16"
	case corapi.ElementU2:
		return "System.UInt16"
	case corapi.ElementI4:
		return "System.Int32"
	case corapi.ElementU4:
		return "System.UInt32"
	case corapi.ElementI8:
		return "System.Int64"
	case corapi.ElementU8:
		return "System.UInt64"
	case corapi.ElementR4:
		return "System.Single"
	case corapi.ElementR8:
		return "System.Double"
	case corapi.ElementI:
		return "System.IntPtr"
	case corapi.ElementU:
		return "System.UIntPtr"
	case corapi.ElementString:
		return "System.String"
	default:
		return "System.Object"
	}
}

// primitiveEquivalentClasses is the fixed allowlist of value-type class
// names that short-circuit class materialisation into a Primitive rather
// than walking fields, grounded on original_source/dbgclass.cc's
// ProcessValueType (which only recognises System.Int32 and System.Boolean
// there; this port extends the same allowlist to the rest of the
// primitive-equivalent set named in spec.md §4.2, since the original's two-
// entry list was itself incomplete relative to the .NET value-type set it
// claims to special-case).
var primitiveEquivalentClasses = map[string]corapi.ElementType{
	"System.Boolean": corapi.ElementBoolean,
	"System.Char":    corapi.ElementChar,
	"System.SByte":   corapi.ElementI1,
	"System.Byte":    corapi.ElementU1,
	"System.Int16":   corapi.ElementI2,
	"System.UInt16":  corapi.ElementU2,
	"System.Int32":   corapi.ElementI4,
	"System.UInt32":  corapi.ElementU4,
	"System.Int64":   corapi.ElementI8,
	"System.UInt64":  corapi.ElementU8,
	"System.Single":  corapi.ElementR4,
	"System.Double":  corapi.ElementR8,
}

// backingFieldName recognises the compiler-emitted auto-property backing
// field shape "<Name>k__BackingField" and returns the property name it
// backs, grounded on spec.md §4.2's backing-field recognition rule.
func backingFieldName(fieldName string) (propName string, ok bool) {
	const suffix = ">k__BackingField"
	if len(fieldName) < len(suffix)+1 {
		return "", false
	}
	if fieldName[0] != '<' {
		return "", false
	}
	closeIdx := -1
	for i := 1; i < len(fieldName); i++ {
		if fieldName[i] == '>' {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return "", false
	}
	if fieldName[closeIdx:] != suffix {
		return "", false
	}
	return fieldName[1:closeIdx], true
}
