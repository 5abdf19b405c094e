package dbgvalue

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// ClassField is the descriptor for one instance or static field, captured
// eagerly (spec.md §3, §4.2 — "Fields are captured eagerly"). Grounded on
// original_source/dbgclassfield.h/.cc.
type ClassField struct {
	def   corapi.FieldDef
	value DbgObject
	err   error
}

func (f *ClassField) Name() string     { return f.def.Name }
func (f *ClassField) IsStatic() bool   { return f.def.IsStatic }
func (f *ClassField) Hidden() bool     { return f.def.Hidden }
func (f *ClassField) Value() DbgObject { return f.value }
func (f *ClassField) Err() error       { return f.err }

// newClassField eagerly materialises field's value from obj (for instance
// fields) using factory, mirroring DbgClassField::Initialize's eager
// DbgObject::CreateDbgObject call.
func newClassField(def corapi.FieldDef, obj corapi.ObjectValue, frame corapi.Frame, depth int, factory *Factory) *ClassField {
	field := &ClassField{def: def}
	if def.IsStatic {
		if frame == nil {
			field.err = dbgerr.New(dbgerr.Runtime, "static field requires an active frame")
			return field
		}
		raw, err := obj.GetStaticFieldValue(def, frame)
		if err != nil {
			field.err = dbgerr.Wrap(dbgerr.Runtime, "failed to read static field "+def.Name, err)
			return field
		}
		val, err := factory.Create(raw, depth)
		if err != nil {
			field.err = err
			return field
		}
		field.value = val
		return field
	}

	raw, err := obj.GetFieldValue(def)
	if err != nil {
		field.err = dbgerr.Wrap(dbgerr.Runtime, "failed to read field "+def.Name, err)
		return field
	}
	val, err := factory.Create(raw, depth)
	if err != nil {
		field.err = err
		return field
	}
	field.value = val
	return field
}
