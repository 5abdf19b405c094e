// Package wire implements the Breakpoint/StackFrame/Variable JSON schema
// spec.md §6 describes as the transport payload, and the DbgObject
// serialisation (original_source/dbgobject.cc's OutputJSON) that fills a
// Variable's value/members. It is a pure encode/decode library: no socket,
// no length-framing — that remains an external collaborator per §1.
package wire

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/coredbg/clrdbg/internal/dbgvalue"
)

// SourceLocation is a file+line+column location, the location{} field of
// spec.md §6's Breakpoint schema.
type SourceLocation struct {
	Path   string
	Line   uint32
	Column uint32
}

// Breakpoint is the wire representation of a set-breakpoint message or a
// snapshot's originating breakpoint.
type Breakpoint struct {
	ID         string
	Location   SourceLocation
	Condition  string
	Activated  bool
	MethodName string
	Status     string
}

// EncodeBreakpoint builds the JSON form of bp using sjson, grounded on
// original_source/variablemanager.cc's Breakpoint/SourceLocation protobuf
// field assembly translated to the equivalent JSON shape.
func EncodeBreakpoint(bp Breakpoint) (string, error) {
	json := "{}"
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		json, err = sjson.Set(json, path, value)
	}
	set("id", bp.ID)
	set("location.path", bp.Location.Path)
	set("location.line", bp.Location.Line)
	set("location.column", bp.Location.Column)
	if bp.Condition != "" {
		set("condition", bp.Condition)
	}
	set("activated", bp.Activated)
	if bp.MethodName != "" {
		set("method_name", bp.MethodName)
	}
	if bp.Status != "" {
		set("status", bp.Status)
	}
	return json, err
}

// DecodeBreakpoint reads a set-breakpoint message using gjson.
func DecodeBreakpoint(raw string) Breakpoint {
	r := gjson.Parse(raw)
	return Breakpoint{
		ID: r.Get("id").String(),
		Location: SourceLocation{
			Path:   r.Get("location.path").String(),
			Line:   uint32(r.Get("location.line").Uint()),
			Column: uint32(r.Get("location.column").Uint()),
		},
		Condition:  r.Get("condition").String(),
		Activated:  r.Get("activated").Bool(),
		MethodName: r.Get("method_name").String(),
		Status:     r.Get("status").String(),
	}
}

// StackFrame is the wire representation of one captured IL frame: method
// name, hit location, and the locals/arguments a Break snapshot carries
// for it (spec.md §6's StackFrame{method_name, location, locals[],
// arguments[]} schema).
type StackFrame struct {
	MethodName string
	Location   SourceLocation
	Locals     []NamedVariable
	Arguments  []NamedVariable
}

// NamedVariable pairs a variable name with its materialised value, the
// input EncodeStackFrame needs before it can call EncodeVariable per slot.
type NamedVariable struct {
	Name  string
	Value dbgvalue.DbgObject
}

// EncodeStackFrame builds the JSON form of one captured frame, nesting
// each local/argument through EncodeVariable.
func EncodeStackFrame(fr StackFrame) (string, error) {
	json := "{}"
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		json, err = sjson.Set(json, path, value)
	}
	setRaw := func(path string, rawJSON string) {
		if err != nil {
			return
		}
		json, err = sjson.SetRaw(json, path, rawJSON)
	}

	set("method_name", fr.MethodName)
	set("location.path", fr.Location.Path)
	set("location.line", fr.Location.Line)
	set("location.column", fr.Location.Column)

	locals := "[]"
	for _, lv := range fr.Locals {
		varJSON, verr := EncodeVariable(lv.Name, lv.Value)
		if verr != nil {
			err = verr
			continue
		}
		locals, _ = sjson.SetRaw(locals, "-1", varJSON)
	}
	setRaw("locals", locals)

	args := "[]"
	for _, av := range fr.Arguments {
		varJSON, verr := EncodeVariable(av.Name, av.Value)
		if verr != nil {
			err = verr
			continue
		}
		args, _ = sjson.SetRaw(args, "-1", varJSON)
	}
	setRaw("arguments", args)

	return json, err
}

// Snapshot is the full serialised capture of a breakpoint hit: the
// originating Breakpoint plus every captured stack frame (spec.md §6's
// Snapshot shape, glossary entry "Snapshot").
type Snapshot struct {
	Breakpoint Breakpoint
	Frames     []StackFrame
}

// EncodeSnapshot builds the JSON form of a full breakpoint-hit snapshot.
func EncodeSnapshot(snap Snapshot) (string, error) {
	bpJSON, err := EncodeBreakpoint(snap.Breakpoint)
	if err != nil {
		return "", err
	}
	json, err := sjson.SetRaw("{}", "breakpoint", bpJSON)
	if err != nil {
		return "", err
	}

	frames := "[]"
	for _, fr := range snap.Frames {
		frJSON, ferr := EncodeStackFrame(fr)
		if ferr != nil {
			return "", ferr
		}
		frames, err = sjson.SetRaw(frames, "-1", frJSON)
		if err != nil {
			return "", err
		}
	}
	return sjson.SetRaw(json, "stack_frames", frames)
}

// EncodeVariable serialises a named DbgObject into the Variable schema's
// JSON shape. It mirrors DbgObject::OutputJSON's two forms: a leaf
// `{"name":...,"type":...,"value":...}` and a container
// `{"name":...,"type":...,"members":[...]}`, with the null short-circuit
// `{"value": null}` taking priority over either.
func EncodeVariable(name string, obj dbgvalue.DbgObject) (string, error) {
	json := "{}"
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		json, err = sjson.Set(json, path, value)
	}
	setRaw := func(path string, rawJSON string) {
		if err != nil {
			return
		}
		json, err = sjson.SetRaw(json, path, rawJSON)
	}

	set("name", name)
	if obj == nil {
		set("value", nil)
		return json, err
	}
	set("type", obj.Type().TypeName)

	if obj.Err() != nil {
		set("status", obj.Err().Error())
	}

	if obj.IsNull() {
		set("value", nil)
		return json, err
	}

	switch v := obj.(type) {
	case *dbgvalue.Primitive:
		setValue(set, v.Raw())
	case *dbgvalue.String:
		chars, cerr := v.Chars()
		if cerr != nil {
			set("status", cerr.Error())
		} else {
			set("value", chars)
		}
	case *dbgvalue.Array:
		members := "[]"
		total := v.TotalItems()
		if total > dbgvalue.MaxArrayItemsToRetrieve {
			total = dbgvalue.MaxArrayItemsToRetrieve
		}
		for i := uint64(0); i < total; i++ {
			elem, eerr := v.ElementAt(i)
			var memberJSON string
			if eerr != nil {
				memberJSON, _ = EncodeVariable("["+strconv.FormatUint(i, 10)+"]", nil)
			} else {
				memberJSON, _ = EncodeVariable("["+strconv.FormatUint(i, 10)+"]", elem)
			}
			members, _ = sjson.SetRaw(members, "-1", memberJSON)
		}
		setRaw("members", members)
	case *dbgvalue.Class:
		if prim := v.PrimitiveEquivalent(); prim != nil {
			setValue(set, prim.Raw())
			break
		}
		members := "[]"
		for _, field := range v.Fields() {
			var memberJSON string
			if field.Err() != nil {
				memberJSON, _ = EncodeVariable(field.Name(), nil)
				memberJSON, _ = sjson.Set(memberJSON, "status", field.Err().Error())
			} else {
				memberJSON, _ = EncodeVariable(field.Name(), field.Value())
			}
			members, _ = sjson.SetRaw(members, "-1", memberJSON)
		}
		for _, prop := range v.Properties() {
			var memberJSON string
			switch {
			case !prop.Populated():
				memberJSON, _ = EncodeVariable(prop.Name(), nil)
				memberJSON, _ = sjson.Set(memberJSON, "status", "not evaluated")
			case prop.ExceptionOccurred():
				memberJSON, _ = EncodeVariable(prop.Name(), nil)
				memberJSON, _ = sjson.Set(memberJSON, "status", "throws exception")
			default:
				memberJSON, _ = EncodeVariable(prop.Name(), prop.Value())
			}
			members, _ = sjson.SetRaw(members, "-1", memberJSON)
		}
		setRaw("members", members)
	default:
		set("value", nil)
	}

	return json, err
}

func setValue(set func(string, interface{}), raw interface{}) {
	set("value", raw)
}
