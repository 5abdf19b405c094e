// Package frame implements the stack-frame view of spec.md §4.4: for a
// single IL frame, enumerate locals + arguments paired with PDB names, and
// expose the two lookups evaluators need.
//
// Grounded on original_source/variablemanager.cc's slot-indexed local
// lookup (variable_<slot> fallback, debugger_hidden skip) and the
// teacher's DebugStackFrame/Scope/getVariablesForScope shape in
// _teacher_ref/debugger.go, generalised from goja's stash-chain walk to a
// CLR metadata base-class walk.
package frame

import (
	"fmt"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// Member describes a field or property resolved by name on a type,
// returned by GetMemberFromClassName.
type Member struct {
	TypeSig  corapi.TypeSignature
	Field    *corapi.FieldDef
	Property *corapi.PropertyDef
}

// StackFrame presents one IL frame as a searchable namespace (§4.4).
type StackFrame struct {
	raw      corapi.Frame
	resolver corapi.TypeResolver
}

func New(raw corapi.Frame, resolver corapi.TypeResolver) *StackFrame {
	return &StackFrame{raw: raw, resolver: resolver}
}

func (s *StackFrame) Raw() corapi.Frame { return s.raw }

func (s *StackFrame) MethodName() (string, error) { return s.raw.MethodName() }
func (s *StackFrame) FileName() (string, error)    { return s.raw.FileName() }
func (s *StackFrame) Line() (uint32, error)         { return s.raw.Line() }

// Locals enumerates local variable values paired with PDB names, with the
// variable_<slot> fallback and debugger_hidden skip of
// original_source/variablemanager.cc's PopulateLocalVariable.
func (s *StackFrame) Locals() ([]corapi.LocalVar, error) {
	raw, err := s.raw.LocalVariables()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to enumerate locals", err)
	}
	var out []corapi.LocalVar
	for _, lv := range raw {
		if lv.Hidden {
			continue
		}
		if lv.Name == "" {
			lv.Name = fmt.Sprintf("variable_%d", lv.Slot)
		}
		out = append(out, lv)
	}
	return out, nil
}

func (s *StackFrame) Arguments() ([]corapi.LocalVar, error) {
	raw, err := s.raw.Arguments()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to enumerate arguments", err)
	}
	return raw, nil
}

// Lookup resolves name against locals/arguments first, then (if in an
// instance method) this.name, per spec.md §4.5's Identifier contract.
func (s *StackFrame) Lookup(name string) (corapi.Value, bool, error) {
	locals, err := s.Locals()
	if err != nil {
		return nil, false, err
	}
	for _, lv := range locals {
		if lv.Name == name {
			return lv.Value, true, nil
		}
	}
	args, err := s.Arguments()
	if err != nil {
		return nil, false, err
	}
	for _, lv := range args {
		if lv.Name == name {
			return lv.Value, true, nil
		}
	}

	// Implicit this.name.
	for _, lv := range args {
		if lv.Name != "this" {
			continue
		}
		thisObj, ok := lv.Value.(corapi.ObjectValue)
		if !ok {
			continue
		}
		class, err := thisObj.Class()
		if err != nil {
			return nil, false, nil
		}
		fields, err := class.Fields()
		if err != nil {
			return nil, false, nil
		}
		for _, fd := range fields {
			if fd.Name == name {
				v, err := thisObj.GetFieldValue(fd)
				if err != nil {
					return nil, false, dbgerr.Wrap(dbgerr.Runtime, "failed to read field "+name, err)
				}
				return v, true, nil
			}
		}
	}

	return nil, false, nil
}

// ResolveClass looks up typeName's metadata through the configured type
// resolver, for evaluators that need a Class directly (casts, static
// method dispatch) rather than a single resolved member.
func (s *StackFrame) ResolveClass(typeName string) (corapi.Class, error) {
	if s.resolver == nil {
		return nil, dbgerr.New(dbgerr.Internal, "no type resolver configured")
	}
	return s.resolver.ResolveClass(typeName)
}

// GetMemberFromClassName resolves member on typeName, walking the
// base-class chain, mirroring spec.md §4.4's (type-name, member-name) ->
// member descriptor lookup.
func (s *StackFrame) GetMemberFromClassName(typeName, member string) (*Member, error) {
	if s.resolver == nil {
		return nil, dbgerr.New(dbgerr.Internal, "no type resolver configured")
	}
	class, err := s.resolver.ResolveClass(typeName)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to resolve type "+typeName, err)
	}
	for class != nil {
		fields, err := class.Fields()
		if err == nil {
			for _, fd := range fields {
				if fd.Name == member {
					return &Member{TypeSig: corapi.TypeSignature{}, Field: &fd}, nil
				}
			}
		}
		props, err := class.Properties()
		if err == nil {
			for _, pd := range props {
				if pd.Name == member {
					return &Member{Property: &pd}, nil
				}
			}
		}
		base, ok, err := class.BaseClass()
		if err != nil || !ok {
			break
		}
		class = base
	}
	return nil, dbgerr.New(dbgerr.Resolution, "member "+member+" not found on "+typeName)
}
