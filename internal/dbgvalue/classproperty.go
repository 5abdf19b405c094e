package dbgvalue

import (
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// GetterInvoker is the minimal surface a property read needs from the
// evaluation coordinator: dispatch a parameterless instance-getter call
// and block until it completes or throws. Declared here (rather than
// importing internal/coordinator) so dbgvalue has no dependency on the
// concurrency machinery; internal/coordinator.Coordinator implements it.
type GetterInvoker interface {
	InvokeGetter(receiver corapi.Value, getterToken uint32, frame corapi.Frame, generics []TypeSignature) (corapi.Value, error)
}

// ClassProperty is the descriptor for one property, auto-implemented or not.
// Unlike ClassField, its value is never captured eagerly — PopulateValue
// must be called explicitly, and only then does it invoke the coordinator
// (spec.md §3, §4.2). Grounded on
// original_source/dbgclassproperty.h/.cc.
type ClassProperty struct {
	def               corapi.PropertyDef
	value             DbgObject
	exceptionOccurred bool
	populated         bool
}

func newClassProperty(def corapi.PropertyDef) *ClassProperty {
	return &ClassProperty{def: def}
}

func (p *ClassProperty) Name() string            { return p.def.Name }
func (p *ClassProperty) HasGetter() bool         { return p.def.GetterToken != 0 }
func (p *ClassProperty) Value() DbgObject        { return p.value }
func (p *ClassProperty) ExceptionOccurred() bool { return p.exceptionOccurred }
func (p *ClassProperty) Populated() bool         { return p.populated }

// PopulateValue reads the property by invoking its getter through invoker,
// mirroring DbgClassProperty::Print's CreateEval -> CallParameterizedFunction
// -> WaitForEval sequence (original_source/dbgclassproperty.cc). A thrown
// getter is recorded as ExceptionOccurred() with no value, matching
// spec.md Scenario C, rather than returned as a Go error — the caller (the
// field/property-access evaluator) decides how to surface that per the §7
// propagation policy.
func (p *ClassProperty) PopulateValue(invoker GetterInvoker, receiver corapi.Value, frame corapi.Frame, generics []TypeSignature, depth int, factory *Factory) error {
	if !p.HasGetter() {
		return dbgerr.New(dbgerr.NotImplemented, "property "+p.def.Name+" has no getter")
	}
	result, err := invoker.InvokeGetter(receiver, p.def.GetterToken, frame, generics)
	if err != nil {
		if kind, ok := dbgerr.KindOf(err); ok && kind == dbgerr.EvalException {
			p.exceptionOccurred = true
			p.populated = true
			return nil
		}
		return err
	}
	val, err := factory.Create(result, depth-1)
	if err != nil {
		return err
	}
	p.value = val
	p.populated = true
	return nil
}
