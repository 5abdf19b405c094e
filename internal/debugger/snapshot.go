package debugger

import (
	"context"

	"github.com/coredbg/clrdbg/internal/breakpoint"
	"github.com/coredbg/clrdbg/internal/coordinator"
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/dbgvalue"
	"github.com/coredbg/clrdbg/internal/expr"
	"github.com/coredbg/clrdbg/internal/frame"
	"github.com/coredbg/clrdbg/internal/wire"
)

// captureHit runs on the inspection goroutine c.Inspect spawned: evaluate
// every logical breakpoint pinned to loc, capture the stack for those that
// match, and emit a Snapshot per captured breakpoint (spec.md §4.7's
// "Evaluate each logical breakpoint's condition if any; those with no
// condition or whose condition evaluates to true are captured; others are
// skipped.").
func (d *Debugger) captureHit(ctx context.Context, c *coordinator.Coordinator, loc *breakpoint.Location, topFrame *frame.StackFrame, rawFrames []corapi.Frame) {
	for _, bp := range loc.Breakpoints() {
		if !bp.Enabled {
			continue
		}
		matched, err := d.evaluateCondition(ctx, c, topFrame, bp.Condition)
		if err != nil {
			// Scenario F: a condition that fails to evaluate (e.g. an
			// integer-division overflow) leaves the breakpoint uncaptured
			// rather than aborting the whole hit (§7 propagation policy).
			d.logger.Warn("breakpoint condition failed to evaluate", "breakpoint_id", bp.ID, "error", err)
			continue
		}
		if !matched {
			continue
		}

		frames, err := d.captureFrames(c, rawFrames)
		if err != nil {
			d.logger.Error("failed to capture frames for breakpoint hit", "breakpoint_id", bp.ID, "error", err)
			continue
		}

		snap := wire.Snapshot{
			Breakpoint: wire.Breakpoint{
				ID:        bp.ID,
				Location:  wire.SourceLocation{Path: bp.File, Line: bp.Line, Column: bp.Column},
				Condition: bp.Condition,
				Activated: true,
				Status:    "hit",
			},
			Frames: frames,
		}
		methodName, err := topFrame.MethodName()
		if err == nil {
			snap.Breakpoint.MethodName = methodName
		}

		json, err := wire.EncodeSnapshot(snap)
		if err != nil {
			d.logger.Error("failed to encode snapshot", "breakpoint_id", bp.ID, "error", err)
			continue
		}
		if d.sink != nil {
			if err := d.sink.EmitSnapshot(json); err != nil {
				d.logger.Error("failed to emit snapshot", "breakpoint_id", bp.ID, "error", err)
			}
		}
	}
}

// evaluateCondition compiles and evaluates condition against fr, returning
// true when condition is empty (unconditional breakpoint). Compile and
// evaluate failures are returned as errors rather than treated as
// false, so the caller can distinguish "condition false" from "condition
// broken" per §7 (Scenario F).
func (d *Debugger) evaluateCondition(ctx context.Context, invoker expr.Invoker, fr *frame.StackFrame, condition string) (bool, error) {
	if condition == "" {
		return true, nil
	}
	node, err := expr.Compile(condition, fr)
	if err != nil {
		return false, err
	}
	factory := dbgvalue.NewFactory(fr.Raw())
	result, err := node.Evaluate(&expr.EvalContext{Ctx: ctx, Frame: fr, Factory: factory, Invoker: invoker})
	if err != nil {
		return false, err
	}
	prim, ok := result.(*dbgvalue.Primitive)
	if !ok {
		return false, dbgerr.New(dbgerr.Type, "breakpoint condition did not evaluate to a boolean")
	}
	truth, ok := prim.Raw().(bool)
	if !ok {
		return false, dbgerr.New(dbgerr.Type, "breakpoint condition did not evaluate to a boolean")
	}
	return truth, nil
}

// captureFrames builds the wire form of every frame on the stack: method
// name, location, and locals/arguments materialised through the object
// factory, with getter properties populated when enabled (spec.md §4.2,
// §6). A frame whose method name cannot be read is skipped, mirroring the
// PDB-less-frame skip _teacher_ref/debugger.go's buildDebugStack applies
// to native frames; an unreadable file name or line is reported as empty
// or zero rather than skipping the frame.
func (d *Debugger) captureFrames(invoker dbgvalue.GetterInvoker, rawFrames []corapi.Frame) ([]wire.StackFrame, error) {
	out := make([]wire.StackFrame, 0, len(rawFrames))
	for _, raw := range rawFrames {
		fr := frame.New(raw, d.resolver)
		methodName, err := fr.MethodName()
		if err != nil {
			continue
		}
		file, _ := fr.FileName()
		line, _ := fr.Line()

		factory := dbgvalue.NewFactory(raw)

		locals, err := fr.Locals()
		if err != nil {
			return nil, err
		}
		args, err := fr.Arguments()
		if err != nil {
			return nil, err
		}

		wfr := wire.StackFrame{
			MethodName: methodName,
			Location:   wire.SourceLocation{Path: file, Line: line},
		}
		for _, lv := range locals {
			val, err := d.materialise(factory, invoker, raw, lv.Value)
			if err != nil {
				d.logger.Warn("failed to materialise local", "name", lv.Name, "error", err)
				continue
			}
			wfr.Locals = append(wfr.Locals, wire.NamedVariable{Name: lv.Name, Value: val})
		}
		for _, lv := range args {
			if lv.Hidden {
				continue
			}
			val, err := d.materialise(factory, invoker, raw, lv.Value)
			if err != nil {
				d.logger.Warn("failed to materialise argument", "name", lv.Name, "error", err)
				continue
			}
			wfr.Arguments = append(wfr.Arguments, wire.NamedVariable{Name: lv.Name, Value: val})
		}
		out = append(out, wfr)
	}
	return out, nil
}

// materialise runs Factory.Create bounded by the configured object depth,
// then (if enabled) populates every reachable property's value by
// invoking its getter through invoker.
func (d *Debugger) materialise(factory *dbgvalue.Factory, invoker dbgvalue.GetterInvoker, fr corapi.Frame, value corapi.Value) (dbgvalue.DbgObject, error) {
	obj, err := factory.Create(value, d.cfg.ObjectDepth)
	if err != nil {
		return nil, err
	}
	if d.cfg.PropertyEvalEnabled {
		d.populateProperties(obj, invoker, fr, factory, 0)
	}
	return obj, nil
}

// populateProperties walks a materialised object's fields/elements,
// invoking every getter it finds so the wire encoder never has to do
// runtime work of its own (EncodeVariable only renders what is already
// Populated()). Capped at maxArrayItemsToRetrieve elements per array
// (matching the same truncation EncodeVariable applies) so a pathologically
// large array cannot turn one breakpoint hit into thousands of evals.
func (d *Debugger) populateProperties(obj dbgvalue.DbgObject, invoker dbgvalue.GetterInvoker, fr corapi.Frame, factory *dbgvalue.Factory, visited int) {
	const maxVisited = 10000
	if visited > maxVisited {
		return
	}
	switch v := obj.(type) {
	case *dbgvalue.Class:
		if v.PrimitiveEquivalent() != nil {
			return
		}
		receiver := classReceiver(v)
		if receiver != nil {
			for _, prop := range v.Properties() {
				if !prop.HasGetter() {
					continue
				}
				if err := prop.PopulateValue(invoker, receiver, fr, nil, d.cfg.ObjectDepth, factory); err != nil {
					d.logger.Warn("failed to populate property", "name", prop.Name(), "error", err)
					continue
				}
				d.populateProperties(prop.Value(), invoker, fr, factory, visited+1)
			}
		}
		for _, field := range v.Fields() {
			d.populateProperties(field.Value(), invoker, fr, factory, visited+1)
		}
	case *dbgvalue.Array:
		total := v.TotalItems()
		if total > dbgvalue.MaxArrayItemsToRetrieve {
			total = dbgvalue.MaxArrayItemsToRetrieve
		}
		for i := uint64(0); i < total; i++ {
			elem, err := v.ElementAt(i)
			if err != nil {
				continue
			}
			d.populateProperties(elem, invoker, fr, factory, visited+1)
		}
	}
}

// classReceiver recovers the live corapi.Value backing v, or nil for a
// valuetype (no retained handle) or a released handle.
func classReceiver(v *dbgvalue.Class) corapi.Value {
	h := v.Handle()
	if h == nil {
		return nil
	}
	val, err := h.Value()
	if err != nil {
		return nil
	}
	return val
}
