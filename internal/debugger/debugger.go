// Package debugger implements the debug-callback surface of spec.md §4.7:
// the Break/Exception/EvalComplete/EvalException/ModuleLoad dispatch that
// drives the breakpoint registry and the eval coordinator, and produces
// the wire-form Snapshot a transport can ship off to a client.
//
// Grounded on _teacher_ref/debugger.go's handlePause (build state, call
// the registered handler, always resume) and
// original_source/debuggercallback.cc's callback sequencing (each method
// does its work, then unconditionally resumes the runtime).
package debugger

import (
	"context"
	"log/slog"

	"github.com/coredbg/clrdbg/internal/breakpoint"
	"github.com/coredbg/clrdbg/internal/config"
	"github.com/coredbg/clrdbg/internal/coordinator"
	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
	"github.com/coredbg/clrdbg/internal/frame"
)

// Debugger wires the registry, coordinator and snapshot sink together into
// the event-handler surface a real debug-callback implementation drives.
// Reference counting (spec.md §4.7's "reference counted") is left to the
// real COM/ICorDebug callback shim; nothing here needs it.
type Debugger struct {
	registry    *breakpoint.Registry
	resolver    corapi.TypeResolver
	coordinator *coordinator.Coordinator
	sink        SnapshotSink
	cfg         config.Config
	logger      *slog.Logger

	lastException *ExceptionEvent
}

// New builds a Debugger. resolver is used to build the per-frame view
// internal/expr needs to resolve static member/type access.
func New(registry *breakpoint.Registry, resolver corapi.TypeResolver, coord *coordinator.Coordinator, sink SnapshotSink, cfg config.Config, logger *slog.Logger) *Debugger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debugger{
		registry:    registry,
		resolver:    resolver,
		coordinator: coord,
		sink:        sink,
		cfg:         cfg,
		logger:      logger,
	}
}

// Break implements the Break(appdomain, thread, breakpoint) callback:
// look up the physical location, dispatch to the coordinator for frame
// capture and condition evaluation, and always Continue before returning
// (spec.md §4.7).
func (d *Debugger) Break(ctx context.Context, domain AppDomain, thread Thread, moduleID uint64, methodToken, ilOffset uint32) error {
	defer d.mustContinue(domain)

	loc, ok := d.registry.FindLocation(moduleID, methodToken, ilOffset)
	if !ok {
		d.logger.Warn("break at unregistered location", "module_id", moduleID, "method_token", methodToken, "il_offset", ilOffset)
		return nil
	}

	rawFrames, err := thread.Frames()
	if err != nil {
		d.logger.Error("failed to capture call stack at break", "error", err)
		return dbgerr.Wrap(dbgerr.Runtime, "failed to capture call stack at break", err)
	}
	if len(rawFrames) == 0 {
		d.logger.Error("break delivered with no frames on the thread")
		return dbgerr.New(dbgerr.Runtime, "break delivered with no frames on the thread")
	}
	topFrame := frame.New(rawFrames[0], d.resolver)

	d.coordinator.Inspect(thread, func(c *coordinator.Coordinator) {
		d.captureHit(ctx, c, loc, topFrame, rawFrames)
	})
	return nil
}

// Exception implements the Exception(appdomain, thread, unhandled)
// callback: latch the event for later inspection and Continue.
func (d *Debugger) Exception(domain AppDomain, evt ExceptionEvent) error {
	defer d.mustContinue(domain)
	d.lastException = &evt
	d.logger.Warn("exception", "unhandled", evt.Unhandled, "message", evt.Message)
	return nil
}

// LastException returns the most recently latched Exception event, or nil
// if none has been observed yet.
func (d *Debugger) LastException() *ExceptionEvent { return d.lastException }

// EvalComplete forwards a completed eval to the coordinator and Continues,
// per spec.md §4.7's "EvalComplete / EvalException. Forward to
// coordinator; Continue."
func (d *Debugger) EvalComplete(domain AppDomain) error {
	d.coordinator.SignalEvalComplete()
	return domain.Continue()
}

// EvalException forwards a thrown eval to the coordinator and Continues.
func (d *Debugger) EvalException(domain AppDomain, cause error) error {
	d.coordinator.SignalEvalException(cause)
	return domain.Continue()
}

// ModuleLoad re-attempts resolution of any Unresolved breakpoint against
// the newly loaded module's PDB, then Continues (spec.md §4.6's
// "breakpoints set before the method loads stay Unresolved ... retried on
// ModuleLoad/ClassLoad").
func (d *Debugger) ModuleLoad(domain AppDomain) error {
	defer d.mustContinue(domain)
	if err := d.registry.OnModuleLoad(); err != nil {
		d.logger.Error("failed to re-resolve breakpoints on module load", "error", err)
		return err
	}
	return nil
}

// ClassLoad behaves identically to ModuleLoad: a freshly loaded class can
// carry PDB sequence points a pending breakpoint was waiting on.
func (d *Debugger) ClassLoad(domain AppDomain) error {
	return d.ModuleLoad(domain)
}

// DefaultContinue handles every other callback spec.md §4.7 lists as
// "Everything else: default Continue."
func (d *Debugger) DefaultContinue(domain AppDomain) error {
	return domain.Continue()
}

// mustContinue calls domain.Continue(), logging (never panicking) if it
// fails — the one call every event method must make before returning, per
// §4.7's "must eventually call Continue on the app-domain before returning
// or the runtime stalls."
func (d *Debugger) mustContinue(domain AppDomain) {
	if err := domain.Continue(); err != nil {
		d.logger.Error("continue failed", "error", err)
	}
}
