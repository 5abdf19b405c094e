package debugger

import "github.com/coredbg/clrdbg/internal/corapi"

// AppDomain is the Continue capability of spec.md §4.7: every event
// handler method must eventually call it before returning or the runtime
// stalls (the collaborator spec.md §6 describes only in terms of the
// capability, never an ABI).
type AppDomain interface {
	Continue() error
}

// Thread extends corapi.Thread (already consumed by internal/coordinator)
// with the ability to capture its current call stack, the one additional
// capability the event handler needs to build a snapshot at Break.
type Thread interface {
	corapi.Thread
	Frames() ([]corapi.Frame, error)
}

// ExceptionEvent carries the Exception callback's payload (spec.md §4.7:
// "Exception(appdomain, thread, unhandled)").
type ExceptionEvent struct {
	Unhandled bool
	Message   string
}

// SnapshotSink receives the wire-encoded JSON of a captured breakpoint hit
// (spec.md §6's Snapshot schema). The actual named-pipe transport is an
// external collaborator per §1; SnapshotSink is the seam this module
// exposes so one can be bolted on without touching the event handler.
type SnapshotSink interface {
	EmitSnapshot(json string) error
}
