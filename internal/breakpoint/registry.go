// Package breakpoint implements the breakpoint registry of spec.md §4.6:
// resolving (file, line) pairs against PDB sequence points, multiplexing
// logical breakpoints onto shared physical armings, and the
// Unresolved -> Resolved -> Armed <-> Disarmed -> Retired state machine.
//
// Grounded on original_source/src/google_cloud_debugger/google_cloud_debugger_lib/
// breakpoint_location_collection.h/.cc's UpdateBreakpoints/ResolveBreakpoint
// sequence-point matching, and the teacher's AddBreakpoint/resolveBreakpoint/
// pcBreakpoints shape in _teacher_ref/debugger.go, generalised from goja's
// single in-process VM to a PDB-resolved, multi-location registry.
package breakpoint

import (
	"strconv"
	"strings"
	"sync"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// State is a DbgBreakpoint's position in its lifecycle (spec.md §4.6).
type State int

const (
	Unresolved State = iota
	Resolved
	Armed
	Disarmed
	Retired
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Armed:
		return "armed"
	case Disarmed:
		return "disarmed"
	case Retired:
		return "retired"
	default:
		return "unknown"
	}
}

// Resolution is the (module, method-token, IL-offset) tuple a breakpoint
// binds to once resolved. ModuleID is required: method tokens are only
// unique within their owning module, so two modules can legitimately
// reuse the same token for unrelated methods.
type Resolution struct {
	ModuleID    uint64
	MethodToken uint32
	ILOffset    uint32
}

// DbgBreakpoint is one logical breakpoint: (id, file, line, column,
// condition?, enabled) plus its resolution once bound.
type DbgBreakpoint struct {
	ID        string
	File      string
	Line      uint32
	Column    uint32
	Condition string
	Enabled   bool

	state      State
	resolution Resolution
	location   *Location
	failReason string
}

func (b *DbgBreakpoint) State() State           { return b.state }
func (b *DbgBreakpoint) Resolution() Resolution { return b.resolution }
func (b *DbgBreakpoint) FailReason() string     { return b.failReason }

// Location is the de-duplicated physical site: at most one native arming,
// active iff at least one pinned logical breakpoint is enabled.
type Location struct {
	Resolution Resolution
	native     corapi.NativeBreakpoint
	armed      bool
	breakpoints []*DbgBreakpoint
}

func (l *Location) Breakpoints() []*DbgBreakpoint { return l.breakpoints }
func (l *Location) Armed() bool                   { return l.armed }

// Registry owns every BreakpointLocation and the logical breakpoints
// pinned to them.
type Registry struct {
	backend corapi.BreakpointBackend

	mu          sync.Mutex
	locations   map[Resolution]*Location
	byID        map[string]*DbgBreakpoint
	unresolved  map[string]*DbgBreakpoint
}

func NewRegistry(backend corapi.BreakpointBackend) *Registry {
	return &Registry{
		backend:    backend,
		locations:  make(map[Resolution]*Location),
		byID:       make(map[string]*DbgBreakpoint),
		unresolved: make(map[string]*DbgBreakpoint),
	}
}

// SetBreakpoint resolves (file, line) and either pins bp to an existing
// Location or creates a new one, arming it iff bp starts enabled.
func (r *Registry) SetBreakpoint(id, file string, line, column uint32, condition string, enabled bool) (*DbgBreakpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bp := &DbgBreakpoint{
		ID:        id,
		File:      file,
		Line:      line,
		Column:    column,
		Condition: condition,
		Enabled:   enabled,
		state:     Unresolved,
	}
	r.byID[id] = bp

	res, ok, err := r.resolve(file, line)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Resolution, "failed to query PDB documents", err)
	}
	if !ok {
		bp.failReason = "no sequence point matched for " + file + ":" + strconv.FormatUint(uint64(line), 10)
		r.unresolved[id] = bp
		return bp, nil
	}

	if err := r.pin(bp, res); err != nil {
		return nil, err
	}
	return bp, nil
}

// pin attaches bp (already Unresolved) to the Location for res, creating
// the Location (and its native arming) if this is the first breakpoint
// there, and updates the aggregate arm/disarm state.
func (r *Registry) pin(bp *DbgBreakpoint, res Resolution) error {
	bp.state = Resolved
	bp.resolution = res

	loc, ok := r.locations[res]
	if !ok {
		native, err := r.backend.CreateNativeBreakpoint(res.ModuleID, res.MethodToken, res.ILOffset)
		if err != nil {
			return dbgerr.Wrap(dbgerr.Internal, "failed to create native breakpoint", err)
		}
		loc = &Location{Resolution: res, native: native}
		r.locations[res] = loc
	}
	loc.breakpoints = append(loc.breakpoints, bp)
	bp.location = loc

	return r.updateArmState(loc)
}

// updateArmState enforces "the native arming is active iff at least one
// logical breakpoint at the location is enabled" (spec.md §4.6).
func (r *Registry) updateArmState(loc *Location) error {
	anyEnabled := false
	for _, bp := range loc.breakpoints {
		if bp.Enabled && bp.state != Retired {
			anyEnabled = true
			break
		}
	}

	switch {
	case anyEnabled && !loc.armed:
		if err := loc.native.Arm(); err != nil {
			return dbgerr.Wrap(dbgerr.Internal, "failed to arm native breakpoint", err)
		}
		loc.armed = true
	case !anyEnabled && loc.armed:
		if err := loc.native.Disarm(); err != nil {
			return dbgerr.Wrap(dbgerr.Internal, "failed to disarm native breakpoint", err)
		}
		loc.armed = false
	}

	for _, bp := range loc.breakpoints {
		if bp.state == Retired {
			continue
		}
		if loc.armed {
			bp.state = Armed
		} else {
			bp.state = Disarmed
		}
	}
	return nil
}

// SetEnabled flips a breakpoint's enabled flag and re-derives its
// location's aggregate arm state.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bp, ok := r.byID[id]
	if !ok {
		return dbgerr.New(dbgerr.Internal, "unknown breakpoint id "+id)
	}
	bp.Enabled = enabled
	if bp.location == nil {
		return nil
	}
	return r.updateArmState(bp.location)
}

// Remove retires bp, unpinning it from its Location and disarming the
// Location if it becomes empty of enabled breakpoints.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bp, ok := r.byID[id]
	if !ok {
		return dbgerr.New(dbgerr.Internal, "unknown breakpoint id "+id)
	}
	bp.state = Retired
	delete(r.byID, id)
	delete(r.unresolved, id)

	if bp.location == nil {
		return nil
	}
	loc := bp.location
	remaining := loc.breakpoints[:0]
	for _, other := range loc.breakpoints {
		if other != bp {
			remaining = append(remaining, other)
		}
	}
	loc.breakpoints = remaining
	if len(loc.breakpoints) == 0 {
		if loc.armed {
			if err := loc.native.Disarm(); err != nil {
				return dbgerr.Wrap(dbgerr.Internal, "failed to disarm native breakpoint", err)
			}
		}
		delete(r.locations, loc.Resolution)
		return nil
	}
	return r.updateArmState(loc)
}

// OnModuleLoad re-attempts resolution of every Unresolved breakpoint,
// mirroring the "module-load, class-load: notify the registry" dispatch
// of spec.md §4.7.
func (r *Registry) OnModuleLoad() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, bp := range r.unresolved {
		res, ok, err := r.resolve(bp.File, bp.Line)
		if err != nil {
			return dbgerr.Wrap(dbgerr.Resolution, "failed to query PDB documents", err)
		}
		if !ok {
			continue
		}
		if err := r.pin(bp, res); err != nil {
			return err
		}
		delete(r.unresolved, id)
	}
	return nil
}

// FindLocation looks up the Location bound to (moduleID, methodToken,
// ilOffset), the lookup the debugger event handler performs on Break.
func (r *Registry) FindLocation(moduleID uint64, methodToken, ilOffset uint32) (*Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[Resolution{ModuleID: moduleID, MethodToken: methodToken, ILOffset: ilOffset}]
	return loc, ok
}

// resolve runs the five-step algorithm of spec.md §4.6 against the
// backend's current PDB documents.
func (r *Registry) resolve(file string, line uint32) (Resolution, bool, error) {
	docs, err := r.backend.Documents()
	if err != nil {
		return Resolution{}, false, err
	}

	target := normalizePath(file)
	var doc *corapi.PDBDocument
	for i := range docs {
		if strings.HasSuffix(normalizePath(docs[i].Path), target) {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		return Resolution{}, false, nil
	}

	var best *corapi.PDBMethod
	for i := range doc.Methods {
		m := &doc.Methods[i]
		if line < m.FirstLine || line > m.LastLine {
			continue
		}
		if best == nil || m.FirstLine > best.FirstLine {
			best = m
		}
	}
	if best == nil {
		return Resolution{}, false, nil
	}

	for _, sp := range best.SequencePoints {
		if line >= sp.StartLine && line <= sp.EndLine {
			return Resolution{ModuleID: doc.ModuleID, MethodToken: best.Token, ILOffset: sp.ILOffset}, true, nil
		}
	}
	return Resolution{}, false, nil
}

// normalizePath lower-cases and converts backslashes to forward slashes,
// so path comparison is both case-insensitive and separator-insensitive.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(p)
}

