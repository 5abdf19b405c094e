// Package coordinator implements the evaluation coordinator of spec.md
// §4.3: the thread rendezvous that lets inspection code invoke managed
// getters/methods while the event thread holds a breakpoint suspension.
//
// Grounded on original_source/evalcoordinator.h/.cc's mutex + two
// condition-variable design (debugger_callback_cv_ / variable_threads_cv_,
// renamed here to the spec's own ready_to_inspect / debugger_can_continue
// vocabulary), translated from the original's polling WaitForEval loop to
// Go's sync.Cond idiom with a context.Context-bound timeout.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/coredbg/clrdbg/internal/corapi"
	"github.com/coredbg/clrdbg/internal/dbgerr"
)

// Coordinator arbitrates between the debugger-event thread and the
// inspection thread it spawns at each Break. A single Coordinator handles
// one inspection at a time; spec.md §4.3's note that "multiple inspection
// threads ... must each coordinate independently" is out of scope here —
// see DESIGN.md's Open Question decision on this simplification.
type Coordinator struct {
	evalTimeout time.Duration

	mu                  sync.Mutex
	readyToInspect      *sync.Cond
	debuggerCanContinue *sync.Cond

	readyFlag, continueFlag bool
	activeThread            corapi.Thread
	pendingEval             corapi.Eval
	latchedException        error
}

// New builds a Coordinator whose evals are bounded by evalTimeout
// (spec.md §4.3, recommended 60s).
func New(evalTimeout time.Duration) *Coordinator {
	c := &Coordinator{evalTimeout: evalTimeout}
	c.readyToInspect = sync.NewCond(&c.mu)
	c.debuggerCanContinue = sync.NewCond(&c.mu)
	return c
}

// Inspect is called from the event-thread context at Break (spec.md §4.3
// step 1). It spawns an inspection goroutine running fn and blocks the
// caller until the first rendezvous point: either fn needs to hand
// control back to the runtime for a pending eval (step 2c), or fn has
// finished materialising and serialising the whole snapshot (step 4).
// Either way, once Inspect returns the caller may return from the debug
// callback. If an eval was started, the real runtime event handler must
// forward the resulting EvalComplete/EvalException callback to
// SignalEvalComplete/SignalEvalException.
func (c *Coordinator) Inspect(thread corapi.Thread, fn func(*Coordinator)) {
	c.mu.Lock()
	c.activeThread = thread
	c.mu.Unlock()

	go func() {
		c.mu.Lock()
		for !c.readyFlag {
			c.readyToInspect.Wait()
		}
		c.readyFlag = false
		c.mu.Unlock()

		fn(c)

		c.mu.Lock()
		c.continueFlag = true
		c.debuggerCanContinue.Signal()
		c.mu.Unlock()
	}()

	c.mu.Lock()
	c.readyFlag = true
	c.readyToInspect.Signal()
	for !c.continueFlag {
		c.debuggerCanContinue.Wait()
	}
	c.continueFlag = false
	c.mu.Unlock()
}

// SignalEvalComplete forwards a runtime EvalComplete event to the
// pending inspection, then blocks (on the event thread) until the
// inspection starts another eval or finishes the snapshot — spec.md
// §4.3 step 3's "blocks on debugger_can_continue again".
func (c *Coordinator) SignalEvalComplete() {
	c.mu.Lock()
	c.latchedException = nil
	c.readyFlag = true
	c.readyToInspect.Signal()
	for !c.continueFlag {
		c.debuggerCanContinue.Wait()
	}
	c.continueFlag = false
	c.mu.Unlock()
}

// SignalEvalException latches an EvalException event (spec.md §4.3
// "Exceptions during eval"), surfaced to the waiting inspection as a
// failed evaluation with a "threw exception" annotation.
func (c *Coordinator) SignalEvalException(cause error) {
	c.mu.Lock()
	c.latchedException = cause
	c.readyFlag = true
	c.readyToInspect.Signal()
	for !c.continueFlag {
		c.debuggerCanContinue.Wait()
	}
	c.continueFlag = false
	c.mu.Unlock()
}

// InvokeEval runs one parameterised method/getter call through the
// rendezvous protocol (steps 2a-2c and the result-reading half of step
// 4), bounded by ctx and the configured eval timeout. Only the
// inspection goroutine started by Inspect may call this.
func (c *Coordinator) InvokeEval(ctx context.Context, fn corapi.Function, genericArgs []corapi.TypeSignature, args []corapi.Value) (corapi.Value, error) {
	eval, err := c.activeEval()
	if err != nil {
		return nil, err
	}
	if err := eval.Call(fn, genericArgs, args); err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to start eval", err)
	}
	return c.runRendezvous(ctx, eval)
}

// InvokeNewString constructs a managed string through the same rendezvous
// protocol as InvokeEval, for a string literal or computed string argument
// that a method call needs to pass as a real corapi.Value rather than a
// bare Go string (spec.md §4.3's eval round trip applies equally to
// ICorDebugEval::NewString, not just method/getter Call).
func (c *Coordinator) InvokeNewString(ctx context.Context, content string) (corapi.Value, error) {
	eval, err := c.activeEval()
	if err != nil {
		return nil, err
	}
	if err := eval.NewString(content); err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to start string eval", err)
	}
	return c.runRendezvous(ctx, eval)
}

// activeEval allocates a fresh eval handle on the currently suspended
// thread.
func (c *Coordinator) activeEval() (corapi.Eval, error) {
	c.mu.Lock()
	thread := c.activeThread
	c.mu.Unlock()
	if thread == nil {
		return nil, dbgerr.New(dbgerr.Internal, "no active debug thread for eval")
	}
	eval, err := thread.CreateEval()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to create eval handle", err)
	}
	return eval, nil
}

// runRendezvous parks on the debugger-can-continue/ready-to-inspect
// handshake until eval completes, times out, or throws, then reads its
// result. eval must already have a pending Call or NewString in flight.
func (c *Coordinator) runRendezvous(ctx context.Context, eval corapi.Eval) (corapi.Value, error) {
	deadline := time.Now().Add(c.evalTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	c.mu.Lock()
	c.pendingEval = eval
	c.continueFlag = true
	c.debuggerCanContinue.Signal()
	ready := c.waitReadyBefore(deadline)
	if !ready {
		c.pendingEval = nil
		c.mu.Unlock()
		_ = eval.Abort()
		return nil, dbgerr.New(dbgerr.EvalTimeout, "evaluation exceeded the configured timeout")
	}
	c.readyFlag = false
	latched := c.latchedException
	c.latchedException = nil
	c.pendingEval = nil
	c.mu.Unlock()

	if latched != nil {
		return nil, dbgerr.Wrap(dbgerr.EvalException, "evaluation threw an exception", latched)
	}

	result, err := eval.Result()
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to read eval result", err)
	}
	return result, nil
}

// waitReadyBefore waits for readyFlag, waking at the deadline via a
// timer-driven broadcast so the eval timeout is enforced without the
// original's wall-clock polling. mu must be held on entry and exit.
func (c *Coordinator) waitReadyBefore(deadline time.Time) bool {
	timer := time.AfterFunc(time.Until(deadline), func() {
		c.mu.Lock()
		c.readyToInspect.Broadcast()
		c.mu.Unlock()
	})
	defer timer.Stop()

	for !c.readyFlag {
		if !time.Now().Before(deadline) {
			return false
		}
		c.readyToInspect.Wait()
	}
	return true
}

// InvokeGetter implements dbgvalue.GetterInvoker: it resolves getterToken
// against frame and runs the getter through the eval rendezvous, so
// ClassProperty.PopulateValue never needs to know about condvars.
func (c *Coordinator) InvokeGetter(receiver corapi.Value, getterToken uint32, frame corapi.Frame, generics []corapi.TypeSignature) (corapi.Value, error) {
	fn, err := frame.FindFunction(getterToken)
	if err != nil {
		return nil, dbgerr.Wrap(dbgerr.Runtime, "failed to resolve property getter", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.evalTimeout)
	defer cancel()
	return c.InvokeEval(ctx, fn, generics, []corapi.Value{receiver})
}
