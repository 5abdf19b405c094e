// Package logging builds the structured logger every other package logs
// through, generalising the teacher's single `*log.Logger` field
// (_teacher_ref/debugger.go's Debugger.logger, written to on every
// breakpoint/step event) to log/slog, fanned out to stderr and an
// in-memory ring buffer so tests can assert on emitted log lines without
// capturing os.Stderr.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// Ring is a fixed-capacity in-memory slog.Handler: it keeps the last
// capacity records, dropping the oldest, so tests can assert "did we log
// this" without growing without bound across a long-running process.
type Ring struct {
	mu       sync.Mutex
	capacity int
	records  []slog.Record
}

// NewRing builds a Ring handler holding at most capacity records.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 256
	}
	return &Ring{capacity: capacity}
}

func (r *Ring) Enabled(context.Context, slog.Level) bool { return true }

func (r *Ring) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > r.capacity {
		r.records = r.records[len(r.records)-r.capacity:]
	}
	return nil
}

func (r *Ring) WithAttrs(attrs []slog.Attr) slog.Handler { return r }
func (r *Ring) WithGroup(name string) slog.Handler       { return r }

// Records returns a snapshot of the messages currently held, oldest first.
func (r *Ring) Records() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Message
	}
	return out
}

// New builds the process-wide logger: a text handler on stderr fanned out
// to an in-memory Ring via slog-multi, mirroring cucaracha's go.mod
// dependency on the same fan-out package (never exercised by cucaracha's
// own source, first put to use here).
func New(level slog.Level, ring *Ring) *slog.Logger {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if ring == nil {
		return slog.New(stderrHandler)
	}
	fanout := slogmulti.Fanout(stderrHandler, ring)
	return slog.New(fanout)
}
