// Package testutil provides logging helpers for tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Record is a captured log entry with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is a slog.Handler that keeps every record at debug level and
// above. It is safe for concurrent use.
type Recorder struct {
	mu      *sync.Mutex
	records *[]Record
	attrs   []slog.Attr
}

// NewRecordingLogger returns a logger and the Recorder capturing its output.
func NewRecordingLogger() (*slog.Logger, *Recorder) {
	rec := &Recorder{mu: &sync.Mutex{}, records: &[]Record{}}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, rec.NumAttrs()+len(r.attrs))
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, Record{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Recorder{
		mu:      r.mu,
		records: r.records,
		attrs:   append(append([]slog.Attr{}, r.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are not tracked.
func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of everything logged so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), *r.records...)
}

// Find returns the first record with the given message.
func (r *Recorder) Find(msg string) (Record, bool) {
	for _, rec := range r.Records() {
		if rec.Message == msg {
			return rec, true
		}
	}
	return Record{}, false
}
