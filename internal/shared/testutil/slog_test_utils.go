package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log line.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordStore is shared by every LogRecorder derived through WithAttrs
// so that records land in one place no matter which child logged them.
type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
	t       testing.TB
}

// LogRecorder is an slog.Handler that keeps every record in memory so
// tests can assert on what was logged.
type LogRecorder struct {
	store *recordStore
	base  []slog.Attr
}

// NewLogRecorder creates a recorder. Records are echoed to t.Logf when
// t is non-nil.
func NewLogRecorder(t testing.TB) *LogRecorder {
	return &LogRecorder{store: &recordStore{t: t}}
}

// NewTestLogger returns a logger wired to a fresh recorder.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	rec := NewLogRecorder(t)
	return slog.New(rec), rec
}

// Enabled implements slog.Handler. Every level is captured.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, rec.NumAttrs()+len(r.base))
	for _, a := range r.base {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.store.mu.Lock()
	r.store.records = append(r.store.records, LogRecord{
		Time:    rec.Time,
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	t := r.store.t
	r.store.mu.Unlock()

	if t != nil {
		t.Logf("[%s] %s %v", rec.Level, rec.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. The child shares the parent's
// record store, so assertions see records from logger.With chains.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	base := make([]slog.Attr, 0, len(r.base)+len(attrs))
	base = append(base, r.base...)
	base = append(base, attrs...)
	return &LogRecorder{store: r.store, base: base}
}

// WithGroup implements slog.Handler. Groups are flattened; the tests
// here assert on keys, not nesting.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of everything captured so far.
func (r *LogRecorder) Records() []LogRecord {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]LogRecord, len(r.store.records))
	copy(out, r.store.records)
	return out
}

// RecordsAtLevel returns the captured records at exactly level.
func (r *LogRecorder) RecordsAtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, rec := range r.Records() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains msg.
func (r *LogRecorder) ContainsMessage(msg string) bool {
	for _, rec := range r.Records() {
		if strings.Contains(rec.Message, msg) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value.
func (r *LogRecorder) ContainsAttr(key string, value any) bool {
	for _, rec := range r.Records() {
		if v, ok := rec.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Count returns the number of captured records.
func (r *LogRecorder) Count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.records)
}

// Clear discards everything captured so far.
func (r *LogRecorder) Clear() {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = r.store.records[:0]
}

// AssertNoErrors fails the test when any error-level record was logged.
func AssertNoErrors(t testing.TB, rec *LogRecorder) {
	t.Helper()
	for _, r := range rec.RecordsAtLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
