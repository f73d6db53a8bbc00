package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// LogEntry is one call captured by RecordingLogger.
type LogEntry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// RecordingLogger captures log calls so tests can assert on them. Loggers
// derived through WithFields or WithContext share the parent's entries.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  map[string]any
}

var _ interfaces.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (r *RecordingLogger) Trace(msg string, args ...any) { r.record("trace", msg, args) }
func (r *RecordingLogger) Debug(msg string, args ...any) { r.record("debug", msg, args) }
func (r *RecordingLogger) Info(msg string, args ...any)  { r.record("info", msg, args) }
func (r *RecordingLogger) Warn(msg string, args ...any)  { r.record("warn", msg, args) }
func (r *RecordingLogger) Error(msg string, args ...any) { r.record("error", msg, args) }
func (r *RecordingLogger) Fatal(msg string, args ...any) { r.record("fatal", msg, args) }

func (r *RecordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func (r *RecordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &RecordingLogger{mu: r.mu, entries: r.entries, fields: merged}
}

// Entries returns a copy of everything logged so far.
func (r *RecordingLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), (*r.entries)...)
}

// Find returns the first entry with msg.
func (r *RecordingLogger) Find(msg string) (LogEntry, bool) {
	for _, entry := range r.Entries() {
		if entry.Msg == msg {
			return entry, true
		}
	}
	return LogEntry{}, false
}

func (r *RecordingLogger) record(level, msg string, args []any) {
	fields := make(map[string]any, len(r.fields)+len(args)/2)
	for k, v := range r.fields {
		fields[k] = v
	}
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 < len(args) {
			fields[key] = args[i+1]
		} else {
			fields[key] = nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, LogEntry{Level: level, Msg: msg, Fields: fields})
}

// RecordingProvider hands the same RecordingLogger to every module.
type RecordingProvider struct {
	Logger *RecordingLogger
}

func (p RecordingProvider) GetLogger(string) interfaces.Logger {
	return p.Logger
}
