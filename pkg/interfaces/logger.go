package interfaces

import "context"

// Logger is the leveled diagnostics sink shared by every drupier component.
// Its shape matches github.com/goliatone/go-logger so hosts can plug that
// package (or any adapter) in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers, one per module.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry persistent
// structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
