package logging

import (
	"maps"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// WithFields attaches structured fields when the logger implements
// interfaces.FieldsLogger and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// Or returns logger, or the no-op logger when logger is nil.
func Or(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}
