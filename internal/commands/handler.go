package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const defaultHandlerTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with shared concerns (context, logging, error tagging).
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	telemetry Telemetry[T]
	now       func() time.Time
}

// NewHandler creates a handler that satisfies go-command's Commander interface while applying
// validation, logging and timeout enforcement.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: defaultHandlerTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute and applies validation, context management,
// logging, and error categorisation before delegating to the wrapped function.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return validationStage.tag(err)
	}

	ctx = ensureContext(ctx)
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return contextStage.tag(err)
	}

	fields := map[string]any{
		"command": command.GetMessageType(msg),
	}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		for key, value := range h.fields(msg) {
			fields[key] = value
		}
	}
	logger := logging.WithFields(h.logger, fields).WithContext(ctx)
	logger.Debug("command.execute.start")

	started := h.now()
	err := h.exec(ctx, msg)
	status := TelemetryStatusSuccess
	switch {
	case err != nil:
		status = TelemetryStatusFailed
		err = executeStage.tag(err)
	case ctx.Err() != nil:
		status = TelemetryStatusContextError
		err = contextStage.tag(ctx.Err())
	}

	if h.telemetry != nil {
		h.telemetry(ctx, msg, TelemetryInfo{
			Command:   command.GetMessageType(msg),
			Operation: h.operation,
			Fields:    fields,
			Duration:  h.now().Sub(started),
			Error:     err,
			Status:    status,
			Logger:    logger,
		})
	} else {
		switch status {
		case TelemetryStatusSuccess:
			logger.Info("command.execute.success")
		case TelemetryStatusContextError:
			logger.Error("command.execute.context_error", "error", err)
		default:
			logger.Error("command.execute.failed", "error", err)
		}
	}
	return err
}

// WithTimeout overrides the default execution timeout.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution. Defaults to a no-op logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Or(logger)
	}
}

// WithOperation sets a human-friendly operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds per-message structured fields to every log entry.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithTelemetry replaces the built-in outcome logging with fn.
func WithTelemetry[T command.Message](fn Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = fn
	}
}

func (h *Handler[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
