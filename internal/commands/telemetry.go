package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to a Telemetry callback once a command returns.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry replaces the handler's built-in outcome logging.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs every outcome with its duration. Successful runs
// that take longer than slowAfter are logged as command.execute.slow at warn
// level instead; zero disables the check.
func DefaultTelemetry[T command.Message](logger interfaces.Logger, slowAfter time.Duration) Telemetry[T] {
	logger = logging.Or(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields).WithContext(ctx)
		args := []any{"duration_ms", info.Duration.Milliseconds(), "status", string(info.Status)}

		switch {
		case info.Status == TelemetryStatusSuccess && slowAfter > 0 && info.Duration > slowAfter:
			entry.Warn("command.execute.slow", append(args, "slow_after_ms", slowAfter.Milliseconds())...)
		case info.Status == TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case info.Status == TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}
