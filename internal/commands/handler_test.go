package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/tothom/drupier-demo/pkg/testsupport"
)

type testMessage struct{}

func (testMessage) Type() string { return "drupier.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "drupier.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerLogsMessageFields(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("test.op"),
		WithMessageFields[testMessage](func(testMessage) map[string]any {
			return map[string]any{"block_id": "drupier_demo_readme_block"}
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	entry, ok := logger.Find("command.execute.success")
	if !ok {
		t.Fatal("expected success entry")
	}
	if entry.Fields["command"] != "drupier.test.message" || entry.Fields["operation"] != "test.op" {
		t.Fatalf("unexpected fields %v", entry.Fields)
	}
	if entry.Fields["block_id"] != "drupier_demo_readme_block" {
		t.Fatalf("expected message fields, got %v", entry.Fields)
	}
}

func TestHandlerTelemetry(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	}, WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
		got = info
	}))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected error")
	}
	if got.Status != TelemetryStatusFailed || got.Error == nil {
		t.Fatalf("expected failed telemetry, got %+v", got)
	}
	if TextCode(err) != commandExecuteFailed {
		t.Fatalf("expected %s text code, got %q", commandExecuteFailed, TextCode(err))
	}
}

func TestDefaultTelemetryLogsDuration(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	}, WithTelemetry[testMessage](DefaultTelemetry[testMessage](logger, 0)))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	entry, ok := logger.Find("command.execute.success")
	if !ok {
		t.Fatal("expected success entry")
	}
	if _, ok := entry.Fields["duration_ms"]; !ok {
		t.Fatalf("expected duration_ms field, got %v", entry.Fields)
	}
}

func TestDefaultTelemetryFlagsSlowRuns(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	tick := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	}, WithTelemetry[testMessage](DefaultTelemetry[testMessage](logger, 100*time.Millisecond)))
	h.now = func() time.Time {
		current := tick
		tick = tick.Add(300 * time.Millisecond)
		return current
	}

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	entry, ok := logger.Find("command.execute.slow")
	if !ok {
		t.Fatalf("expected slow entry, got %+v", logger.Entries())
	}
	if entry.Level != "warn" || entry.Fields["duration_ms"] != int64(300) {
		t.Fatalf("unexpected slow entry %+v", entry)
	}
}

func TestHandlerKeepsWrappedErrors(t *testing.T) {
	notFound := goerrors.New("block missing", goerrors.CategoryNotFound).WithTextCode("BLOCK_NOT_FOUND")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return notFound
	})
	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) || TextCode(err) != "BLOCK_NOT_FOUND" {
		t.Fatalf("expected not_found error to pass through, got %v", err)
	}
}
