package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// stage categorises a failure at one step of Handler.Execute.
type stage func(err error) error

var (
	validationStage stage = func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
			WithTextCode(commandValidationCode)
	}
	executeStage stage = func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(commandExecuteFailed)
	}
	contextStage stage = func(err error) error {
		message, code := "command context error", commandContextErrorCode
		switch {
		case errors.Is(err, context.Canceled):
			message, code = "command execution cancelled", commandContextCanceled
		case errors.Is(err, context.DeadlineExceeded):
			message, code = "command execution deadline exceeded", commandContextTimeout
		}
		return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
	}
)

// tag wraps err unless a lower layer already categorised it, so codes such
// as BLOCK_NOT_FOUND survive the command boundary.
func (s stage) tag(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return s(err)
}

// TextCode returns the go-errors text code carried by err, or "".
func TextCode(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.TextCode
	}
	return ""
}
