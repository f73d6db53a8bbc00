package markdown

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	conversionFailedCode     = "CONVERSION_FAILED"
	converterUnavailableCode = "CONVERTER_UNAVAILABLE"
	conversionPanicCode      = "CONVERSION_PANIC"
)

// ErrConverterUnavailable is returned when no converter is configured.
var ErrConverterUnavailable = goerrors.New("markdown: converter unavailable", goerrors.CategoryInternal).
	WithTextCode(converterUnavailableCode)

// ConversionError wraps a converter failure with the engine that raised it.
func ConversionError(engine string, err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("markdown: %s conversion failed", engine)).
		WithTextCode(conversionFailedCode).
		WithMetadata(map[string]any{"engine": engine})
}

// IsConversionError reports whether err came out of a converter.
func IsConversionError(err error) bool {
	var e *goerrors.Error
	if !goerrors.As(err, &e) {
		return false
	}
	switch e.TextCode {
	case conversionFailedCode, converterUnavailableCode, conversionPanicCode:
		return true
	}
	return false
}
