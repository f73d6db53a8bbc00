package logging

import (
	"context"
	"strings"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const (
	rootModule     = "drupier"
	blocksModule   = "drupier.blocks"
	markdownModule = "drupier.markdown"
	themesModule   = "drupier.themes"
	renderModule   = "drupier.render"
	httpModule     = "drupier.http"
)

const (
	fieldBlockID    = "block_id"
	fieldTheme      = "theme"
	fieldReadmePath = "readme_path"
)

// ModuleLogger returns a logger for the named module. A nil provider (or one
// that hands back nil) yields the no-op logger. Every entry is tagged with a
// "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// BlocksLogger returns the logger used by block plugins and renderers.
func BlocksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blocksModule)
}

// MarkdownLogger returns the logger used by the markdown converters.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// ThemesLogger returns the logger used by theme registration and lookup.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// RenderLogger returns the logger used by the render pipeline.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// HTTPLogger returns the logger used by the HTTP adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithBlockContext tags a logger with block, theme and README path fields.
// Blank values are skipped.
func WithBlockContext(logger interfaces.Logger, blockID, theme, readmePath string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(blockID); trimmed != "" {
		fields[fieldBlockID] = trimmed
	}
	if trimmed := strings.TrimSpace(theme); trimmed != "" {
		fields[fieldTheme] = trimmed
	}
	if trimmed := strings.TrimSpace(readmePath); trimmed != "" {
		fields[fieldReadmePath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
