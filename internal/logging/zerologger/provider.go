// Package zerologger adapts rs/zerolog to the drupier logging contract.
package zerologger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// Config selects the zerolog level and output.
type Config struct {
	Level  string
	Pretty bool
	Writer io.Writer
}

// Provider hands out zerolog-backed loggers.
type Provider struct {
	root zerolog.Logger
}

// NewProvider builds a root zerolog logger. Writer defaults to stderr.
func NewProvider(cfg Config) (*Provider, error) {
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("logging: invalid zerolog level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Writer
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return &Provider{root: zerolog.New(out).Level(level).With().Timestamp().Logger()}, nil
}

// GetLogger returns a child logger carrying a "logger" field.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	return &adapter{zl: p.root.With().Str("logger", name).Logger()}
}

type adapter struct {
	zl  zerolog.Logger
	ctx context.Context
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (a *adapter) Trace(msg string, args ...any) { a.emit(a.zl.Trace(), msg, args) }
func (a *adapter) Debug(msg string, args ...any) { a.emit(a.zl.Debug(), msg, args) }
func (a *adapter) Info(msg string, args ...any)  { a.emit(a.zl.Info(), msg, args) }
func (a *adapter) Warn(msg string, args ...any)  { a.emit(a.zl.Warn(), msg, args) }
func (a *adapter) Error(msg string, args ...any) { a.emit(a.zl.Error(), msg, args) }

// Fatal logs at fatal severity without exiting the process.
func (a *adapter) Fatal(msg string, args ...any) { a.emit(a.zl.WithLevel(zerolog.FatalLevel), msg, args) }

func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return a
	}
	return &adapter{zl: a.zl.With().Fields(fields).Logger(), ctx: a.ctx}
}

func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return &adapter{zl: a.zl, ctx: ctx}
}

func (a *adapter) emit(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	if fields := logging.ContextFields(a.ctx); len(fields) > 0 {
		event = event.Fields(fields)
	}
	// zerolog treats a []any as alternating key/value pairs
	if len(args) > 0 {
		event = event.Fields(args)
	}
	event.Msg(msg)
}
