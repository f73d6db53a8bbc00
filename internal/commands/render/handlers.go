package rendercmd

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/commands"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/render"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const (
	renderOperation = "render.block"
	// Renders past this are logged as slow; README conversion runs uncached.
	slowRenderThreshold = 250 * time.Millisecond
)

var (
	// ErrRendererRequired is returned when the handler has no pipeline to render with.
	ErrRendererRequired = errors.New("render command: renderer is nil")
	// ErrTerminalUnavailable is returned for terminal output without a terminal renderer.
	ErrTerminalUnavailable = errors.New("render command: terminal renderer not configured")
)

var _ command.Commander[RenderBlockCommand] = (*RenderBlockHandler)(nil)

// Renderer renders a block by id or slug.
type Renderer interface {
	Render(ctx context.Context, idOrSlug string) (*render.Output, error)
}

// BlockLookup finds registered blocks.
type BlockLookup interface {
	Get(idOrSlug string) (blocks.Block, blocks.Definition, bool)
}

// TerminalRenderer turns Markdown into terminal text.
type TerminalRenderer interface {
	Render(source []byte) (string, error)
}

// SourceProvider is implemented by blocks backed by a Markdown document.
type SourceProvider interface {
	Source(ctx context.Context) ([]byte, bool)
}

// Dependencies groups the collaborators of RenderBlockHandler.
type Dependencies struct {
	Pipeline Renderer
	Blocks   BlockLookup
	Terminal TerminalRenderer
}

// RenderBlockHandler runs the render pipeline for RenderBlockCommand.
type RenderBlockHandler struct {
	inner *commands.Handler[RenderBlockCommand]
}

// NewRenderBlockHandler constructs a handler over deps.
func NewRenderBlockHandler(deps Dependencies, logger interfaces.Logger, opts ...commands.HandlerOption[RenderBlockCommand]) *RenderBlockHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg RenderBlockCommand) error {
		if deps.Pipeline == nil {
			return ErrRendererRequired
		}
		if locale := strings.TrimSpace(msg.Locale); locale != "" {
			ctx = i18n.WithLocale(ctx, locale)
		}

		out, err := deps.Pipeline.Render(ctx, msg.BlockID)
		if err != nil {
			return err
		}

		body := out.Markup
		if msg.format() == FormatTerminal {
			body, err = terminalBody(ctx, deps, msg.BlockID, out.Markup)
			if err != nil {
				return err
			}
		}

		if _, err := io.WriteString(msg.Output, body); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"block_id":  out.BlockID,
			"locale":    out.Locale,
			"cache_hit": out.Hit,
			"max_age":   out.CacheMaxAge,
		}).Info("render.command.block.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderBlockCommand]{
		commands.WithLogger[RenderBlockCommand](baseLogger),
		commands.WithOperation[RenderBlockCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderBlockCommand) map[string]any {
			fields := map[string]any{
				"block":  msg.BlockID,
				"format": msg.format(),
			}
			if msg.Locale != "" {
				fields["locale"] = msg.Locale
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderBlockCommand](baseLogger, slowRenderThreshold)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderBlockHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderBlockCommand].
func (h *RenderBlockHandler) Execute(ctx context.Context, msg RenderBlockCommand) error {
	return h.inner.Execute(ctx, msg)
}

// terminalBody renders the block's Markdown source for a terminal. Blocks
// without a Markdown source keep their HTML markup.
func terminalBody(ctx context.Context, deps Dependencies, idOrSlug, markup string) (string, error) {
	if deps.Blocks == nil {
		return markup, nil
	}
	block, _, ok := deps.Blocks.Get(idOrSlug)
	if !ok {
		return markup, nil
	}
	provider, ok := block.(SourceProvider)
	if !ok {
		return markup, nil
	}
	source, ok := provider.Source(ctx)
	if !ok {
		return markup, nil
	}
	if deps.Terminal == nil {
		return "", ErrTerminalUnavailable
	}
	return deps.Terminal.Render(source)
}
