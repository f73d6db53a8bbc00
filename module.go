package drupier

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/tothom/drupier-demo/internal/blocks"
	rendercmd "github.com/tothom/drupier-demo/internal/commands/render"
	themescmd "github.com/tothom/drupier-demo/internal/commands/themes"
	"github.com/tothom/drupier-demo/internal/di"
	drupierhttp "github.com/tothom/drupier-demo/internal/http"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/render"
	"github.com/tothom/drupier-demo/internal/themes"
)

// BlockDefinition exports the block metadata shown in listings.
type BlockDefinition = blocks.Definition

// RenderOutput exports one rendered block.
type RenderOutput = render.Output

// Theme exports the registered theme record.
type Theme = themes.Theme

// ThemeService exports the themes service contract.
type ThemeService = themes.Service

// Output formats accepted by WriteBlock.
const (
	FormatHTML     = rendercmd.FormatHTML
	FormatTerminal = rendercmd.FormatTerminal
)

var ErrModuleClosed = errors.New("drupier: module is closed")

// Module represents the top level drupier runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Blocks lists the registered block definitions ordered by id.
func (m *Module) Blocks() []BlockDefinition {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry().List()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ThemeService()
}

func (m *Module) Translator() *i18n.Translator {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Translator()
}

// RenderBlock renders idOrSlug for locale through the cached pipeline. A
// blank locale uses the configured default.
func (m *Module) RenderBlock(ctx context.Context, idOrSlug, locale string) (*RenderOutput, error) {
	if m == nil || m.container == nil {
		return nil, ErrModuleClosed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		ctx = i18n.WithLocale(ctx, trimmed)
	}
	return m.container.Pipeline().Render(ctx, idOrSlug)
}

// WriteBlock runs the render command, writing the block to w as HTML or,
// for Markdown-backed blocks, as terminal text.
func (m *Module) WriteBlock(ctx context.Context, w io.Writer, idOrSlug, locale, format string) error {
	if m == nil || m.container == nil {
		return ErrModuleClosed
	}
	return m.container.RenderCommands().Render.Execute(ctx, rendercmd.RenderBlockCommand{
		BlockID: idOrSlug,
		Locale:  locale,
		Format:  format,
		Output:  w,
	})
}

// RegisterTheme registers the theme described by dir/theme.json.
func (m *Module) RegisterTheme(ctx context.Context, dir string) (*Theme, error) {
	if m == nil || m.container == nil {
		return nil, ErrModuleClosed
	}
	var registered *Theme
	err := m.container.ThemeCommands().Register.Execute(ctx, themescmd.RegisterThemeCommand{
		Directory:      dir,
		ResultCallback: func(theme *themes.Theme) { registered = theme },
	})
	return registered, err
}

// DiscoverThemes registers every theme under baseDir, or under the
// configured base path when baseDir is blank. Themes registered before a
// failure are returned alongside the error.
func (m *Module) DiscoverThemes(ctx context.Context, baseDir string) ([]*Theme, error) {
	if m == nil || m.container == nil {
		return nil, ErrModuleClosed
	}
	if strings.TrimSpace(baseDir) == "" {
		baseDir = m.container.Config.Theme.BasePath
	}
	var found []*Theme
	err := m.container.ThemeCommands().Discover.Execute(ctx, themescmd.DiscoverThemesCommand{
		BaseDir:        baseDir,
		ResultCallback: func(list []*themes.Theme) { found = list },
	})
	return found, err
}

// InvalidateTags evicts cached renders carrying any of tags.
func (m *Module) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	if m == nil || m.container == nil {
		return 0, ErrModuleClosed
	}
	return m.container.Pipeline().InvalidateTags(ctx, tags...)
}

// Subscribe attaches the command handlers to the go-command dispatcher so
// messages sent with dispatcher.Dispatch reach this module. The returned
// func detaches them.
func (m *Module) Subscribe() func() {
	if m == nil || m.container == nil {
		return func() {}
	}
	renderSub := dispatcher.SubscribeCommand[rendercmd.RenderBlockCommand](m.container.RenderCommands().Render)
	registerSub := dispatcher.SubscribeCommand[themescmd.RegisterThemeCommand](m.container.ThemeCommands().Register)
	discoverSub := dispatcher.SubscribeCommand[themescmd.DiscoverThemesCommand](m.container.ThemeCommands().Discover)
	return func() {
		renderSub.Unsubscribe()
		registerSub.Unsubscribe()
		discoverSub.Unsubscribe()
	}
}

// HTTPApp builds the fiber application serving blocks and themes.
func (m *Module) HTTPApp() *fiber.App {
	deps := drupierhttp.Deps{}
	if m != nil && m.container != nil {
		c := m.container
		deps = drupierhttp.Deps{
			Pipeline:        c.Pipeline(),
			Translator:      c.Translator(),
			Themes:          c.ThemeService(),
			Logger:          logging.HTTPLogger(c.LoggerProvider()),
			Locales:         c.Translator().Locales(),
			DefaultLocale:   c.Translator().DefaultLocale(),
			PermanentMaxAge: c.Config.HTTP.PermanentMaxAge,
		}
	}
	return drupierhttp.New(deps)
}

// Serve runs the HTTP app on the configured address until ctx is done.
func (m *Module) Serve(ctx context.Context) error {
	if m == nil || m.container == nil {
		return ErrModuleClosed
	}
	if err := m.container.Config.ValidateServe(); err != nil {
		return err
	}
	return drupierhttp.Serve(ctx, m.HTTPApp(), m.container.Config.HTTP.Addr)
}

// Close releases databases, caches and log files opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	err := m.container.Close()
	m.container = nil
	return err
}
