package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/tothom/drupier-demo/internal/blocks"
	rendercmd "github.com/tothom/drupier-demo/internal/commands/render"
	themescmd "github.com/tothom/drupier-demo/internal/commands/themes"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/logging/console"
	"github.com/tothom/drupier-demo/internal/logging/gologger"
	"github.com/tothom/drupier-demo/internal/logging/zerologger"
	"github.com/tothom/drupier-demo/internal/markdown"
	"github.com/tothom/drupier-demo/internal/render"
	"github.com/tothom/drupier-demo/internal/runtimeconfig"
	"github.com/tothom/drupier-demo/internal/themes"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// CommandRegistry receives command handlers as they are built. It matches
// the registry interfaces of the command subpackages.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logCloser      io.Closer

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	renderStore     fiber.Storage
	ownsRenderStore bool

	themeRepo themes.ThemeRepository
	themeSvc  themes.Service

	translator *i18n.Translator

	primary   interfaces.MarkdownConverter
	alternate interfaces.MarkdownConverter
	terminal  *markdown.TerminalRenderer

	registry *blocks.Registry
	pipeline *render.Pipeline

	commandRegistry CommandRegistry
	renderCommands  *rendercmd.HandlerSet
	themeCommands   *themescmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container creates the theme
// schema but never closes a database it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRenderStorage overrides the render cache backend.
func WithRenderStorage(store fiber.Storage) Option {
	return func(c *Container) {
		c.renderStore = store
	}
}

func WithThemeRepository(repo themes.ThemeRepository) Option {
	return func(c *Container) {
		c.themeRepo = repo
	}
}

func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themeSvc = svc
	}
}

// WithTranslator overrides the translator built from Config.I18N.
func WithTranslator(translator *i18n.Translator) Option {
	return func(c *Container) {
		c.translator = translator
	}
}

func WithPrimaryConverter(converter interfaces.MarkdownConverter) Option {
	return func(c *Container) {
		c.primary = converter
	}
}

func WithAlternateConverter(converter interfaces.MarkdownConverter) Option {
	return func(c *Container) {
		c.alternate = converter
	}
}

// WithCommandRegistry forwards every command handler to registry.
func WithCommandRegistry(registry CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = registry
	}
}

// NewContainer validates cfg and wires the block registry, render pipeline,
// theme service and command handlers.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.DefaultTTL,
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureTranslator,
		c.configureCacheDefaults,
		c.configureDatabase,
		c.configureRepositories,
		c.configureThemes,
		c.configureMarkdown,
		c.configureRegistry,
		c.configurePipeline,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	if cfg.Theme.Discover {
		c.discoverThemes()
	}

	logging.ModuleLogger(c.loggerProvider, "drupier.di").Debug("container.configured",
		"storage", storageDriver(cfg),
		"render_cache", c.renderStore != nil,
		"locales", c.translator.Locales(),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	var out io.Writer
	if file := strings.TrimSpace(logCfg.File); file != "" {
		writer := console.FileWriter(file)
		c.logCloser = writer
		out = writer
	}

	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	case "zerolog":
		provider, err := zerologger.NewProvider(zerologger.Config{
			Level:  logCfg.Level,
			Pretty: strings.EqualFold(strings.TrimSpace(logCfg.Format), "pretty"),
			Writer: out,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{Writer: out}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureTranslator() error {
	if c.translator != nil {
		return nil
	}

	fixture, err := i18n.DefaultFixture()
	if err != nil {
		return err
	}

	cfg := i18n.FromModuleConfig(c.Config.I18N.DefaultLocale, c.Config.I18N.Locales)
	translator, err := i18n.NewTranslator(cfg, fixture.Translations)
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(c.Config.I18N.File); path != "" {
		extra, err := i18n.NewLoader(path).Load(context.Background())
		if err != nil {
			return err
		}
		for locale, messages := range extra.Translations {
			translator.Merge(locale, messages)
		}
	}

	c.translator = translator
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureDatabase() error {
	if c.bunDB == nil {
		var driver string
		switch storageDriver(c.Config) {
		case "sqlite":
			driver = "sqlite3"
		case "postgres":
			driver = "pgx"
		default:
			return nil
		}

		sqldb, err := sql.Open(driver, c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("di: open %s database: %w", driver, err)
		}
		if driver == "pgx" {
			c.bunDB = bun.NewDB(sqldb, pgdialect.New())
		} else {
			c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
		}
		c.ownsDB = true
	}

	if err := themes.EnsureSchema(context.Background(), c.bunDB); err != nil {
		return fmt.Errorf("di: ensure theme schema: %w", err)
	}
	return nil
}

func (c *Container) configureRepositories() error {
	if c.themeRepo != nil {
		return nil
	}
	if c.bunDB != nil {
		c.themeRepo = themes.NewBunThemeRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return nil
	}
	c.themeRepo = themes.NewMemoryThemeRepository()
	return nil
}

func (c *Container) configureThemes() error {
	if c.themeSvc != nil {
		return nil
	}
	c.themeSvc = themes.NewService(
		c.themeRepo,
		themes.WithBasePath(c.Config.Theme.BasePath),
		themes.WithLogger(logging.ThemesLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureMarkdown() error {
	mdCfg := c.Config.Markdown
	if c.primary == nil {
		c.primary = markdown.NewGoldmarkConverter(interfaces.ConvertOptions{
			Extensions: mdCfg.Extensions,
			HardWraps:  mdCfg.HardWraps,
			SafeMode:   mdCfg.SafeMode,
		})
	}
	if c.alternate == nil && strings.EqualFold(strings.TrimSpace(mdCfg.Alternate), "blackfriday") {
		c.alternate = markdown.NewBlackfridayConverter(interfaces.ConvertOptions{
			Extensions: mdCfg.Extensions,
			HardWraps:  mdCfg.HardWraps,
			SafeMode:   mdCfg.SafeMode,
		})
	}
	c.terminal = markdown.NewTerminalRenderer(mdCfg.TerminalStyle, mdCfg.TerminalWidth)
	return nil
}

func (c *Container) configureRegistry() error {
	blocksLogger := logging.BlocksLogger(c.loggerProvider)

	readmeOpts := []blocks.ReadmeOption{
		blocks.WithTranslator(c.translator),
		blocks.WithReadmeLogger(logging.MarkdownLogger(c.loggerProvider)),
		blocks.WithFrontMatterStripping(c.Config.Markdown.StripFrontMatter),
	}
	if c.alternate != nil {
		readmeOpts = append(readmeOpts, blocks.WithAlternateConverter(c.alternate))
	}

	registry := blocks.NewRegistry()
	if err := registry.Register(blocks.NewMarqueeBlock()); err != nil {
		return err
	}
	readme := blocks.NewReadmeBlock(
		blocks.NewReadmeRenderer(c.primary, readmeOpts...),
		c.themeSvc,
		blocks.ReadmeBlockOptions{
			Theme:      c.Config.Theme.DefaultTheme,
			ReadmeFile: c.Config.Theme.ReadmeFile,
			Logger:     blocksLogger,
		},
	)
	if err := registry.Register(readme); err != nil {
		return err
	}

	c.registry = registry
	return nil
}

func (c *Container) configurePipeline() error {
	if c.renderStore == nil && c.Config.Cache.Enabled {
		store, err := render.NewStorage(render.StorageConfig{
			Driver:    c.Config.Cache.Driver,
			RedisAddr: c.Config.Cache.RedisAddr,
			RedisDB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			return err
		}
		c.renderStore = store
		c.ownsRenderStore = store != nil
	}

	opts := []render.Option{
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
		render.WithDefaultLocale(c.translator.DefaultLocale()),
	}
	if c.renderStore != nil {
		opts = append(opts, render.WithStorage(c.renderStore))
	}
	c.pipeline = render.NewPipeline(c.registry, opts...)
	return nil
}

func (c *Container) configureCommands() error {
	renderSet, err := rendercmd.RegisterRenderCommands(c.commandRegistry, rendercmd.Dependencies{
		Pipeline: c.pipeline,
		Blocks:   c.registry,
		Terminal: c.terminal,
	}, c.loggerProvider)
	if err != nil {
		return err
	}
	themeSet, err := themescmd.RegisterThemeCommands(c.commandRegistry, c.themeSvc, c.pipeline, c.loggerProvider)
	if err != nil {
		return err
	}
	c.renderCommands = renderSet
	c.themeCommands = themeSet
	return nil
}

// discoverThemes registers the themes found under the base path. Failures
// are logged so a broken manifest does not block startup.
func (c *Container) discoverThemes() {
	base := strings.TrimSpace(c.Config.Theme.BasePath)
	if base == "" {
		return
	}
	err := c.themeCommands.Discover.Execute(context.Background(), themescmd.DiscoverThemesCommand{BaseDir: base})
	if err != nil {
		logging.ThemesLogger(c.loggerProvider).Warn("themes.discover.startup_failed", "base_path", base, "error", err)
	}
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB exposes the theme database, nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// RenderStorage exposes the render cache backend, nil when caching is off.
func (c *Container) RenderStorage() fiber.Storage {
	return c.renderStore
}

func (c *Container) ThemeService() themes.Service {
	return c.themeSvc
}

// Translator returns the configured translator.
func (c *Container) Translator() *i18n.Translator {
	return c.translator
}

// TerminalRenderer returns the glamour renderer used for terminal output.
func (c *Container) TerminalRenderer() *markdown.TerminalRenderer {
	return c.terminal
}

// Registry returns the block registry.
func (c *Container) Registry() *blocks.Registry {
	return c.registry
}

// Pipeline returns the render pipeline.
func (c *Container) Pipeline() *render.Pipeline {
	return c.pipeline
}

// RenderCommands returns the render command handlers.
func (c *Container) RenderCommands() *rendercmd.HandlerSet {
	return c.renderCommands
}

// ThemeCommands returns the theme command handlers.
func (c *Container) ThemeCommands() *themescmd.HandlerSet {
	return c.themeCommands
}

// Close releases the resources the container opened itself.
func (c *Container) Close() error {
	var errs []error
	if c.ownsRenderStore && c.renderStore != nil {
		if err := c.renderStore.Close(); err != nil {
			errs = append(errs, err)
		}
		c.renderStore = nil
	}
	if c.ownsDB && c.bunDB != nil {
		if err := c.bunDB.Close(); err != nil {
			errs = append(errs, err)
		}
		c.bunDB = nil
	}
	if c.logCloser != nil {
		if err := c.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
		c.logCloser = nil
	}
	return errors.Join(errs...)
}

func storageDriver(cfg runtimeconfig.Config) string {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		return "memory"
	}
	return driver
}
