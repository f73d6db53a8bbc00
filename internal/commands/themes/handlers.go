package themescmd

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/tothom/drupier-demo/internal/commands"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/themes"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const (
	registerOperation = "themes.register"
	discoverOperation = "themes.discover"

	themeExistsCode = "THEME_EXISTS"
)

// ErrServiceRequired is returned when no theme service is wired.
var ErrServiceRequired = errors.New("themes command: service is nil")

var (
	_ command.Commander[RegisterThemeCommand]  = (*RegisterThemeHandler)(nil)
	_ command.Commander[DiscoverThemesCommand] = (*DiscoverThemesHandler)(nil)
)

// TagInvalidator drops cached renders carrying any of tags.
type TagInvalidator interface {
	InvalidateTags(ctx context.Context, tags ...string) (int, error)
}

// ThemeTag is the cache tag attached to renders that depend on theme.
func ThemeTag(theme string) string {
	return "theme:" + theme
}

// RegisterThemeHandler registers a theme from its directory manifest.
type RegisterThemeHandler struct {
	inner *commands.Handler[RegisterThemeCommand]
}

// NewRegisterThemeHandler constructs a handler over service. invalidator may be nil.
func NewRegisterThemeHandler(service themes.Service, invalidator TagInvalidator, logger interfaces.Logger, opts ...commands.HandlerOption[RegisterThemeCommand]) *RegisterThemeHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg RegisterThemeCommand) error {
		if service == nil {
			return ErrServiceRequired
		}

		input, err := themes.LoadThemeDirectory(strings.TrimSpace(msg.Directory))
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "theme manifest could not be loaded").
				WithTextCode("THEME_MANIFEST_INVALID").
				WithMetadata(map[string]any{"directory": msg.Directory})
		}

		theme, err := service.RegisterTheme(ctx, input)
		switch {
		case errors.Is(err, themes.ErrThemeExists):
			return goerrors.Wrap(err, goerrors.CategoryConflict, "theme already registered").
				WithTextCode(themeExistsCode).
				WithMetadata(map[string]any{"theme": input.Name})
		case err != nil:
			return err
		}

		invalidate(ctx, invalidator, baseLogger, []*themes.Theme{theme})
		if msg.ResultCallback != nil {
			msg.ResultCallback(theme)
		}
		logging.WithFields(baseLogger, map[string]any{
			"theme":      theme.Name,
			"version":    theme.Version,
			"theme_path": theme.ThemePath,
		}).Info("themes.command.register.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RegisterThemeCommand]{
		commands.WithLogger[RegisterThemeCommand](baseLogger),
		commands.WithOperation[RegisterThemeCommand](registerOperation),
		commands.WithMessageFields(func(msg RegisterThemeCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RegisterThemeCommand](baseLogger, 0)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RegisterThemeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RegisterThemeCommand].
func (h *RegisterThemeHandler) Execute(ctx context.Context, msg RegisterThemeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DiscoverThemesHandler scans a base directory for theme manifests.
type DiscoverThemesHandler struct {
	inner *commands.Handler[DiscoverThemesCommand]
}

// NewDiscoverThemesHandler constructs a handler over service. invalidator may be nil.
func NewDiscoverThemesHandler(service themes.Service, invalidator TagInvalidator, logger interfaces.Logger, opts ...commands.HandlerOption[DiscoverThemesCommand]) *DiscoverThemesHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg DiscoverThemesCommand) error {
		if service == nil {
			return ErrServiceRequired
		}

		found, err := service.Discover(ctx, strings.TrimSpace(msg.BaseDir))
		invalidate(ctx, invalidator, baseLogger, found)
		if msg.ResultCallback != nil {
			msg.ResultCallback(found)
		}
		logging.WithFields(baseLogger, map[string]any{
			"base_dir":    msg.BaseDir,
			"theme_count": len(found),
			"partial":     err != nil,
		}).Info("themes.command.discover.completed")
		return err
	}

	handlerOpts := []commands.HandlerOption[DiscoverThemesCommand]{
		commands.WithLogger[DiscoverThemesCommand](baseLogger),
		commands.WithOperation[DiscoverThemesCommand](discoverOperation),
		commands.WithMessageFields(func(msg DiscoverThemesCommand) map[string]any {
			return map[string]any{"base_dir": msg.BaseDir}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DiscoverThemesCommand](baseLogger, 0)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DiscoverThemesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DiscoverThemesCommand].
func (h *DiscoverThemesHandler) Execute(ctx context.Context, msg DiscoverThemesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// invalidate drops renders tagged with the themes. Failures are logged only;
// stale cache entries do not undo a registration.
func invalidate(ctx context.Context, invalidator TagInvalidator, logger interfaces.Logger, registered []*themes.Theme) {
	if invalidator == nil || len(registered) == 0 {
		return
	}
	tags := make([]string, 0, len(registered))
	for _, theme := range registered {
		if theme != nil {
			tags = append(tags, ThemeTag(theme.Name))
		}
	}
	if _, err := invalidator.InvalidateTags(ctx, tags...); err != nil {
		logger.WithContext(ctx).Warn("themes.command.invalidate_failed", "tags", tags, "error", err)
	}
}
