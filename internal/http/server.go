package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/render"
	"github.com/tothom/drupier-demo/internal/themes"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const (
	DefaultPermanentMaxAge = 3600
	shutdownTimeout        = 5 * time.Second
)

// ThemeLister lists registered themes.
type ThemeLister interface {
	ListThemes(ctx context.Context) ([]*themes.Theme, error)
}

// Deps carries the collaborators mounted by New.
type Deps struct {
	Pipeline   *render.Pipeline
	Translator interfaces.Translator
	Themes     ThemeLister
	Logger     interfaces.Logger
	// Locales lists the locales offered for Accept-Language negotiation.
	// Requested locales outside it resolve to a parent or DefaultLocale.
	Locales []string
	// DefaultLocale defaults to the first offered locale.
	DefaultLocale string
	// PermanentMaxAge is the Cache-Control max-age sent for permanent renders.
	PermanentMaxAge int
}

type api struct {
	pipeline        *render.Pipeline
	translator      interfaces.Translator
	themes          ThemeLister
	logger          interfaces.Logger
	locales         []string
	defaultLocale   string
	permanentMaxAge int
}

// New builds the fiber app serving deps.
func New(deps Deps) *fiber.App {
	a := &api{
		pipeline:        deps.Pipeline,
		translator:      deps.Translator,
		themes:          deps.Themes,
		logger:          logging.Or(deps.Logger),
		locales:         deps.Locales,
		defaultLocale:   deps.DefaultLocale,
		permanentMaxAge: deps.PermanentMaxAge,
	}
	if a.defaultLocale == "" && len(a.locales) > 0 {
		a.defaultLocale = a.locales[0]
	}
	if a.permanentMaxAge <= 0 {
		a.permanentMaxAge = DefaultPermanentMaxAge
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          a.handleError,
	})
	app.Use(recover.New())
	app.Use(a.requestLogger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	a.registerBlockRoutes(app)
	a.registerThemeRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})
	return app
}

// Serve listens on addr until ctx is canceled, then shuts app down.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func (a *api) requestLogger(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	a.logger.WithContext(c.UserContext()).Debug("http.request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return err
}
