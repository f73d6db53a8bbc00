package http

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/render"
)

const (
	headerCacheTags   = "X-Drupier-Cache-Tags"
	headerCacheStatus = "X-Drupier-Cache"
)

var localePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([_-][A-Za-z0-9]{2,8})*$`)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (a *api) handleError(c *fiber.Ctx, err error) error {
	status, payload := mapError(err)
	if status >= fiber.StatusInternalServerError {
		a.logger.WithContext(c.UserContext()).Error("http.request.failed", "path", c.Path(), "error", err)
	} else {
		a.logger.WithContext(c.UserContext()).Warn("http.request.rejected", "path", c.Path(), "status", status, "message", payload.Message)
	}
	return c.Status(status).JSON(payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return fiber.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if render.IsBlockNotFound(err) {
		return fiber.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "block not found",
		}
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: verrs.Error(),
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "error"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusBadRequest:
			code = "bad_request"
		case fiber.StatusServiceUnavailable:
			code = "service_unavailable"
		}
		return fe.Code, errorResponse{Error: code, Message: fe.Message}
	}

	return fiber.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	}
}

// requestLocale picks ?locale= first, then Accept-Language against the
// offered locales, and resolves the choice onto an offered locale. The
// result is "" when neither is present or nothing is offered.
func (a *api) requestLocale(c *fiber.Ctx) (string, error) {
	locale := c.Query("locale")
	if locale != "" {
		err := validation.Errors{
			"locale": validation.Validate(locale,
				validation.Length(2, 35),
				validation.Match(localePattern).Error("must be a locale code such as en or es-MX"),
			),
		}.Filter()
		if err != nil {
			return "", err
		}
	} else if c.Get(fiber.HeaderAcceptLanguage) != "" && len(a.locales) > 0 {
		locale = c.AcceptsLanguages(a.locales...)
	}
	if locale == "" || len(a.locales) == 0 {
		return "", nil
	}
	// Only offered locales reach the render cache key.
	return i18n.Resolve(locale, a.locales, a.defaultLocale), nil
}

func (a *api) localized(c *fiber.Ctx) error {
	locale, err := a.requestLocale(c)
	if err != nil {
		return err
	}
	if locale != "" {
		c.SetUserContext(i18n.WithLocale(c.UserContext(), locale))
	}
	return nil
}

func cacheControl(maxAge, permanentMaxAge int) string {
	switch {
	case maxAge == blocks.CachePermanent:
		return fmt.Sprintf("public, max-age=%d", permanentMaxAge)
	case maxAge > 0:
		return fmt.Sprintf("public, max-age=%d", maxAge)
	default:
		return "no-store"
	}
}
