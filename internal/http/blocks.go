package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/i18n"
)

type blockDefinitionResponse struct {
	blocks.Definition
	Label         string `json:"label"`
	CategoryLabel string `json:"category_label"`
}

func (a *api) registerBlockRoutes(app *fiber.App) {
	group := app.Group("/blocks")
	group.Get("/", a.handleBlockList)
	group.Get("/:id", a.handleBlockRender)
}

func (a *api) handleBlockList(c *fiber.Ctx) error {
	if a.pipeline == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "render pipeline not configured")
	}
	if err := a.localized(c); err != nil {
		return err
	}
	locale := i18n.LocaleFromContext(c.UserContext())

	defs := a.pipeline.Registry().List()
	out := make([]blockDefinitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, blockDefinitionResponse{
			Definition:    def,
			Label:         a.translate(locale, def.LabelKey, def.AdminLabel),
			CategoryLabel: a.translate(locale, def.CategoryKey, def.Category),
		})
	}
	return c.JSON(fiber.Map{"blocks": out})
}

func (a *api) handleBlockRender(c *fiber.Ctx) error {
	if a.pipeline == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "render pipeline not configured")
	}
	if err := a.localized(c); err != nil {
		return err
	}

	out, err := a.pipeline.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, cacheControl(out.CacheMaxAge, a.permanentMaxAge))
	c.Set(fiber.HeaderContentLanguage, out.Locale)
	if len(out.CacheTags) > 0 {
		c.Set(headerCacheTags, strings.Join(out.CacheTags, " "))
	}
	if out.Hit {
		c.Set(headerCacheStatus, "HIT")
	} else {
		c.Set(headerCacheStatus, "MISS")
	}
	c.Type("html", "utf-8")
	return c.SendString(out.Markup)
}

// translate returns fallback when no translator is wired or the key has no
// translation.
func (a *api) translate(locale, key, fallback string) string {
	if a.translator == nil || key == "" {
		return fallback
	}
	msg, err := a.translator.Translate(locale, key)
	if err != nil || msg == "" || msg == key {
		return fallback
	}
	return msg
}
