package http

import (
	"github.com/gofiber/fiber/v2"
)

type themeResponse struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description *string `json:"description,omitempty"`
	ThemePath   string  `json:"theme_path"`
}

func (a *api) registerThemeRoutes(app *fiber.App) {
	app.Get("/themes", a.handleThemeList)
}

func (a *api) handleThemeList(c *fiber.Ctx) error {
	if a.themes == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "theme service not configured")
	}
	records, err := a.themes.ListThemes(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]themeResponse, 0, len(records))
	for _, theme := range records {
		if theme == nil {
			continue
		}
		out = append(out, themeResponse{
			Name:        theme.Name,
			Version:     theme.Version,
			Description: theme.Description,
			ThemePath:   theme.ThemePath,
		})
	}
	return c.JSON(fiber.Map{"themes": out})
}
