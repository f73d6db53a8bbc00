package themescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tothom/drupier-demo/internal/themes"
)

const (
	registerThemeMessageType  = "drupier.themes.register"
	discoverThemesMessageType = "drupier.themes.discover"
)

// RegisterThemeCommand registers the theme whose theme.json lives in Directory.
type RegisterThemeCommand struct {
	Directory string `json:"directory"`
	// ResultCallback receives the stored theme after a successful registration.
	ResultCallback func(*themes.Theme) `json:"-"`
}

// Type implements command.Message.
func (RegisterThemeCommand) Type() string { return registerThemeMessageType }

// Validate ensures a directory is present before handlers execute.
func (cmd RegisterThemeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(nonBlank("drupier.themes.register.directory_required", "directory is required"))),
	)
}

// DiscoverThemesCommand registers every theme directory found under BaseDir.
type DiscoverThemesCommand struct {
	BaseDir        string                `json:"base_dir"`
	ResultCallback func([]*themes.Theme) `json:"-"`
}

// Type implements command.Message.
func (DiscoverThemesCommand) Type() string { return discoverThemesMessageType }

// Validate ensures a base directory is present before handlers execute.
func (cmd DiscoverThemesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.BaseDir, validation.Required, validation.By(nonBlank("drupier.themes.discover.base_dir_required", "base directory is required"))),
	)
}

func nonBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
