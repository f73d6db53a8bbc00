package rendercmd

import (
	"io"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const renderBlockMessageType = "drupier.render.block"

const (
	FormatHTML     = "html"
	FormatTerminal = "terminal"
)

var localePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([_-][A-Za-z0-9]{2,8})*$`)

// RenderBlockCommand renders a registered block and writes the result to
// Output.
type RenderBlockCommand struct {
	// BlockID is the block id or slug.
	BlockID string `json:"block_id"`
	// Locale overrides the pipeline default locale.
	Locale string `json:"locale,omitempty"`
	// Format is html (default) or terminal.
	Format string    `json:"format,omitempty"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (RenderBlockCommand) Type() string { return renderBlockMessageType }

// Validate ensures a block id, a usable writer and a known format.
func (cmd RenderBlockCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.BlockID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("drupier.render.block.block_id_required", "block id is required")
			}
			return nil
		})),
		validation.Field(&cmd.Locale, validation.Match(localePattern).Error("must be a locale code such as en or es-MX")),
		validation.Field(&cmd.Format, validation.In(FormatHTML, FormatTerminal)),
		validation.Field(&cmd.Output, validation.NotNil),
	)
}

func (cmd RenderBlockCommand) format() string {
	if cmd.Format == "" {
		return FormatHTML
	}
	return cmd.Format
}
