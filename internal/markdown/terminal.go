package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	DefaultTerminalStyle = "dark"
	DefaultTerminalWidth = 80
)

// TerminalRenderer renders Markdown as ANSI text for terminal previews.
type TerminalRenderer struct {
	style string
	width int
}

// NewTerminalRenderer returns a renderer using one of glamour's standard
// styles ("dark", "light", "dracula", "notty", "ascii"...). Blank style and
// non-positive width fall back to the defaults.
func NewTerminalRenderer(style string, width int) *TerminalRenderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultTerminalStyle
	}
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	return &TerminalRenderer{style: style, width: width}
}

// Style reports the glamour style name.
func (r *TerminalRenderer) Style() string {
	return r.style
}

// Render strips front matter from source and renders the remaining body.
func (r *TerminalRenderer) Render(source []byte) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown: create terminal renderer: %w", err)
	}

	out, err := tr.Render(string(StripFrontMatter(source)))
	if err != nil {
		return "", fmt.Errorf("markdown: render terminal output: %w", err)
	}
	return out, nil
}
