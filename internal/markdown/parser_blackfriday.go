package markdown

import (
	"github.com/russross/blackfriday/v2"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const blackfridayEngine = "blackfriday"

// BlackfridayConverter is the alternate engine used when goldmark fails.
// blackfriday reports problems by panicking, so Convert recovers and
// returns a conversion error instead.
type BlackfridayConverter struct {
	extensions blackfriday.Extensions
	flags      blackfriday.HTMLFlags
}

var _ interfaces.MarkdownConverter = (*BlackfridayConverter)(nil)

// NewBlackfridayConverter maps the shared convert options onto blackfriday
// extensions and renderer flags.
func NewBlackfridayConverter(opts interfaces.ConvertOptions) *BlackfridayConverter {
	exts := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	if opts.HardWraps {
		exts |= blackfriday.HardLineBreak
	}
	flags := blackfriday.CommonHTMLFlags
	if opts.SafeMode {
		flags |= blackfriday.SkipHTML
	}
	return &BlackfridayConverter{extensions: exts, flags: flags}
}

// Engine names the converter in diagnostics.
func (*BlackfridayConverter) Engine() string { return blackfridayEngine }

// Convert renders markdown into HTML.
func (c *BlackfridayConverter) Convert(markdown []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = ConversionError(blackfridayEngine, panicError{value: r})
		}
	}()

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: c.flags})
	return blackfriday.Run(markdown,
		blackfriday.WithExtensions(c.extensions),
		blackfriday.WithRenderer(renderer),
	), nil
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return "panic: " + err.Error()
	}
	if s, ok := p.value.(string); ok {
		return "panic: " + s
	}
	return "panic during conversion"
}
