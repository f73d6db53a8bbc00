package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const goldmarkEngine = "goldmark"

// GoldmarkConverter is the primary Markdown engine. The goldmark instance is
// built once and is safe for concurrent use.
type GoldmarkConverter struct {
	engine goldmark.Markdown
}

var _ interfaces.MarkdownConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter builds a converter with GFM, linkify and task lists
// unless opts.Extensions names a different set. Raw HTML in the source is
// passed through unless SafeMode is set.
func NewGoldmarkConverter(opts interfaces.ConvertOptions) *GoldmarkConverter {
	return &GoldmarkConverter{engine: newGoldmarkEngine(opts)}
}

// Engine names the converter in diagnostics.
func (*GoldmarkConverter) Engine() string { return goldmarkEngine }

// Convert renders markdown into HTML.
func (c *GoldmarkConverter) Convert(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(markdown, &buf); err != nil {
		return nil, ConversionError(goldmarkEngine, err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.ConvertOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// collectExtensions resolves extension names, ignoring unknown and repeated
// entries. An empty list selects the README defaults.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}
