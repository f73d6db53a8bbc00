package blocks

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/internal/markdown"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const (
	ReadmeBlockID = "drupier_demo_readme_block"

	DefaultTheme      = "drupier"
	DefaultReadmeFile = "README.md"

	blockCategory = "Drupier Demo"
	categoryKey   = "drupier.block.category"

	readmeNotFoundKey     = "drupier.readme.not_found"
	readmeNotFoundMessage = "README.md not found."
)

// ReadmeRenderer turns a README file into HTML. Conversion failures degrade
// the output instead of surfacing an error: the alternate converter is tried
// next, then an escaped plain-text rendering.
type ReadmeRenderer struct {
	primary          interfaces.MarkdownConverter
	alternate        interfaces.MarkdownConverter
	translator       interfaces.Translator
	logger           interfaces.Logger
	stripFrontMatter bool
	readFile         func(string) ([]byte, error)
}

// ReadmeOption configures a ReadmeRenderer.
type ReadmeOption func(*ReadmeRenderer)

// WithAlternateConverter sets the converter used when the primary fails.
func WithAlternateConverter(converter interfaces.MarkdownConverter) ReadmeOption {
	return func(r *ReadmeRenderer) {
		r.alternate = converter
	}
}

// WithTranslator localizes the not-found message.
func WithTranslator(translator interfaces.Translator) ReadmeOption {
	return func(r *ReadmeRenderer) {
		if translator != nil {
			r.translator = translator
		}
	}
}

// WithReadmeLogger sets the diagnostics sink.
func WithReadmeLogger(logger interfaces.Logger) ReadmeOption {
	return func(r *ReadmeRenderer) {
		r.logger = logging.Or(logger)
	}
}

// WithFrontMatterStripping toggles removal of a leading front matter block.
func WithFrontMatterStripping(enabled bool) ReadmeOption {
	return func(r *ReadmeRenderer) {
		r.stripFrontMatter = enabled
	}
}

// WithFileReader replaces os.ReadFile.
func WithFileReader(read func(string) ([]byte, error)) ReadmeOption {
	return func(r *ReadmeRenderer) {
		if read != nil {
			r.readFile = read
		}
	}
}

// NewReadmeRenderer builds a renderer around the primary converter. A nil
// primary is allowed; every render then takes the fallback path.
func NewReadmeRenderer(primary interfaces.MarkdownConverter, opts ...ReadmeOption) *ReadmeRenderer {
	r := &ReadmeRenderer{
		primary:          primary,
		translator:       i18n.NoOpTranslator{},
		logger:           logging.NoOp(),
		stripFrontMatter: true,
		readFile:         os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render converts the file at readmePath. An empty path means no README.
func (r *ReadmeRenderer) Render(ctx context.Context, readmePath string) RenderResult {
	logger := r.logger.WithContext(ctx)

	source, ok := r.load(readmePath)
	if !ok {
		logger.Debug("readme.missing", "readme_path", readmePath)
		return RenderResult{
			Markup:      r.notFound(ctx),
			CacheMaxAge: CacheNever,
		}
	}

	body := source
	if r.stripFrontMatter {
		body = markdown.StripFrontMatter(source)
	}

	html, err := markdown.SafeConvert(r.primary, body)
	if err == nil {
		return RenderResult{Markup: string(html), CacheMaxAge: CacheNever}
	}

	logger.Error("readme.convert.failed",
		"error", err,
		"converter_available", r.primary != nil,
		"readme_path", readmePath,
	)

	if r.alternate != nil {
		html, altErr := markdown.SafeConvert(r.alternate, body)
		if altErr == nil {
			return RenderResult{Markup: string(html), CacheMaxAge: CacheNever}
		}
		logger.Error("readme.convert.alternate_failed",
			"error", altErr,
			"readme_path", readmePath,
		)
	}

	logger.Warn("readme.convert.plain_text_fallback", "readme_path", readmePath)
	return RenderResult{
		Markup:      markdown.PlainText(source),
		CacheMaxAge: CacheNever,
	}
}

func (r *ReadmeRenderer) load(path string) ([]byte, bool) {
	if strings.TrimSpace(path) == "" {
		return nil, false
	}
	data, err := r.readFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *ReadmeRenderer) notFound(ctx context.Context) string {
	msg, err := r.translator.Translate(i18n.LocaleFromContext(ctx), readmeNotFoundKey)
	if err != nil || msg == "" || msg == readmeNotFoundKey {
		return readmeNotFoundMessage
	}
	return msg
}

// ReadmeBlockOptions selects which theme's README the block shows.
type ReadmeBlockOptions struct {
	Theme      string
	ReadmeFile string
	Logger     interfaces.Logger
}

// ReadmeBlock renders the README shipped with a theme.
type ReadmeBlock struct {
	renderer   *ReadmeRenderer
	resolver   interfaces.ThemePathResolver
	theme      string
	readmeFile string
	logger     interfaces.Logger
}

var _ Block = (*ReadmeBlock)(nil)

// NewReadmeBlock wires renderer to resolver. Blank options fall back to the
// drupier theme and README.md.
func NewReadmeBlock(renderer *ReadmeRenderer, resolver interfaces.ThemePathResolver, opts ReadmeBlockOptions) *ReadmeBlock {
	theme := strings.TrimSpace(opts.Theme)
	if theme == "" {
		theme = DefaultTheme
	}
	readmeFile := strings.TrimSpace(opts.ReadmeFile)
	if readmeFile == "" {
		readmeFile = DefaultReadmeFile
	}
	if renderer == nil {
		renderer = NewReadmeRenderer(nil)
	}
	return &ReadmeBlock{
		renderer:   renderer,
		resolver:   resolver,
		theme:      theme,
		readmeFile: readmeFile,
		logger:     logging.WithBlockContext(logging.Or(opts.Logger), ReadmeBlockID, theme, ""),
	}
}

func (b *ReadmeBlock) Definition() Definition {
	return Definition{
		ID:          ReadmeBlockID,
		AdminLabel:  "Drupier README",
		Category:    blockCategory,
		LabelKey:    "drupier.block.readme.label",
		CategoryKey: categoryKey,
	}
}

// Theme returns the theme whose README is rendered.
func (b *ReadmeBlock) Theme() string {
	return b.theme
}

// ReadmePath resolves the README location. Resolver failures are logged
// and reported as an empty path.
func (b *ReadmeBlock) ReadmePath(ctx context.Context) string {
	if b.resolver == nil {
		return ""
	}
	dir, err := b.resolver.ThemePath(ctx, b.theme)
	if err != nil || strings.TrimSpace(dir) == "" {
		b.logger.WithContext(ctx).Warn("readme.theme_path.unresolved", "error", err)
		return ""
	}
	return filepath.Join(dir, b.readmeFile)
}

// Source returns the raw README contents, or false when the file cannot be
// resolved or read.
func (b *ReadmeBlock) Source(ctx context.Context) ([]byte, bool) {
	return b.renderer.load(b.ReadmePath(ctx))
}

func (b *ReadmeBlock) Build(ctx context.Context) RenderResult {
	result := b.renderer.Render(ctx, b.ReadmePath(ctx))
	result.CacheTags = MergeTags(result.CacheTags, []string{"theme:" + b.theme})
	return result
}
