package blocks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/markdown"
	"github.com/tothom/drupier-demo/pkg/interfaces"
	"github.com/tothom/drupier-demo/pkg/testsupport"
)

func failingConverter(msg string) interfaces.MarkdownConverter {
	return interfaces.MarkdownConverterFunc(func([]byte) ([]byte, error) {
		return nil, errors.New(msg)
	})
}

func staticConverter(html string) interfaces.MarkdownConverter {
	return interfaces.MarkdownConverterFunc(func([]byte) ([]byte, error) {
		return []byte(html), nil
	})
}

func writeReadme(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}
	return path
}

func TestReadmeRendererMissingSource(t *testing.T) {
	renderer := NewReadmeRenderer(staticConverter("<p>never</p>"))

	cases := map[string]string{
		"empty path":   "",
		"blank path":   "   ",
		"missing file": filepath.Join(t.TempDir(), "nope.md"),
		"directory":    t.TempDir(),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			got := renderer.Render(context.Background(), path)
			if got.Markup != "README.md not found." {
				t.Fatalf("expected not-found markup, got %q", got.Markup)
			}
			if got.CacheMaxAge != CacheNever {
				t.Fatalf("expected max-age 0, got %d", got.CacheMaxAge)
			}
		})
	}
}

func TestReadmeRendererLocalizedNotFound(t *testing.T) {
	translator, err := i18n.NewDefaultTranslator(i18n.Config{})
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	renderer := NewReadmeRenderer(nil, WithTranslator(translator))

	ctx := i18n.WithLocale(context.Background(), "es")
	got := renderer.Render(ctx, "")
	if got.Markup != "No se ha encontrado README.md." {
		t.Fatalf("expected Spanish not-found message, got %q", got.Markup)
	}
}

func TestReadmeRendererReadError(t *testing.T) {
	renderer := NewReadmeRenderer(staticConverter("<p>never</p>"), WithFileReader(func(string) ([]byte, error) {
		return nil, os.ErrPermission
	}))
	got := renderer.Render(context.Background(), "/etc/README.md")
	if got.Markup != "README.md not found." {
		t.Fatalf("expected not-found markup on read error, got %q", got.Markup)
	}
}

func TestReadmeRendererPrimarySuccess(t *testing.T) {
	path := writeReadme(t, "# Hello\n")
	logger := testsupport.NewRecordingLogger()
	renderer := NewReadmeRenderer(staticConverter("<h1>Hello</h1>"), WithReadmeLogger(logger))

	got := renderer.Render(context.Background(), path)
	if got.Markup != "<h1>Hello</h1>" {
		t.Fatalf("expected converter output, got %q", got.Markup)
	}
	if got.CacheMaxAge != CacheNever {
		t.Fatalf("expected max-age 0, got %d", got.CacheMaxAge)
	}
	if _, ok := logger.Find("readme.convert.failed"); ok {
		t.Fatalf("expected no failure log on success")
	}
}

func TestReadmeRendererGoldmark(t *testing.T) {
	path := writeReadme(t, "---\ntitle: Demo\n---\n# Demo\n\nSome *text*.\n")
	renderer := NewReadmeRenderer(markdown.NewGoldmarkConverter(interfaces.ConvertOptions{}))

	got := renderer.Render(context.Background(), path)
	if !strings.Contains(got.Markup, "<em>text</em>") {
		t.Fatalf("expected emphasis, got %q", got.Markup)
	}
	if strings.Contains(got.Markup, "title: Demo") {
		t.Fatalf("expected front matter stripped, got %q", got.Markup)
	}

	kept := NewReadmeRenderer(markdown.NewGoldmarkConverter(interfaces.ConvertOptions{}), WithFrontMatterStripping(false))
	if got := kept.Render(context.Background(), path); !strings.Contains(got.Markup, "title: Demo") {
		t.Fatalf("expected front matter kept when stripping disabled, got %q", got.Markup)
	}
}

func TestReadmeRendererPlainTextFallback(t *testing.T) {
	source := "# Title\r\n<script>alert(1)</script>\nlast & final"
	path := writeReadme(t, source)
	logger := testsupport.NewRecordingLogger()
	renderer := NewReadmeRenderer(failingConverter("bad input"), WithReadmeLogger(logger))

	got := renderer.Render(context.Background(), path)
	want := "# Title<br />&lt;script&gt;alert(1)&lt;/script&gt;<br />last &amp; final"
	if got.Markup != want {
		t.Fatalf("expected escaped plain text\nwant %q\ngot  %q", want, got.Markup)
	}
	if strings.Contains(got.Markup, "<script>") {
		t.Fatalf("plain text fallback leaked a script tag: %q", got.Markup)
	}
	if got.CacheMaxAge != CacheNever {
		t.Fatalf("expected max-age 0, got %d", got.CacheMaxAge)
	}

	failed, ok := logger.Find("readme.convert.failed")
	if !ok {
		t.Fatalf("expected readme.convert.failed entry")
	}
	if failed.Level != "error" {
		t.Fatalf("expected error level, got %s", failed.Level)
	}
	if failed.Fields["converter_available"] != true {
		t.Fatalf("expected converter_available=true, got %v", failed.Fields["converter_available"])
	}
	if failed.Fields["readme_path"] != path {
		t.Fatalf("expected readme_path %q, got %v", path, failed.Fields["readme_path"])
	}
	if failed.Fields["error"] == nil {
		t.Fatalf("expected error field")
	}

	fallback, ok := logger.Find("readme.convert.plain_text_fallback")
	if !ok || fallback.Level != "warn" {
		t.Fatalf("expected warn plain_text_fallback entry, got %+v", fallback)
	}
}

func TestReadmeRendererPlainTextKeepsFrontMatter(t *testing.T) {
	path := writeReadme(t, "---\ntitle: Demo\n---\nbody")
	renderer := NewReadmeRenderer(failingConverter("x"))

	got := renderer.Render(context.Background(), path)
	if !strings.HasPrefix(got.Markup, "---<br />title: Demo") {
		t.Fatalf("expected full source in plain text, got %q", got.Markup)
	}
}

func TestReadmeRendererNoPrimaryConverter(t *testing.T) {
	path := writeReadme(t, "a\nb")
	logger := testsupport.NewRecordingLogger()
	renderer := NewReadmeRenderer(nil, WithReadmeLogger(logger))

	got := renderer.Render(context.Background(), path)
	if got.Markup != "a<br />b" {
		t.Fatalf("expected plain text, got %q", got.Markup)
	}
	failed, ok := logger.Find("readme.convert.failed")
	if !ok || failed.Fields["converter_available"] != false {
		t.Fatalf("expected converter_available=false, got %+v", failed)
	}
}

func TestReadmeRendererPanickingPrimary(t *testing.T) {
	path := writeReadme(t, "text")
	panicking := interfaces.MarkdownConverterFunc(func([]byte) ([]byte, error) {
		panic("converter exploded")
	})
	renderer := NewReadmeRenderer(panicking)

	got := renderer.Render(context.Background(), path)
	if got.Markup != "text" {
		t.Fatalf("expected plain text after panic, got %q", got.Markup)
	}
}

func TestReadmeRendererAlternateConverter(t *testing.T) {
	path := writeReadme(t, "# Alt\n")

	t.Run("alternate output used", func(t *testing.T) {
		renderer := NewReadmeRenderer(failingConverter("primary down"),
			WithAlternateConverter(staticConverter("<h1>Alt</h1>")))
		got := renderer.Render(context.Background(), path)
		if got.Markup != "<h1>Alt</h1>" {
			t.Fatalf("expected alternate output, got %q", got.Markup)
		}
		if got.CacheMaxAge != CacheNever {
			t.Fatalf("expected max-age 0, got %d", got.CacheMaxAge)
		}
	})

	t.Run("blackfriday alternate", func(t *testing.T) {
		renderer := NewReadmeRenderer(failingConverter("primary down"),
			WithAlternateConverter(markdown.NewBlackfridayConverter(interfaces.ConvertOptions{})))
		got := renderer.Render(context.Background(), path)
		if !strings.Contains(got.Markup, "Alt</h1>") {
			t.Fatalf("expected blackfriday heading, got %q", got.Markup)
		}
	})

	t.Run("alternate failure falls through to plain text", func(t *testing.T) {
		logger := testsupport.NewRecordingLogger()
		renderer := NewReadmeRenderer(failingConverter("primary down"),
			WithAlternateConverter(failingConverter("alternate down")),
			WithReadmeLogger(logger))
		got := renderer.Render(context.Background(), path)
		if got.Markup != "# Alt<br />" {
			t.Fatalf("expected plain text, got %q", got.Markup)
		}
		if _, ok := logger.Find("readme.convert.alternate_failed"); !ok {
			t.Fatalf("expected alternate failure to be logged")
		}
	})
}

func TestReadmeBlockBuild(t *testing.T) {
	themesDir, err := filepath.Abs(filepath.Join("testdata", "themes"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	resolver := interfaces.ThemePathResolverFunc(func(_ context.Context, theme string) (string, error) {
		return filepath.Join(themesDir, theme), nil
	})
	renderer := NewReadmeRenderer(markdown.NewGoldmarkConverter(interfaces.ConvertOptions{SafeMode: true}))
	block := NewReadmeBlock(renderer, resolver, ReadmeBlockOptions{})

	def := block.Definition()
	if def.ID != ReadmeBlockID || def.AdminLabel != "Drupier README" || def.Category != "Drupier Demo" {
		t.Fatalf("unexpected definition %+v", def)
	}
	if block.Theme() != DefaultTheme {
		t.Fatalf("expected default theme, got %q", block.Theme())
	}

	got := block.Build(context.Background())
	if !strings.Contains(got.Markup, `<h1 id="drupier">Drupier</h1>`) {
		t.Fatalf("expected rendered README, got %q", got.Markup)
	}
	if strings.Contains(got.Markup, "<script>") {
		t.Fatalf("expected safe mode to drop raw html, got %q", got.Markup)
	}
	if got.CacheMaxAge != CacheNever {
		t.Fatalf("expected max-age 0, got %d", got.CacheMaxAge)
	}
	if len(got.CacheTags) != 1 || got.CacheTags[0] != "theme:drupier" {
		t.Fatalf("expected theme cache tag, got %v", got.CacheTags)
	}
}

func TestReadmeBlockResolverFailure(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	resolver := interfaces.ThemePathResolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("theme not installed")
	})
	block := NewReadmeBlock(NewReadmeRenderer(staticConverter("<p>x</p>")), resolver, ReadmeBlockOptions{
		Theme:  "olivero",
		Logger: logger,
	})

	got := block.Build(context.Background())
	if got.Markup != "README.md not found." {
		t.Fatalf("expected not-found markup, got %q", got.Markup)
	}
	if len(got.CacheTags) != 1 || got.CacheTags[0] != "theme:olivero" {
		t.Fatalf("expected theme tag, got %v", got.CacheTags)
	}
	entry, ok := logger.Find("readme.theme_path.unresolved")
	if !ok {
		t.Fatalf("expected unresolved warning")
	}
	if entry.Fields["block_id"] != ReadmeBlockID || entry.Fields["theme"] != "olivero" {
		t.Fatalf("expected block context fields, got %v", entry.Fields)
	}
}

func TestReadmeBlockCustomReadmeFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "GUIDE.md"), []byte("guide"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	resolver := interfaces.ThemePathResolverFunc(func(context.Context, string) (string, error) {
		return dir, nil
	})
	block := NewReadmeBlock(NewReadmeRenderer(failingConverter("x")), resolver, ReadmeBlockOptions{ReadmeFile: "GUIDE.md"})

	if got := block.ReadmePath(context.Background()); got != filepath.Join(dir, "GUIDE.md") {
		t.Fatalf("unexpected readme path %q", got)
	}
	if got := block.Build(context.Background()); got.Markup != "guide" {
		t.Fatalf("expected custom readme contents, got %q", got.Markup)
	}
}

func TestReadmeBlockSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Raw"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	resolver := interfaces.ThemePathResolverFunc(func(_ context.Context, theme string) (string, error) {
		if theme != DefaultTheme {
			return "", errors.New("unknown theme")
		}
		return dir, nil
	})

	block := NewReadmeBlock(nil, resolver, ReadmeBlockOptions{})
	src, ok := block.Source(context.Background())
	if !ok || string(src) != "# Raw" {
		t.Fatalf("expected raw source, got %q (ok=%v)", src, ok)
	}

	missing := NewReadmeBlock(nil, resolver, ReadmeBlockOptions{Theme: "olivero"})
	if _, ok := missing.Source(context.Background()); ok {
		t.Fatalf("expected no source for unresolved theme")
	}
}
