package rendercmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/commands"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/markdown"
	"github.com/tothom/drupier-demo/internal/render"
	"github.com/tothom/drupier-demo/pkg/interfaces"
	"github.com/tothom/drupier-demo/pkg/testsupport"
)

type stubTerminal struct {
	sources []string
	err     error
}

func (s *stubTerminal) Render(source []byte) (string, error) {
	s.sources = append(s.sources, string(source))
	if s.err != nil {
		return "", s.err
	}
	return "TERM:" + string(source), nil
}

func newTestDeps(t *testing.T, readme string) (Dependencies, *stubTerminal) {
	t.Helper()

	dir := t.TempDir()
	if readme != "" {
		if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644); err != nil {
			t.Fatalf("write readme: %v", err)
		}
	}
	resolver := interfaces.ThemePathResolverFunc(func(context.Context, string) (string, error) {
		return dir, nil
	})
	translator, err := i18n.NewDefaultTranslator(i18n.Config{})
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	registry := blocks.NewRegistry()
	registry.MustRegister(
		blocks.NewMarqueeBlock(),
		blocks.NewReadmeBlock(
			blocks.NewReadmeRenderer(markdown.NewGoldmarkConverter(interfaces.ConvertOptions{}), blocks.WithTranslator(translator)),
			resolver,
			blocks.ReadmeBlockOptions{},
		),
	)

	terminal := &stubTerminal{}
	return Dependencies{
		Pipeline: render.NewPipeline(registry),
		Blocks:   registry,
		Terminal: terminal,
	}, terminal
}

func TestRenderBlockHandlerWritesMarkup(t *testing.T) {
	deps, _ := newTestDeps(t, "# Hello")
	logger := testsupport.NewRecordingLogger()
	handler := NewRenderBlockHandler(deps, logger)

	var buf bytes.Buffer
	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.ReadmeBlockID,
		Output:  &buf,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `<h1 id="hello">Hello</h1>`) {
		t.Fatalf("expected rendered README, got %q", buf.String())
	}

	entry, ok := logger.Find("render.command.block.completed")
	if !ok {
		t.Fatalf("expected completion log")
	}
	if entry.Fields["block_id"] != blocks.ReadmeBlockID || entry.Fields["locale"] != "en" {
		t.Fatalf("unexpected completion fields %v", entry.Fields)
	}
	if _, ok := logger.Find("command.execute.success"); !ok {
		t.Fatalf("expected telemetry success log")
	}
}

func TestRenderBlockHandlerLocale(t *testing.T) {
	deps, _ := newTestDeps(t, "")
	handler := NewRenderBlockHandler(deps, nil)

	var buf bytes.Buffer
	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.ReadmeBlockID,
		Locale:  "ca",
		Output:  &buf,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "No s'ha trobat README.md." {
		t.Fatalf("expected Catalan not-found message, got %q", buf.String())
	}
}

func TestRenderBlockHandlerTerminalFormat(t *testing.T) {
	deps, terminal := newTestDeps(t, "# Hello")
	handler := NewRenderBlockHandler(deps, nil)

	var buf bytes.Buffer
	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.ReadmeBlockID,
		Format:  FormatTerminal,
		Output:  &buf,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "TERM:# Hello" {
		t.Fatalf("expected terminal output, got %q", buf.String())
	}
	if len(terminal.sources) != 1 {
		t.Fatalf("expected one terminal render, got %d", len(terminal.sources))
	}

	buf.Reset()
	err = handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.MarqueeBlockID,
		Format:  FormatTerminal,
		Output:  &buf,
	})
	if err != nil {
		t.Fatalf("execute marquee: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<p>") {
		t.Fatalf("expected marquee markup unchanged, got %q", buf.String())
	}
	if len(terminal.sources) != 1 {
		t.Fatalf("expected marquee to skip terminal renderer")
	}
}

func TestRenderBlockHandlerTerminalFailure(t *testing.T) {
	deps, terminal := newTestDeps(t, "# Hello")
	terminal.err = errors.New("style missing")
	handler := NewRenderBlockHandler(deps, nil)

	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.ReadmeBlockID,
		Format:  FormatTerminal,
		Output:  &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected terminal failure")
	}
	if got := commands.TextCode(err); got != "COMMAND_EXECUTION_FAILED" {
		t.Fatalf("expected execution failure code, got %q", got)
	}

	deps.Terminal = nil
	handler = NewRenderBlockHandler(deps, nil)
	err = handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.ReadmeBlockID,
		Format:  FormatTerminal,
		Output:  &bytes.Buffer{},
	})
	if !errors.Is(err, ErrTerminalUnavailable) {
		t.Fatalf("expected ErrTerminalUnavailable, got %v", err)
	}
}

func TestRenderBlockHandlerUnknownBlock(t *testing.T) {
	deps, _ := newTestDeps(t, "")
	handler := NewRenderBlockHandler(deps, nil)

	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: "missing",
		Output:  &bytes.Buffer{},
	})
	if !render.IsBlockNotFound(err) {
		t.Fatalf("expected block not found, got %v", err)
	}
}

func TestRenderBlockHandlerNilPipeline(t *testing.T) {
	handler := NewRenderBlockHandler(Dependencies{}, nil)
	err := handler.Execute(context.Background(), RenderBlockCommand{
		BlockID: blocks.MarqueeBlockID,
		Output:  &bytes.Buffer{},
	})
	if !errors.Is(err, ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}
}

func TestRenderBlockCommandValidate(t *testing.T) {
	cases := map[string]RenderBlockCommand{
		"missing block":  {Output: &bytes.Buffer{}},
		"blank block":    {BlockID: "  ", Output: &bytes.Buffer{}},
		"missing output": {BlockID: blocks.MarqueeBlockID},
		"bad locale":     {BlockID: blocks.MarqueeBlockID, Locale: "english!", Output: &bytes.Buffer{}},
		"bad format":     {BlockID: blocks.MarqueeBlockID, Format: "pdf", Output: &bytes.Buffer{}},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cmd.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	valid := RenderBlockCommand{BlockID: blocks.MarqueeBlockID, Locale: "es-MX", Format: FormatHTML, Output: &bytes.Buffer{}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
	if valid.Type() != "drupier.render.block" {
		t.Fatalf("unexpected message type %q", valid.Type())
	}
}

func TestRenderBlockHandlerValidationCode(t *testing.T) {
	deps, _ := newTestDeps(t, "")
	handler := NewRenderBlockHandler(deps, nil)

	err := handler.Execute(context.Background(), RenderBlockCommand{BlockID: blocks.MarqueeBlockID})
	if got := commands.TextCode(err); got != "COMMAND_VALIDATION_FAILED" {
		t.Fatalf("expected validation code, got %q (%v)", got, err)
	}
}

func TestRegisterRenderCommands(t *testing.T) {
	if _, err := RegisterRenderCommands(nil, Dependencies{}, nil); err == nil {
		t.Fatalf("expected error without pipeline")
	}

	deps, _ := newTestDeps(t, "")
	reg := &recordingRegistry{}
	set, err := RegisterRenderCommands(reg, deps, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Render == nil || len(reg.handlers) != 1 {
		t.Fatalf("expected render handler registered, got %+v", reg.handlers)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}
