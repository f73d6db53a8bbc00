package logging

import (
	"context"
	"testing"

	"github.com/tothom/drupier-demo/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "drupier.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, blocksModule)

	if len(provider.requested) != 1 || provider.requested[0] != blocksModule {
		t.Fatalf("expected module %s, got %v", blocksModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != blocksModule {
		t.Fatalf("expected module field %s, got %v", blocksModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = ModuleLogger(provider, "")
	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestNamedLoggersRequestTheirModules(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		blocksModule:   BlocksLogger,
		markdownModule: MarkdownLogger,
		themesModule:   ThemesLogger,
		renderModule:   RenderLogger,
		httpModule:     HTTPLogger,
	}
	for module, fn := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = fn(provider)
		if len(provider.requested) != 1 || provider.requested[0] != module {
			t.Fatalf("expected %s, got %v", module, provider.requested)
		}
	}
}

func TestWithBlockContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithBlockContext(rec, " drupier_demo_readme_block ", "", "/themes/drupier/README.md")

	if len(rec.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got[fieldBlockID] != "drupier_demo_readme_block" {
		t.Fatalf("unexpected block id %v", got[fieldBlockID])
	}
	if _, ok := got[fieldTheme]; ok {
		t.Fatalf("blank theme should be skipped: %v", got)
	}
	if got[fieldReadmePath] != "/themes/drupier/README.md" {
		t.Fatalf("unexpected readme path %v", got[fieldReadmePath])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2, "a": 3})

	fields := ContextFields(ctx)
	if fields["a"] != 3 || fields["b"] != 2 {
		t.Fatalf("unexpected merged fields %v", fields)
	}

	fields["a"] = 99
	if ContextFields(ctx)["a"] != 3 {
		t.Fatalf("ContextFields must return a copy")
	}
}
