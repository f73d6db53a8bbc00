package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// Level is the severity attached to an entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configuration string onto a Level. Unknown values fall
// back to LevelInfo and report false.
func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// Options configures the console provider. Writer defaults to stdout and
// MinLevel to LevelDebug.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

// FileWriter returns a size-rotated log file writer for path.
func FileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

type provider struct {
	writer   io.Writer
	clock    func() time.Time
	minLevel Level
	mu       sync.Mutex
}

// NewProvider builds a provider writing one logfmt-like line per entry.
func NewProvider(opts Options) interfaces.LoggerProvider {
	p := &provider{
		writer:   opts.Writer,
		clock:    opts.TimeFunc,
		minLevel: LevelDebug,
	}
	if p.writer == nil {
		p.writer = os.Stdout
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if opts.MinLevel != nil {
		p.minLevel = *opts.MinLevel
	}
	return p
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &consoleLogger{
		provider: p,
		fields:   map[string]any{"logger": name},
	}
}

type consoleLogger struct {
	provider *provider
	fields   map[string]any
	ctx      context.Context
}

var (
	_ interfaces.Logger       = (*consoleLogger)(nil)
	_ interfaces.FieldsLogger = (*consoleLogger)(nil)
)

func (l *consoleLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *consoleLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *consoleLogger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *consoleLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *consoleLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }
func (l *consoleLogger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args) }

func (l *consoleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return &consoleLogger{provider: l.provider, fields: merged, ctx: l.ctx}
}

func (l *consoleLogger) WithContext(ctx context.Context) interfaces.Logger {
	return &consoleLogger{provider: l.provider, fields: maps.Clone(l.fields), ctx: ctx}
}

func (l *consoleLogger) log(level Level, msg string, args []any) {
	if l.provider == nil || level < l.provider.minLevel {
		return
	}

	fields := maps.Clone(l.fields)
	if fields == nil {
		fields = map[string]any{}
	}
	maps.Copy(fields, logging.ContextFields(l.ctx))
	maps.Copy(fields, argsToFields(args))

	line := formatEntry(l.provider.clock().UTC(), level, msg, fields)

	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	// best effort: diagnostics must never fail the caller
	_, _ = io.WriteString(l.provider.writer, line+"\n")
}

// argsToFields pairs variadic key/value arguments. Non-string keys and a
// trailing odd argument are stored under positional field_N keys.
func argsToFields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i == len(args)-1 {
			fields[fmt.Sprintf("field_%d", i/2)] = args[i]
			break
		}
		if key, ok := args[i].(string); ok && key != "" {
			fields[key] = args[i+1]
			continue
		}
		fields[fmt.Sprintf("field_%d", i/2)] = args[i+1]
	}
	return fields
}

func formatEntry(ts time.Time, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[key]))
	}
	return b.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quoteIfNeeded(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case error:
		return quoteIfNeeded(v.Error())
	case fmt.Stringer:
		return quoteIfNeeded(v.String())
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsFunc(value, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(value)
	}
	return value
}
