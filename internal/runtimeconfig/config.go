package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrThemeReadmeFileRequired  = errors.New("drupier config: theme readme file is required")
	ErrThemeDefaultRequired     = errors.New("drupier config: default theme is required")
	ErrDefaultLocaleRequired    = errors.New("drupier config: default locale is required")
	ErrDefaultLocaleUnlisted    = errors.New("drupier config: default locale must be listed in locales")
	ErrStorageDriverUnknown     = errors.New("drupier config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("drupier config: storage dsn is required for database drivers")
	ErrCacheDriverUnknown       = errors.New("drupier config: cache driver is invalid")
	ErrCacheRedisAddrRequired   = errors.New("drupier config: redis address is required when the redis cache driver is selected")
	ErrMarkdownAlternateInvalid = errors.New("drupier config: markdown alternate converter is invalid")
	ErrHTTPAddrRequired         = errors.New("drupier config: http address is required")
	ErrHTTPMaxAgeInvalid        = errors.New("drupier config: http permanent max-age must be zero or positive")
)

var ErrLoggingProviderRequired = errors.New("drupier config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("drupier config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("drupier config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("drupier config: logging format is invalid")

// Config aggregates the settings of the drupier demo module. Fields use
// simple types so viper can decode them from YAML or the environment.
type Config struct {
	Theme    ThemeConfig    `mapstructure:"theme"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	I18N     I18NConfig     `mapstructure:"i18n"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ThemeConfig locates installed themes and the README shown by the block.
type ThemeConfig struct {
	BasePath     string `mapstructure:"base_path"`
	DefaultTheme string `mapstructure:"default_theme"`
	ReadmeFile   string `mapstructure:"readme_file"`
	// Discover registers every theme under BasePath at startup.
	Discover bool `mapstructure:"discover"`
}

// MarkdownConfig mirrors interfaces.ConvertOptions plus README handling.
type MarkdownConfig struct {
	Extensions       []string `mapstructure:"extensions"`
	HardWraps        bool     `mapstructure:"hard_wraps"`
	SafeMode         bool     `mapstructure:"safe_mode"`
	StripFrontMatter bool     `mapstructure:"strip_front_matter"`
	// Alternate names the converter used when goldmark fails: "blackfriday" or "none".
	Alternate     string `mapstructure:"alternate"`
	TerminalStyle string `mapstructure:"terminal_style"`
	TerminalWidth int    `mapstructure:"terminal_width"`
}

// I18NConfig selects the locales served. File optionally points at a JSON
// translations fixture merged over the embedded one.
type I18NConfig struct {
	DefaultLocale string   `mapstructure:"default_locale"`
	Locales       []string `mapstructure:"locales"`
	File          string   `mapstructure:"file"`
}

// StorageConfig selects the theme repository backend.
type StorageConfig struct {
	// Driver is memory, sqlite or postgres.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig captures render cache and repository cache behaviour.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver is memory or redis.
	Driver    string `mapstructure:"driver"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	// DefaultTTL bounds cached theme repository lookups.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// HTTPConfig configures the fiber server.
type HTTPConfig struct {
	Addr            string `mapstructure:"addr"`
	PermanentMaxAge int    `mapstructure:"permanent_max_age"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	// Provider is console, gologger or zerolog.
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
	// File routes output to a size-rotated file instead of stdout/stderr.
	File string `mapstructure:"file"`
}

// DefaultConfig returns defaults suitable for running the demo from the
// repository root.
func DefaultConfig() Config {
	return Config{
		Theme: ThemeConfig{
			BasePath:     "themes",
			DefaultTheme: "drupier",
			ReadmeFile:   "README.md",
		},
		Markdown: MarkdownConfig{
			Extensions:       []string{"gfm"},
			StripFrontMatter: true,
			Alternate:        "blackfriday",
			TerminalStyle:    "dark",
			TerminalWidth:    80,
		},
		I18N: I18NConfig{
			DefaultLocale: "en",
			Locales:       []string{"en", "es", "ca"},
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			Driver:     "memory",
			DefaultTTL: time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			PermanentMaxAge: 3600,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Theme.DefaultTheme) == "" {
		return ErrThemeDefaultRequired
	}
	if strings.TrimSpace(cfg.Theme.ReadmeFile) == "" {
		return ErrThemeReadmeFileRequired
	}

	switch normalize(cfg.Markdown.Alternate) {
	case "", "none", "blackfriday":
	default:
		return fmt.Errorf("%w: %s", ErrMarkdownAlternateInvalid, cfg.Markdown.Alternate)
	}

	defaultLocale := normalize(cfg.I18N.DefaultLocale)
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.I18N.Locales) > 0 && !containsFold(cfg.I18N.Locales, defaultLocale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnlisted, cfg.I18N.DefaultLocale)
	}

	switch normalize(cfg.Storage.Driver) {
	case "", "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Driver) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
				return ErrCacheRedisAddrRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheDriverUnknown, cfg.Cache.Driver)
		}
	}

	if cfg.HTTP.PermanentMaxAge < 0 {
		return ErrHTTPMaxAgeInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(provider, format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// ValidateServe adds the checks needed before starting the HTTP server.
func (cfg Config) ValidateServe() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func containsFold(values []string, want string) bool {
	for _, value := range values {
		if normalize(value) == want {
			return true
		}
	}
	return false
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zerolog":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(provider, format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	switch provider {
	case "gologger":
		return format == "json" || format == "console" || format == "pretty"
	case "zerolog":
		return format == "json" || format == "pretty"
	default:
		return format == "text"
	}
}
