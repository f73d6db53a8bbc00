package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tothom/drupier-demo"
	"github.com/tothom/drupier-demo/internal/di"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

// EnvPrefix namespaces environment overrides, e.g. DRUPIER_HTTP_ADDR.
const EnvPrefix = "DRUPIER"

// Options captures configuration for CLI bootstraps.
type Options struct {
	LoggerProvider interfaces.LoggerProvider
}

// NewViper returns a viper instance seeded with the module defaults and
// bound to DRUPIER_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, drupier.DefaultConfig())
	return v
}

// LoadConfig reads path (when set) into v and decodes the merged settings.
// Without an explicit path an optional drupier.yaml in the working
// directory is used.
func LoadConfig(v *viper.Viper, path string) (drupier.Config, error) {
	if v == nil {
		v = NewViper()
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		v.SetConfigFile(trimmed)
	} else {
		v.SetConfigName("drupier")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if strings.TrimSpace(path) != "" || !errors.As(err, &notFound) {
			return drupier.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := drupier.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return drupier.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// BuildModule constructs a drupier module from cfg.
func BuildModule(cfg drupier.Config, opts Options) (*drupier.Module, error) {
	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := drupier.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise drupier module: %w", err)
	}
	return module, nil
}

func setDefaults(v *viper.Viper, cfg drupier.Config) {
	v.SetDefault("theme.base_path", cfg.Theme.BasePath)
	v.SetDefault("theme.default_theme", cfg.Theme.DefaultTheme)
	v.SetDefault("theme.readme_file", cfg.Theme.ReadmeFile)
	v.SetDefault("theme.discover", cfg.Theme.Discover)

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.safe_mode", cfg.Markdown.SafeMode)
	v.SetDefault("markdown.strip_front_matter", cfg.Markdown.StripFrontMatter)
	v.SetDefault("markdown.alternate", cfg.Markdown.Alternate)
	v.SetDefault("markdown.terminal_style", cfg.Markdown.TerminalStyle)
	v.SetDefault("markdown.terminal_width", cfg.Markdown.TerminalWidth)

	v.SetDefault("i18n.default_locale", cfg.I18N.DefaultLocale)
	v.SetDefault("i18n.locales", cfg.I18N.Locales)
	v.SetDefault("i18n.file", cfg.I18N.File)

	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)

	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.redis_db", cfg.Cache.RedisDB)
	v.SetDefault("cache.default_ttl", cfg.Cache.DefaultTTL)

	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.permanent_max_age", cfg.HTTP.PermanentMaxAge)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
	v.SetDefault("logging.file", cfg.Logging.File)
}
