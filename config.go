package drupier

import "github.com/tothom/drupier-demo/internal/runtimeconfig"

var (
	ErrThemeReadmeFileRequired  = runtimeconfig.ErrThemeReadmeFileRequired
	ErrThemeDefaultRequired     = runtimeconfig.ErrThemeDefaultRequired
	ErrDefaultLocaleRequired    = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnlisted    = runtimeconfig.ErrDefaultLocaleUnlisted
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheDriverUnknown       = runtimeconfig.ErrCacheDriverUnknown
	ErrCacheRedisAddrRequired   = runtimeconfig.ErrCacheRedisAddrRequired
	ErrMarkdownAlternateInvalid = runtimeconfig.ErrMarkdownAlternateInvalid
	ErrHTTPAddrRequired         = runtimeconfig.ErrHTTPAddrRequired
	ErrHTTPMaxAgeInvalid        = runtimeconfig.ErrHTTPMaxAgeInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ThemeConfig    = runtimeconfig.ThemeConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	I18NConfig     = runtimeconfig.I18NConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
