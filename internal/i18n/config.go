package i18n

// Config lists the locales the translator knows about.
type Config struct {
	DefaultLocale string   `json:"default_locale" yaml:"default_locale"`
	Locales       []string `json:"locales" yaml:"locales"`
}

func FromModuleConfig(defaultLocale string, locales []string) Config {
	return Config{
		DefaultLocale: defaultLocale,
		Locales:       locales,
	}
}

func (c Config) withDefaults(fallback Config) Config {
	if c.DefaultLocale == "" {
		c.DefaultLocale = fallback.DefaultLocale
	}
	if len(c.Locales) == 0 {
		c.Locales = append([]string(nil), fallback.Locales...)
	}
	return c
}
