package i18n

import "context"

type localeKey struct{}

// WithLocale stores the request locale on ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeKey{}, normalizeLocale(locale))
}

// LocaleFromContext returns the locale stored by WithLocale, or "".
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}
