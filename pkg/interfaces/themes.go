package interfaces

import "context"

// ThemePathResolver returns the installation directory of a theme.
type ThemePathResolver interface {
	ThemePath(ctx context.Context, theme string) (string, error)
}

// ThemePathResolverFunc adapts a function into a ThemePathResolver.
type ThemePathResolverFunc func(ctx context.Context, theme string) (string, error)

// ThemePath calls f(ctx, theme).
func (f ThemePathResolverFunc) ThemePath(ctx context.Context, theme string) (string, error) {
	return f(ctx, theme)
}
