package themes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover registers every directory directly under baseDir that carries a
// theme.json or Drupal info file. Themes that are already registered are returned as
// they are stored. Broken manifests are logged and reported in the joined
// error without stopping the scan.
func (s *service) Discover(ctx context.Context, baseDir string) ([]*Theme, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("themes: read base dir %q: %w", baseDir, err)
	}

	logger := s.logger.WithContext(ctx)
	var (
		found []*Theme
		errs  []error
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(baseDir, entry.Name())
		if !HasManifest(dir) {
			continue
		}

		input, err := LoadThemeDirectory(dir)
		if err != nil {
			logger.Warn("themes.discover.manifest_invalid", "theme_path", dir, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}

		theme, err := s.RegisterTheme(ctx, input)
		if errors.Is(err, ErrThemeExists) {
			theme, err = s.GetThemeByName(ctx, input.Name)
		}
		if err != nil {
			logger.Warn("themes.discover.register_failed", "theme_path", dir, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}
		found = append(found, theme)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found, errors.Join(errs...)
}
