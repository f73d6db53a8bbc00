package themes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ThemeRepository persists theme records. Names are unique.
type ThemeRepository interface {
	// Insert stores a new record and fails with ErrThemeExists when the name
	// is taken.
	Insert(ctx context.Context, theme *Theme) (*Theme, error)
	// Replace overwrites the version, path and descriptive fields of the
	// record with the same ID.
	Replace(ctx context.Context, theme *Theme) (*Theme, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Theme, error)
	FindByName(ctx context.Context, name string) (*Theme, error)
	// All returns every record ordered by name.
	All(ctx context.Context) ([]*Theme, error)
}

// NotFoundError is returned when a theme lookup misses.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "theme not found"
	}
	return fmt.Sprintf("theme %q not found", e.Key)
}

// Is lets errors.Is(err, ErrThemeNotFound) match repository misses.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrThemeNotFound
}
