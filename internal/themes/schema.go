package themes

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnsureSchema creates the themes table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return ErrThemeRepositoryRequired
	}
	if _, err := db.NewCreateTable().Model((*Theme)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("themes: create table: %w", err)
	}
	return nil
}
