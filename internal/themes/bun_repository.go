package themes

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const themeCacheNamespace = "theme"

// BunThemeRepository stores themes through go-repository-bun. When a cache
// service is supplied, reads go through go-repository-cache and every
// Replace drops the cached theme entries.
type BunThemeRepository struct {
	repo         repository.Repository[*Theme]
	cacheService cache.CacheService
}

var _ ThemeRepository = (*BunThemeRepository)(nil)

func NewBunThemeRepository(db *bun.DB) *BunThemeRepository {
	return NewBunThemeRepositoryWithCache(db, nil, nil)
}

func NewBunThemeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunThemeRepository {
	base := repository.MustNewRepository(db, repository.ModelHandlers[*Theme]{
		NewRecord:          func() *Theme { return &Theme{} },
		GetID:              func(theme *Theme) uuid.UUID { return theme.ID },
		SetID:              func(theme *Theme, id uuid.UUID) { theme.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(theme *Theme) string { return theme.Name },
	})

	out := &BunThemeRepository{repo: base}
	if cacheService != nil && serializer != nil {
		out.repo = repositorycache.New(base, cacheService, serializer)
		out.cacheService = cacheService
	}
	return out
}

func (r *BunThemeRepository) Insert(ctx context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, ErrThemeInvalid
	}
	if _, err := r.FindByName(ctx, theme.Name); err == nil {
		return nil, ErrThemeExists
	}
	record, err := r.repo.Create(ctx, theme)
	if err != nil {
		return nil, fmt.Errorf("themes: insert %q: %w", theme.Name, err)
	}
	return record, nil
}

func (r *BunThemeRepository) Replace(ctx context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, ErrThemeInvalid
	}
	record, err := r.repo.Update(ctx, theme,
		repository.UpdateByID(theme.ID.String()),
		repository.UpdateColumns(
			"name",
			"description",
			"version",
			"author",
			"theme_path",
			"metadata",
			"updated_at",
		),
	)
	if err != nil {
		return nil, translateRepositoryError(err, theme.ID.String())
	}
	if r.cacheService != nil {
		if err := r.cacheService.DeleteByPrefix(ctx, themeCacheNamespace+cache.KeySeparator); err != nil {
			return nil, fmt.Errorf("themes: flush cache: %w", err)
		}
	}
	return record, nil
}

func (r *BunThemeRepository) FindByID(ctx context.Context, id uuid.UUID) (*Theme, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, translateRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunThemeRepository) FindByName(ctx context.Context, name string) (*Theme, error) {
	record, err := r.repo.GetByIdentifier(ctx, name)
	if err != nil {
		return nil, translateRepositoryError(err, name)
	}
	return record, nil
}

func (r *BunThemeRepository) All(ctx context.Context) ([]*Theme, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.name ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("themes: list: %w", err)
	}
	return records, nil
}

func translateRepositoryError(err error, key string) error {
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("themes: %s: %w", key, err)
}
