package themes

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryThemeRepository keeps theme records in process, keyed by name.
type MemoryThemeRepository struct {
	mu      sync.RWMutex
	records map[string]*Theme
}

var _ ThemeRepository = (*MemoryThemeRepository)(nil)

func NewMemoryThemeRepository() *MemoryThemeRepository {
	return &MemoryThemeRepository{records: make(map[string]*Theme)}
}

func (r *MemoryThemeRepository) Insert(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, ErrThemeInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.records[theme.Name]; taken {
		return nil, ErrThemeExists
	}
	r.records[theme.Name] = cloneTheme(theme)
	return cloneTheme(theme), nil
}

func (r *MemoryThemeRepository) Replace(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, ErrThemeInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.lookupID(theme.ID)
	if current == nil {
		return nil, &NotFoundError{Key: theme.ID.String()}
	}
	if current.Name != theme.Name {
		if _, taken := r.records[theme.Name]; taken {
			return nil, ErrThemeExists
		}
		delete(r.records, current.Name)
	}

	stored := cloneTheme(theme)
	stored.CreatedAt = current.CreatedAt
	r.records[stored.Name] = stored
	return cloneTheme(stored), nil
}

func (r *MemoryThemeRepository) FindByID(_ context.Context, id uuid.UUID) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if theme := r.lookupID(id); theme != nil {
		return cloneTheme(theme), nil
	}
	return nil, &NotFoundError{Key: id.String()}
}

func (r *MemoryThemeRepository) FindByName(_ context.Context, name string) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	theme, ok := r.records[name]
	if !ok {
		return nil, &NotFoundError{Key: name}
	}
	return cloneTheme(theme), nil
}

func (r *MemoryThemeRepository) All(_ context.Context) ([]*Theme, error) {
	r.mu.RLock()
	out := make([]*Theme, 0, len(r.records))
	for _, theme := range r.records {
		out = append(out, cloneTheme(theme))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Theme) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// lookupID scans the records; a site only ever has a handful of themes.
func (r *MemoryThemeRepository) lookupID(id uuid.UUID) *Theme {
	for _, theme := range r.records {
		if theme.ID == id {
			return theme
		}
	}
	return nil
}
