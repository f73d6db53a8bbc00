package themes

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Theme is an installed theme and the directory it lives in.
type Theme struct {
	bun.BaseModel `bun:"table:themes,alias:t"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Name        string         `bun:"name,notnull,unique" json:"name"`
	Description *string        `bun:"description" json:"description,omitempty"`
	Version     string         `bun:"version,notnull" json:"version"`
	Author      *string        `bun:"author" json:"author,omitempty"`
	ThemePath   string         `bun:"theme_path,notnull" json:"theme_path"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// RegisterThemeInput is the payload accepted by Service.RegisterTheme.
type RegisterThemeInput struct {
	Name        string
	Description *string
	Version     string
	Author      *string
	ThemePath   string
	Metadata    map[string]any
}

func cloneTheme(src *Theme) *Theme {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Description = cloneString(src.Description)
	cloned.Author = cloneString(src.Author)
	cloned.Metadata = cloneMetadata(src.Metadata)
	return &cloned
}

func cloneThemeSlice(src []*Theme) []*Theme {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Theme, len(src))
	for i, theme := range src {
		out[i] = cloneTheme(theme)
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

func cloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
