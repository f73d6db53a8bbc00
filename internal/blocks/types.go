package blocks

import (
	"context"
	"sort"
	"strings"
)

// Cache max-age sentinels understood by the render pipeline.
const (
	CacheNever     = 0
	CachePermanent = -1
)

// RenderResult is the output of one block build. It is produced fresh per
// call and owned by the caller.
type RenderResult struct {
	Markup      string   `json:"markup"`
	CacheMaxAge int      `json:"cache_max_age"`
	CacheTags   []string `json:"cache_tags,omitempty"`
}

// Cacheable reports whether the result may be stored by a render cache.
func (r RenderResult) Cacheable() bool {
	return r.CacheMaxAge != CacheNever
}

// Definition describes a block plugin.
type Definition struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	AdminLabel string `json:"admin_label"`
	Category   string `json:"category"`
	// LabelKey and CategoryKey are translation keys for the label and
	// category; blank keys leave the English strings in place.
	LabelKey    string `json:"-"`
	CategoryKey string `json:"-"`
}

// Block is a renderable plugin registered with the Registry.
type Block interface {
	Definition() Definition
	Build(ctx context.Context) RenderResult
}

// MergeTags returns the sorted union of a and b without blanks.
func MergeTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
