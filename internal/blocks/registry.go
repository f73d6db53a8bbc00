package blocks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"
)

var (
	ErrInvalidDefinition = errors.New("blocks: block definition requires an id")
	ErrDuplicateBlock    = errors.New("blocks: block already registered")
)

// Registry stores block plugins keyed by id and slug.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]registered
	bySlug map[string]string
}

type registered struct {
	definition Definition
	block      Block
}

// NewRegistry constructs an empty block registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]registered),
		bySlug: make(map[string]string),
	}
}

// Register adds block. The definition slug is derived from the id when blank.
func (r *Registry) Register(block Block) error {
	if r == nil {
		return ErrInvalidDefinition
	}
	if block == nil {
		return ErrInvalidDefinition
	}
	def := block.Definition()
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		return ErrInvalidDefinition
	}
	def.Slug = registrySlug(def)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[def.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, def.ID)
	}
	if owner, exists := r.bySlug[def.Slug]; exists && def.Slug != "" {
		return fmt.Errorf("%w: slug %s used by %s", ErrDuplicateBlock, def.Slug, owner)
	}

	r.byID[def.ID] = registered{definition: def, block: block}
	if def.Slug != "" {
		r.bySlug[def.Slug] = def.ID
	}
	return nil
}

// MustRegister panics when Register fails. Intended for wiring built-in
// blocks at start-up.
func (r *Registry) MustRegister(blocks ...Block) {
	for _, block := range blocks {
		if err := r.Register(block); err != nil {
			panic(err)
		}
	}
}

// Get resolves a block by id or slug.
func (r *Registry) Get(idOrSlug string) (Block, Definition, bool) {
	if r == nil {
		return nil, Definition{}, false
	}
	key := strings.TrimSpace(idOrSlug)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.byID[key]; ok {
		return entry.block, entry.definition, true
	}
	if id, ok := r.bySlug[key]; ok {
		entry := r.byID[id]
		return entry.block, entry.definition, true
	}
	return nil, Definition{}, false
}

// List returns every definition sorted by id.
func (r *Registry) List() []Definition {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.byID))
	for _, entry := range r.byID {
		out = append(out, entry.definition)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func registrySlug(def Definition) string {
	candidate := strings.TrimSpace(def.Slug)
	if candidate == "" {
		candidate = def.ID
	}
	normalized, err := slug.Default().Normalize(candidate)
	if err != nil || normalized == "" {
		return candidate
	}
	return normalized
}
