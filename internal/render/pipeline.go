package render

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/gofiber/fiber/v2"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/internal/logging"
	"github.com/tothom/drupier-demo/pkg/interfaces"
)

const blockNotFoundCode = "BLOCK_NOT_FOUND"

// ErrBlockNotFound is returned when no registered block matches the
// requested id or slug.
var ErrBlockNotFound = goerrors.New("render: block not found", goerrors.CategoryNotFound).
	WithTextCode(blockNotFoundCode)

// IsBlockNotFound reports whether err is (a copy of) ErrBlockNotFound.
func IsBlockNotFound(err error) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == blockNotFoundCode
}

// Output is one rendered block as returned by the pipeline.
type Output struct {
	BlockID     string   `json:"block_id"`
	Locale      string   `json:"locale"`
	Markup      string   `json:"markup"`
	CacheMaxAge int      `json:"cache_max_age"`
	CacheTags   []string `json:"cache_tags,omitempty"`
	Hit         bool     `json:"-"`
}

// Permanent reports whether the output may be cached indefinitely.
func (o *Output) Permanent() bool {
	return o != nil && o.CacheMaxAge == blocks.CachePermanent
}

type cacheEntry struct {
	Markup      string   `json:"markup"`
	CacheMaxAge int      `json:"cache_max_age"`
	CacheTags   []string `json:"cache_tags,omitempty"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStorage sets the render cache backend. A nil storage disables caching.
func WithStorage(store fiber.Storage) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.Or(logger)
	}
}

// WithDefaultLocale sets the locale used when the context carries none.
func WithDefaultLocale(locale string) Option {
	return func(p *Pipeline) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			p.defaultLocale = trimmed
		}
	}
}

// Pipeline resolves blocks from a registry and caches cacheable results.
type Pipeline struct {
	registry      *blocks.Registry
	store         fiber.Storage
	logger        interfaces.Logger
	defaultLocale string

	mu      sync.Mutex
	byTag   map[string]map[string]struct{}
	keyTags map[string][]string
}

// NewPipeline constructs a pipeline over registry.
func NewPipeline(registry *blocks.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:      registry,
		logger:        logging.NoOp(),
		defaultLocale: "en",
		byTag:         make(map[string]map[string]struct{}),
		keyTags:       make(map[string][]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Registry returns the block registry the pipeline renders from.
func (p *Pipeline) Registry() *blocks.Registry {
	return p.registry
}

// CacheKey returns the storage key for a block rendered in locale.
func CacheKey(blockID, locale string) string {
	return "render:" + blockID + ":" + locale
}

// Render builds the block identified by idOrSlug, serving it from the cache
// when a stored entry exists. The locale comes from the context.
func (p *Pipeline) Render(ctx context.Context, idOrSlug string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	block, def, ok := p.registry.Get(idOrSlug)
	if !ok {
		return nil, ErrBlockNotFound.Clone().WithMetadata(map[string]any{"block": idOrSlug})
	}

	locale := i18n.LocaleFromContext(ctx)
	if locale == "" {
		locale = p.defaultLocale
		ctx = i18n.WithLocale(ctx, locale)
	}
	key := CacheKey(def.ID, locale)
	logger := logging.WithBlockContext(p.logger, def.ID, "", "").WithContext(ctx)

	if entry, hit := p.lookup(key, logger); hit {
		logger.Debug("render.cache.hit", "key", key)
		return &Output{
			BlockID:     def.ID,
			Locale:      locale,
			Markup:      entry.Markup,
			CacheMaxAge: entry.CacheMaxAge,
			CacheTags:   entry.CacheTags,
			Hit:         true,
		}, nil
	}

	result := block.Build(ctx)
	out := &Output{
		BlockID:     def.ID,
		Locale:      locale,
		Markup:      result.Markup,
		CacheMaxAge: result.CacheMaxAge,
		CacheTags:   append([]string(nil), result.CacheTags...),
	}

	if p.store != nil && result.Cacheable() {
		p.save(key, result, logger)
	}
	return out, nil
}

// InvalidateTags drops every cached entry carrying one of tags and returns
// how many entries were removed. Keys whose delete fails stay indexed so a
// later call can retry them.
//
// Only stored renders are indexed, so the index serves tagged blocks with a
// non-zero max-age. The built-in blocks never populate it: the readme block
// is never stored and the marquee carries no tags.
func (p *Pipeline) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	if p.store == nil {
		return 0, nil
	}

	p.mu.Lock()
	keys := make(map[string]struct{})
	for _, tag := range tags {
		for key := range p.byTag[strings.TrimSpace(tag)] {
			keys[key] = struct{}{}
		}
	}
	p.mu.Unlock()

	var errs []error
	removed := 0
	for key := range keys {
		if err := p.store.Delete(key); err != nil {
			errs = append(errs, err)
			continue
		}
		p.mu.Lock()
		p.unindexLocked(key)
		p.mu.Unlock()
		removed++
	}
	if len(errs) > 0 {
		return removed, goerrors.Wrap(errs[0], goerrors.CategoryExternal, "render: invalidate cache entries").
			WithMetadata(map[string]any{"failed": len(errs)})
	}

	p.logger.WithContext(ctx).Info("render.cache.invalidated", "tags", tags, "entries", removed)
	return removed, nil
}

// Purge empties the render cache.
func (p *Pipeline) Purge(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	p.mu.Lock()
	p.byTag = make(map[string]map[string]struct{})
	p.keyTags = make(map[string][]string)
	p.mu.Unlock()

	if err := p.store.Reset(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "render: purge cache")
	}
	p.logger.WithContext(ctx).Info("render.cache.purged")
	return nil
}

func (p *Pipeline) lookup(key string, logger interfaces.Logger) (cacheEntry, bool) {
	if p.store == nil {
		return cacheEntry{}, false
	}
	data, err := p.store.Get(key)
	if err != nil {
		logger.Warn("render.cache.read_failed", "key", key, "error", err)
		return cacheEntry{}, false
	}
	if len(data) == 0 {
		return cacheEntry{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.Warn("render.cache.decode_failed", "key", key, "error", err)
		return cacheEntry{}, false
	}
	// entries written by another process are indexed on first read
	p.index(key, entry.CacheTags)
	return entry, true
}

func (p *Pipeline) save(key string, result blocks.RenderResult, logger interfaces.Logger) {
	data, err := json.Marshal(cacheEntry{
		Markup:      result.Markup,
		CacheMaxAge: result.CacheMaxAge,
		CacheTags:   result.CacheTags,
	})
	if err != nil {
		logger.Warn("render.cache.encode_failed", "key", key, "error", err)
		return
	}

	var exp time.Duration
	if result.CacheMaxAge > 0 {
		exp = time.Duration(result.CacheMaxAge) * time.Second
	}
	if err := p.store.Set(key, data, exp); err != nil {
		logger.Warn("render.cache.write_failed", "key", key, "error", err)
		return
	}
	p.index(key, result.CacheTags)
	logger.Debug("render.cache.stored", "key", key, "max_age", result.CacheMaxAge)
}

func (p *Pipeline) index(key string, tags []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.unindexLocked(key)
	if len(tags) == 0 {
		return
	}
	for _, tag := range tags {
		set := p.byTag[tag]
		if set == nil {
			set = make(map[string]struct{})
			p.byTag[tag] = set
		}
		set[key] = struct{}{}
	}
	p.keyTags[key] = append([]string(nil), tags...)
}

func (p *Pipeline) unindexLocked(key string) {
	for _, tag := range p.keyTags[key] {
		if set := p.byTag[tag]; set != nil {
			delete(set, key)
			if len(set) == 0 {
				delete(p.byTag, tag)
			}
		}
	}
	delete(p.keyTags, key)
}
