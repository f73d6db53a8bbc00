package render

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tothom/drupier-demo/internal/blocks"
	"github.com/tothom/drupier-demo/internal/i18n"
	"github.com/tothom/drupier-demo/pkg/testsupport"
)

type countingBlock struct {
	id     string
	maxAge int
	tags   []string
	builds atomic.Int32
}

func (b *countingBlock) Definition() blocks.Definition {
	return blocks.Definition{ID: b.id, AdminLabel: b.id}
}

func (b *countingBlock) Build(ctx context.Context) blocks.RenderResult {
	n := b.builds.Add(1)
	return blocks.RenderResult{
		Markup:      b.id + ":" + i18n.LocaleFromContext(ctx) + ":" + string(rune('0'+n)),
		CacheMaxAge: b.maxAge,
		CacheTags:   b.tags,
	}
}

func newPipeline(t *testing.T, bs ...blocks.Block) *Pipeline {
	t.Helper()
	registry := blocks.NewRegistry()
	for _, b := range bs {
		require.NoError(t, registry.Register(b))
	}
	return NewPipeline(registry, WithStorage(memoryStorage.New()))
}

func TestPipelineCachesPermanentResults(t *testing.T) {
	block := &countingBlock{id: "permanent", maxAge: blocks.CachePermanent}
	p := newPipeline(t, block)
	ctx := context.Background()

	first, err := p.Render(ctx, "permanent")
	require.NoError(t, err)
	assert.False(t, first.Hit)
	assert.Equal(t, "en", first.Locale)
	assert.True(t, first.Permanent())

	second, err := p.Render(ctx, "permanent")
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, first.Markup, second.Markup)
	assert.Equal(t, int32(1), block.builds.Load())
}

func TestPipelineNeverCachesMaxAgeZero(t *testing.T) {
	block := &countingBlock{id: "dynamic", maxAge: blocks.CacheNever, tags: []string{"theme:drupier"}}
	p := newPipeline(t, block)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := p.Render(ctx, "dynamic")
		require.NoError(t, err)
		assert.False(t, out.Hit)
		assert.Equal(t, []string{"theme:drupier"}, out.CacheTags)
	}
	assert.Equal(t, int32(3), block.builds.Load())

	data, err := p.store.Get(CacheKey("dynamic", "en"))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestPipelineCacheKeyIncludesLocale(t *testing.T) {
	block := &countingBlock{id: "localized", maxAge: blocks.CachePermanent}
	p := newPipeline(t, block)

	en, err := p.Render(context.Background(), "localized")
	require.NoError(t, err)
	es, err := p.Render(i18n.WithLocale(context.Background(), "es"), "localized")
	require.NoError(t, err)

	assert.Equal(t, "es", es.Locale)
	assert.NotEqual(t, en.Markup, es.Markup)
	assert.Equal(t, int32(2), block.builds.Load())
}

func TestPipelineInvalidateTags(t *testing.T) {
	tagged := &countingBlock{id: "tagged", maxAge: blocks.CachePermanent, tags: []string{"theme:drupier"}}
	other := &countingBlock{id: "other", maxAge: blocks.CachePermanent, tags: []string{"theme:olivero"}}
	logger := testsupport.NewRecordingLogger()
	registry := blocks.NewRegistry()
	registry.MustRegister(tagged, other)
	p := NewPipeline(registry, WithStorage(memoryStorage.New()), WithLogger(logger))
	ctx := context.Background()

	_, err := p.Render(ctx, "tagged")
	require.NoError(t, err)
	_, err = p.Render(ctx, "other")
	require.NoError(t, err)

	removed, err := p.InvalidateTags(ctx, "theme:drupier", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, ok := logger.Find("render.cache.invalidated")
	assert.True(t, ok)

	out, err := p.Render(ctx, "tagged")
	require.NoError(t, err)
	assert.False(t, out.Hit, "invalidated entry should be rebuilt")

	out, err = p.Render(ctx, "other")
	require.NoError(t, err)
	assert.True(t, out.Hit, "unrelated entry should survive")

	require.NoError(t, p.Purge(ctx))
	out, err = p.Render(ctx, "other")
	require.NoError(t, err)
	assert.False(t, out.Hit)
}

// flakyDeleteStorage fails Delete for the keys in failing.
type flakyDeleteStorage struct {
	fiber.Storage
	failing map[string]bool
}

func (s *flakyDeleteStorage) Delete(key string) error {
	if s.failing[key] {
		return errors.New("storage unavailable")
	}
	return s.Storage.Delete(key)
}

func TestPipelineInvalidateTagsKeepsIndexOnDeleteFailure(t *testing.T) {
	first := &countingBlock{id: "first", maxAge: blocks.CachePermanent, tags: []string{"theme:drupier"}}
	second := &countingBlock{id: "second", maxAge: blocks.CachePermanent, tags: []string{"theme:drupier"}}
	registry := blocks.NewRegistry()
	registry.MustRegister(first, second)
	store := &flakyDeleteStorage{
		Storage: memoryStorage.New(),
		failing: map[string]bool{CacheKey("first", "en"): true},
	}
	p := NewPipeline(registry, WithStorage(store))
	ctx := context.Background()

	_, err := p.Render(ctx, "first")
	require.NoError(t, err)
	_, err = p.Render(ctx, "second")
	require.NoError(t, err)

	removed, err := p.InvalidateTags(ctx, "theme:drupier")
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
	assert.Equal(t, 1, removed)

	out, err := p.Render(ctx, "second")
	require.NoError(t, err)
	assert.False(t, out.Hit, "deleted entry should be rebuilt")

	// the failed key is still indexed and goes once storage recovers
	store.failing = nil
	removed, err = p.InvalidateTags(ctx, "theme:drupier")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	out, err = p.Render(ctx, "first")
	require.NoError(t, err)
	assert.False(t, out.Hit)
}

func TestPipelineUnknownBlock(t *testing.T) {
	p := newPipeline(t)
	_, err := p.Render(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsBlockNotFound(err))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryNotFound))
}

func TestPipelineWithoutStorage(t *testing.T) {
	block := &countingBlock{id: "plain", maxAge: blocks.CachePermanent, tags: []string{"x"}}
	registry := blocks.NewRegistry()
	registry.MustRegister(block)
	p := NewPipeline(registry, WithDefaultLocale("ca"))

	out, err := p.Render(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, "ca", out.Locale)
	_, err = p.Render(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, int32(2), block.builds.Load())

	removed, err := p.InvalidateTags(context.Background(), "x")
	require.NoError(t, err)
	assert.Zero(t, removed)
	require.NoError(t, p.Purge(context.Background()))
}

func TestPipelineCanceledContext(t *testing.T) {
	p := newPipeline(t, &countingBlock{id: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Render(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineRedisStorage(t *testing.T) {
	mrs := miniredis.RunT(t)

	store, err := NewStorage(StorageConfig{Driver: DriverRedis, RedisAddr: mrs.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	permanent := &countingBlock{id: "marquee", maxAge: blocks.CachePermanent}
	timed := &countingBlock{id: "timed", maxAge: 120, tags: []string{"theme:drupier"}}
	registry := blocks.NewRegistry()
	registry.MustRegister(permanent, timed)
	p := NewPipeline(registry, WithStorage(store))
	ctx := context.Background()

	_, err = p.Render(ctx, "marquee")
	require.NoError(t, err)
	_, err = p.Render(ctx, "timed")
	require.NoError(t, err)

	assert.True(t, mrs.Exists(CacheKey("marquee", "en")))
	assert.Equal(t, time.Duration(0), mrs.TTL(CacheKey("marquee", "en")), "permanent entries never expire")
	assert.Equal(t, 120*time.Second, mrs.TTL(CacheKey("timed", "en")))

	// a fresh pipeline over the same redis sees the stored entry
	again := NewPipeline(registry, WithStorage(store))
	out, err := again.Render(ctx, "timed")
	require.NoError(t, err)
	assert.True(t, out.Hit)
	assert.Equal(t, []string{"theme:drupier"}, out.CacheTags)

	removed, err := again.InvalidateTags(ctx, "theme:drupier")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, mrs.Exists(CacheKey("timed", "en")))

	mrs.FastForward(121 * time.Second)
	assert.True(t, mrs.Exists(CacheKey("marquee", "en")))
}

func TestNewStorage(t *testing.T) {
	store, err := NewStorage(StorageConfig{})
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Close())

	store, err = NewStorage(StorageConfig{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = NewStorage(StorageConfig{Driver: DriverRedis})
	assert.Error(t, err)

	_, err = NewStorage(StorageConfig{Driver: "memcached"})
	assert.Error(t, err)
}
