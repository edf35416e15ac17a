package resultcache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/domain/explain"
)

func newTestCache(t *testing.T) *Cache {
	mini := miniredis.RunT(t)
	cfg := &config.Config{
		ResultCache: config.ResultCacheConfig{
			URL:          "redis://" + mini.Addr(),
			Enabled:      true,
			DisableCache: true,
			TTLMinutes:   1,
			MemoryMax:    10,
		},
	}
	c, err := NewCache(cfg)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
		mini.Close()
	})
	return c
}

func TestNewCacheRequiredButDisabled(t *testing.T) {
	cfg := &config.Config{
		ResultCache: config.ResultCacheConfig{Enabled: false, Required: true},
	}
	if _, err := NewCache(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := Key(explain.LevelBeginner, "What is DNS?")
	entry := Entry{
		Level: explain.LevelBeginner,
		Document: explain.Document{
			Summary:     "DNS maps names to addresses.",
			Explanation: "It is the internet phone book.",
			KeyPoints:   []string{"names", "addresses"},
		},
		Model: "gemini-2.5-flash",
	}

	if err := c.Set(ctx, key, entry); err != nil {
		t.Fatalf("set: %v", err)
	}

	loaded, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil {
		t.Fatalf("expected cache hit")
	}
	if loaded.Document.Summary != entry.Document.Summary {
		t.Fatalf("unexpected summary: %q", loaded.Document.Summary)
	}
	if len(loaded.Document.KeyPoints) != 2 {
		t.Fatalf("unexpected key points: %v", loaded.Document.KeyPoints)
	}
	if loaded.CachedAt.IsZero() {
		t.Fatalf("expected cached_at to be set")
	}
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)

	loaded, err := c.Get(context.Background(), Key(explain.LevelAdvanced, "missing"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected miss, got %+v", loaded)
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := Key(explain.LevelIntermediate, "ephemeral")
	if err := c.Set(ctx, key, Entry{Level: explain.LevelIntermediate}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	loaded, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryFallback(t *testing.T) {
	cfg := &config.Config{
		ResultCache: config.ResultCacheConfig{Enabled: false, TTLMinutes: 1, MemoryMax: 10},
	}
	c, err := NewCache(cfg)
	if err != nil {
		t.Fatalf("expected memory cache, got error: %v", err)
	}
	ctx := context.Background()

	key := Key(explain.LevelBeginner, "in memory")
	if err := c.Set(ctx, key, Entry{Level: explain.LevelBeginner}); err != nil {
		t.Fatalf("set: %v", err)
	}
	loaded, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil || loaded.Level != explain.LevelBeginner {
		t.Fatalf("unexpected entry: %+v", loaded)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestKeyIsDeterministicAndLevelScoped(t *testing.T) {
	a := Key(explain.LevelBeginner, "same text")
	b := Key(explain.LevelBeginner, "same text")
	if a != b {
		t.Fatalf("expected deterministic keys")
	}
	if a == Key(explain.LevelAdvanced, "same text") {
		t.Fatalf("expected level to affect the key")
	}
	if a == Key(explain.LevelBeginner, "other text") {
		t.Fatalf("expected text to affect the key")
	}
}
