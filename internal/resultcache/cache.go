package resultcache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/explainify/explainify-server-go/internal/cache"
	"github.com/explainify/explainify-server-go/internal/config"
	"github.com/explainify/explainify-server-go/internal/domain/explain"
)

// ErrCacheDisabled is returned when the cache is not enabled.
var ErrCacheDisabled = errors.New("result cache disabled")

type cacheBackend int

const (
	cacheBackendMemory cacheBackend = iota
	cacheBackendValkey
)

// Entry is one cached explanation result.
type Entry struct {
	Level    explain.Level    `json:"level"`
	Document explain.Document `json:"document"`
	Model    string           `json:"model,omitempty"`
	CachedAt time.Time        `json:"cached_at"`
}

// Cache stores explanation results keyed by level and input text. It is
// backed by Valkey when enabled, falling back to an in-process TTL cache.
type Cache struct {
	client  valkey.Client
	cfg     *config.Config
	backend cacheBackend
	memory  *cache.TTLCache[string, Entry]
}

// NewCache creates a result cache according to the configuration.
func NewCache(cfg *config.Config) (*Cache, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if !cfg.ResultCache.Enabled {
		if cfg.ResultCache.Required {
			return nil, errors.New("result cache required but disabled")
		}
		return newMemoryCache(cfg), nil
	}

	conn, err := parseCacheURL(cfg.ResultCache.URL)
	if err != nil {
		return nil, fmt.Errorf("parse result cache url: %w", err)
	}

	var tlsConfig *tls.Config
	if conn.useTLS {
		host, _, splitErr := net.SplitHostPort(conn.addr)
		if splitErr != nil {
			return nil, fmt.Errorf("parse result cache addr: %w", splitErr)
		}
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		TLSConfig:    tlsConfig,
		Username:     conn.username,
		Password:     conn.password,
		InitAddress:  []string{conn.addr},
		SelectDB:     conn.selectDB,
		DisableCache: cfg.ResultCache.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}

	return &Cache{
		client:  client,
		cfg:     cfg,
		backend: cacheBackendValkey,
	}, nil
}

func newMemoryCache(cfg *config.Config) *Cache {
	ttl := time.Duration(cfg.ResultCache.TTLMinutes) * time.Minute
	return &Cache{
		cfg:     cfg,
		backend: cacheBackendMemory,
		memory:  cache.NewTTLCache[string, Entry](cfg.ResultCache.MemoryMax, ttl),
	}
}

// Key derives the cache key for a level and verbatim input text.
func Key(level explain.Level, text string) string {
	h := sha256.New()
	h.Write([]byte(level))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "explain:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached entry for the key, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, error) {
	if c == nil {
		return nil, ErrCacheDisabled
	}
	if c.backend == cacheBackendMemory {
		entry, ok := c.memory.Get(key)
		if !ok {
			return nil, nil
		}
		return &entry, nil
	}

	cmd := c.client.B().Get().Key(key).Build()
	raw, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached result: %w", err)
	}

	data, err := decompressZstd(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	return &entry, nil
}

// Set stores an entry under the key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, entry Entry) error {
	if c == nil {
		return ErrCacheDisabled
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now()
	}

	if c.backend == cacheBackendMemory {
		c.memory.Set(key, entry)
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	compressed, err := compressZstd(data)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}

	cmd := c.client.B().Set().Key(key).Value(valkey.BinaryString(compressed)).Ex(c.ttl()).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set cached result: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil {
		return ErrCacheDisabled
	}
	if c.backend == cacheBackendMemory {
		c.memory.Delete(key)
		return nil
	}

	cmd := c.client.B().Del().Key(key).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("delete cached result: %w", err)
	}
	return nil
}

// Ping verifies the Valkey connection. The memory backend always succeeds.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return ErrCacheDisabled
	}
	if c.backend == cacheBackendMemory {
		return nil
	}

	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping valkey: %w", err)
	}
	return nil
}

// Close closes the Valkey connection.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	if c.backend == cacheBackendValkey && c.client != nil {
		c.client.Close()
	}
}

func (c *Cache) ttl() time.Duration {
	return time.Duration(c.cfg.ResultCache.TTLMinutes) * time.Minute
}
