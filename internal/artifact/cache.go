package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
)

// Cache memoises decoded artifacts by key. Concurrent first loads of the
// same key share one read and one decode; failed loads are not cached.
// Entries are never evicted.
type Cache struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
	decodes atomic.Int64
}

// NewCache wraps store. m may be nil.
func NewCache(store Store, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "artifact-cache"),
		entries: make(map[string]any),
	}
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Decodes returns how many times a blob has been decoded.
func (c *Cache) Decodes() int64 {
	return c.decodes.Load()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Load returns the artifact under key, decoding it with decode on first use.
// kind labels metrics and logs.
func Load[T any](ctx context.Context, c *Cache, kind, key string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if v, ok := c.lookup(key); ok {
		c.observe(kind, "cached", 0)
		return v.(T), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		start := time.Now()
		data, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		decoded, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s artifact %s: %w", kind, key, err)
		}
		c.decodes.Add(1)
		c.mu.Lock()
		c.entries[key] = decoded
		c.mu.Unlock()
		took := time.Since(start)
		c.observe(kind, "loaded", took)
		c.logger.Info("artifact loaded", "kind", kind, "key", key, "bytes", len(data), "took", took)
		return decoded, nil
	})
	if err != nil {
		c.observe(kind, "error", 0)
		return zero, err
	}
	return v.(T), nil
}

// LoadJSON loads a JSON-encoded artifact into a fresh *T.
func LoadJSON[T any](ctx context.Context, c *Cache, kind, key string) (*T, error) {
	return Load(ctx, c, kind, key, func(data []byte) (*T, error) {
		out := new(T)
		if err := json.Unmarshal(data, out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// SaveJSON encodes v as JSON and writes it under key.
func SaveJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", key, err)
	}
	return store.Put(ctx, key, data)
}

func (c *Cache) observe(kind, outcome string, took time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ArtifactLoadsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == "loaded" {
		c.metrics.ArtifactLoadDuration.WithLabelValues(kind).Observe(took.Seconds())
	}
}
