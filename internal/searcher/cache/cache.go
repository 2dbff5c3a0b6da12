// Package cache keeps search responses in Redis keyed by the normalised
// request, and collapses concurrent identical searches into one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
)

const keyPrefix = "abstracts:search:"

// Store is the key-value backend; *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// ResultCache is safe for concurrent use. Backend failures degrade to
// misses and never fail a search.
type ResultCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *ResultCache {
	return &ResultCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Get returns the cached response for req under variant.
func (c *ResultCache) Get(ctx context.Context, variant string, req engine.Request) (*engine.Response, bool) {
	key := Key(variant, req)
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	if err != nil || !found {
		c.miss()
		return nil, false
	}
	var resp engine.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("cache entry undecodable", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	return &resp, true
}

func (c *ResultCache) Set(ctx context.Context, variant string, req engine.Request, resp *engine.Response) {
	key := Key(variant, req)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached response or runs compute once for all
// concurrent callers asking for the same key. hit reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	variant string,
	req engine.Request,
	compute func() (*engine.Response, error),
) (resp *engine.Response, hit bool, err error) {
	if resp, ok := c.Get(ctx, variant, req); ok {
		return resp, true, nil
	}
	val, err, _ := c.group.Do(Key(variant, req), func() (any, error) {
		resp, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, variant, req, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*engine.Response), false, nil
}

// Invalidate drops every cached response.
func (c *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("result cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *ResultCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Key hashes the normalised request: query whitespace-collapsed with its case
// kept (dense analyzers embed the text as typed), names lowercased and
// sorted, period trimmed.
func Key(variant string, req engine.Request) string {
	names := make([]string, 0, len(req.Names))
	for _, n := range req.Names {
		if n = strings.ToLower(strings.Join(strings.Fields(n), " ")); n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	raw := strings.Join([]string{
		variant,
		strings.Join(strings.Fields(req.Query), " "),
		strings.Join(names, ","),
		strings.ReplaceAll(req.Period, " ", ""),
	}, "\x1f")
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
