package artifact

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, Key("arxiv", KindIndex, "missing.seg"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrArtifactMissing))

	key := Key("arxiv", KindVectors, "doc-tfidf.json")
	require.NoError(t, s.Put(ctx, key, []byte("first")))
	require.NoError(t, s.Put(ctx, key, []byte("second")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFSStore(t *testing.T) {
	s := NewFSStore(t.TempDir())
	storeContract(t, s)

	_, err := s.Get(context.Background(), "../outside")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir(), false)
	require.NoError(t, err)
	defer s.Close()
	storeContract(t, s)
}

type countingStore struct {
	Store
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, key)
}

func TestCacheLoadsEachKeyOnce(t *testing.T) {
	ctx := context.Background()
	backing := NewFSStore(t.TempDir())
	key := Key("medical", KindClusters, "jina.json")
	require.NoError(t, SaveJSON(ctx, backing, key, payload{Name: "jina", Count: 3}))

	store := &countingStore{Store: backing}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	cache := NewCache(store, m)

	var wg sync.WaitGroup
	results := make([]*payload, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := LoadJSON[payload](ctx, cache, KindClusters, key)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), cache.Decodes())
	assert.Equal(t, 1, cache.Len())
	for _, p := range results {
		assert.Same(t, results[0], p)
	}
	assert.Equal(t, "jina", results[0].Name)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	store := NewFSStore(t.TempDir())
	cache := NewCache(store, nil)
	key := Key("arxiv", KindVectorizer, "late.json")

	_, err := LoadJSON[payload](ctx, cache, KindVectorizer, key)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	require.NoError(t, SaveJSON(ctx, store, key, payload{Name: "late"}))
	p, err := LoadJSON[payload](ctx, cache, KindVectorizer, key)
	require.NoError(t, err)
	assert.Equal(t, "late", p.Name)
}

func TestCacheDecodeError(t *testing.T) {
	ctx := context.Background()
	store := NewFSStore(t.TempDir())
	key := Key("arxiv", KindVectors, "broken.json")
	require.NoError(t, store.Put(ctx, key, []byte("{")))

	_, err := LoadJSON[payload](ctx, NewCache(store, nil), KindVectors, key)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding vectors artifact")
}
