package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileNearestRank(t *testing.T) {
	lat := make([]time.Duration, 100)
	for i := range lat {
		lat[i] = time.Duration(i+1) * time.Millisecond
	}
	assert.Equal(t, 50*time.Millisecond, percentile(lat, 50))
	assert.Equal(t, 99*time.Millisecond, percentile(lat, 99))
	assert.Equal(t, time.Millisecond, percentile(lat, 0))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestStatsSummarize(t *testing.T) {
	s := NewStats()
	s.Record(Outcome{Latency: 10 * time.Millisecond, Status: 200, Results: 3})
	s.Record(Outcome{Latency: 30 * time.Millisecond, Status: 200, CacheHit: true})
	s.Record(Outcome{Latency: 20 * time.Millisecond, Status: 504})
	s.Record(Outcome{Err: errors.New("refused")})

	sum := s.Summarize(2 * time.Second)
	assert.Equal(t, int64(4), sum.Total)
	assert.Equal(t, int64(2), sum.Succeeded)
	assert.Equal(t, int64(2), sum.Failed)
	assert.Equal(t, int64(1), sum.CacheHits)
	assert.Equal(t, int64(1), sum.Empty)
	assert.Equal(t, 2.0, sum.RPS)
	assert.Equal(t, 10*time.Millisecond, sum.Min)
	assert.Equal(t, 30*time.Millisecond, sum.Max)
	assert.Equal(t, 20*time.Millisecond, sum.Avg)
	assert.Equal(t, map[int]int64{200: 2, 504: 1}, sum.Codes)

	var buf bytes.Buffer
	sum.Print(&buf)
	assert.Contains(t, buf.String(), "504 Gateway Timeout: 1")
}

func TestDoSearchReadsResultsAndCacheHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "neural nets", r.URL.Query().Get("query"))
		assert.Equal(t, "Ada Lovelace", r.URL.Query().Get("authors"))
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write([]byte(`{"variant":"v","total":2,"results":[{"id":1},{"id":2}]}`))
	}))
	defer srv.Close()

	opts := options{baseURL: srv.URL, authors: "Ada Lovelace"}
	o := doSearch(context.Background(), srv.Client(), searchURL(opts, "neural nets"))
	require.NoError(t, o.Err)
	assert.Equal(t, http.StatusOK, o.Status)
	assert.True(t, o.CacheHit)
	assert.Equal(t, 2, o.Results)
}
