package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/health"
)

type fakeSearcher struct {
	mu    sync.Mutex
	v     variant.Variant
	reqs  []engine.Request
	resp  *engine.Response
	err   error
	calls int
}

func (s *fakeSearcher) Search(_ context.Context, req engine.Request) (*engine.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *fakeSearcher) Variant() variant.Variant { return s.v }

type recordingTracker struct {
	events []analytics.SearchEvent
}

func (t *recordingTracker) Track(ev analytics.SearchEvent) { t.events = append(t.events, ev) }

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.data))
	m.data = make(map[string][]byte)
	return n, nil
}

func newTestServer(t *testing.T, s *fakeSearcher, opts ...Option) http.Handler {
	t.Helper()
	c := corpus.New("arxiv", []corpus.Document{
		{ID: "2101.00001", Title: "Graph Networks", Summary: "We study graphs.", Authors: []string{"Ada Lovelace"}, Published: "2021-01-01", CategoryIDs: []string{"cs.LG"}},
	})
	reg, err := variant.Load("")
	require.NoError(t, err)
	return NewRouter(New(s, c, reg, opts...), health.NewChecker(), nil, time.Second)
}

func defaultSearcher() *fakeSearcher {
	return &fakeSearcher{
		v: variant.Variant{Name: "arxiv-lemm-single-tfidf", Dataset: "arxiv"},
		resp: &engine.Response{
			Variant: "arxiv-lemm-single-tfidf",
			Total:   1,
			Results: []engine.Result{{ID: 0, Score: 0.82}},
		},
	}
}

func TestSearchGet(t *testing.T) {
	s := defaultSearcher()
	tracker := &recordingTracker{}
	srv := newTestServer(t, s, WithTracker(tracker))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=graph+networks&authors=Lovelace,+Turing&published=2020-01-01,", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp engine.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.82, resp.Results[0].Score)

	require.Len(t, s.reqs, 1)
	assert.Equal(t, engine.Request{Query: "graph networks", Names: []string{"Lovelace", "Turing"}, Period: "2020-01-01,"}, s.reqs[0])

	require.Len(t, tracker.events, 1)
	ev := tracker.events[0]
	assert.Equal(t, "arxiv-lemm-single-tfidf", ev.Variant)
	assert.Equal(t, 1, ev.ResultCount)
	assert.Equal(t, 0.82, ev.TopScore)
	assert.NotEmpty(t, ev.RequestID)
	assert.Equal(t, ev.RequestID, rec.Header().Get("X-Request-ID"))
}

func TestSearchPost(t *testing.T) {
	s := defaultSearcher()
	srv := newTestServer(t, s)

	body := strings.NewReader(`{"query":"","authors":"Lovelace","published":""}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/search", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.Request{Names: []string{"Lovelace"}}, s.reqs[0])

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchErrorsMapToStatus(t *testing.T) {
	s := defaultSearcher()
	s.err = apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "a query, authors or a publication period is required")
	srv := newTestServer(t, s)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "a query, authors or a publication period is required")

	s.err = apperrors.ErrUnavailable
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchUsesCache(t *testing.T) {
	s := defaultSearcher()
	rc := cache.New(&memStore{data: make(map[string][]byte)}, time.Minute, nil)
	srv := newTestServer(t, s, WithCache(rc))

	for range 2 {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=graphs", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, s.calls)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	assert.Contains(t, rec.Body.String(), `"hits":1`)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheEndpointsWhenDisabled(t *testing.T) {
	srv := newTestServer(t, defaultSearcher())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocument(t *testing.T) {
	srv := newTestServer(t, defaultSearcher())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2101.00001", doc["id"])
	assert.Equal(t, "We study graphs.", doc["summary"])

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInfoAndVariants(t *testing.T) {
	srv := newTestServer(t, defaultSearcher())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"option":"arxiv-lemm-single-tfidf"`)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/variants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Active   string            `json:"active"`
		Variants []json.RawMessage `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "arxiv-lemm-single-tfidf", body.Active)
	assert.Len(t, body.Variants, 19)
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, defaultSearcher())
	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
