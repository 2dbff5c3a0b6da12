// Package handler exposes the search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
)

const maxBodyBytes = 64 << 10

// Searcher runs one search for the served variant.
type Searcher interface {
	Search(ctx context.Context, req engine.Request) (*engine.Response, error)
	Variant() variant.Variant
}

// Tracker receives one event per answered search.
type Tracker interface {
	Track(ev analytics.SearchEvent)
}

// Handler serves the search API. Cache, tracker and metrics are optional.
type Handler struct {
	searcher Searcher
	corpus   *corpus.Corpus
	registry *variant.Registry
	cache    *cache.ResultCache
	tracker  Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Handler)

func WithCache(c *cache.ResultCache) Option { return func(h *Handler) { h.cache = c } }
func WithTracker(t Tracker) Option          { return func(h *Handler) { h.tracker = t } }
func WithMetrics(m *metrics.Metrics) Option { return func(h *Handler) { h.metrics = m } }

func New(s Searcher, c *corpus.Corpus, r *variant.Registry, opts ...Option) *Handler {
	h := &Handler{
		searcher: s,
		corpus:   c,
		registry: r,
		logger:   slog.Default().With("component", "search-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// searchParams is the POST body. Authors is comma separated like the GET
// parameter.
type searchParams struct {
	Query     string `json:"query"`
	Authors   string `json:"authors"`
	Published string `json:"published"`
}

// Search answers GET ?query=&authors=&published= and the same fields as a
// JSON POST body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var p searchParams
	switch r.Method {
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "reading request body failed")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &p); err != nil {
				h.writeError(w, http.StatusBadRequest, "request body must be JSON with query, authors and published")
				return
			}
		}
	default:
		q := r.URL.Query()
		p = searchParams{Query: q.Get("query"), Authors: q.Get("authors"), Published: q.Get("published")}
	}
	req := engine.Request{Query: p.Query, Names: engine.ParseNames(p.Authors), Period: p.Published}

	name := h.searcher.Variant().Name
	var (
		resp *engine.Response
		hit  bool
		err  error
	)
	if h.cache != nil {
		resp, hit, err = h.cache.GetOrCompute(ctx, name, req, func() (*engine.Response, error) {
			return h.searcher.Search(ctx, req)
		})
	} else {
		resp, err = h.searcher.Search(ctx, req)
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		logger.FromContext(ctx).Warn("search failed", "query", p.Query, "status", status, "error", err)
		h.writeError(w, status, errorMessage(err, status))
		return
	}

	took := time.Since(start)
	if h.metrics != nil {
		cacheStatus := "miss"
		if hit {
			cacheStatus = "hit"
		} else if h.cache == nil {
			cacheStatus = "disabled"
		}
		h.metrics.SearchLatency.WithLabelValues(name, cacheStatus).Observe(took.Seconds())
	}
	if h.tracker != nil {
		h.tracker.Track(analytics.SearchEvent{
			RequestID:   logger.RequestID(ctx),
			Variant:     name,
			Query:       p.Query,
			Names:       req.Names,
			Period:      p.Published,
			ResultCount: len(resp.Results),
			TopScore:    resp.TopScore(),
			LatencyMs:   took.Milliseconds(),
			CacheHit:    hit,
			Timestamp:   time.Now().UTC(),
		})
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// documentView is the full record of one abstract.
type documentView struct {
	IDoc        uint32   `json:"idoc"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	CategoryIDs []string `json:"catg_ids"`
	Published   string   `json:"published"`
	Summary     string   `json:"summary"`
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	idoc, err := strconv.ParseUint(r.PathValue("idoc"), 10, 32)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "idoc must be a non-negative integer")
		return
	}
	d, err := h.corpus.Get(uint32(idoc))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	h.writeJSON(w, http.StatusOK, documentView{
		IDoc:        d.DocIdx,
		ID:          d.ID,
		Title:       d.Title,
		Authors:     d.Authors,
		CategoryIDs: d.CategoryIDs,
		Published:   d.Published,
		Summary:     d.Summary,
	})
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	v := h.searcher.Variant()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"option":      v.Name,
		"dataset":     v.Dataset,
		"granularity": v.Granularity().String(),
		"metadata":    v.Metadata,
		"documents":   h.corpus.Len(),
	})
}

func (h *Handler) Variants(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"active":   h.searcher.Variant().Name,
		"variants": h.registry.List(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"hit_rate": rate,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func errorMessage(err error, status int) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid search request"
	case http.StatusServiceUnavailable:
		return "embedding service unavailable"
	case http.StatusGatewayTimeout:
		return "search timed out"
	default:
		return "search failed"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
