package handler

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/middleware"
)

// NewRouter mounts every route and wraps them, outermost first, in
// RequestID, CORS, Timeout and Metrics. A nil metrics or a zero timeout
// skips that layer.
//
//	GET|POST /api/v1/search
//	GET      /api/v1/documents/{idoc}
//	GET      /api/v1/info
//	GET      /api/v1/variants
//	GET      /api/v1/cache/stats
//	POST     /api/v1/cache/invalidate
//	GET      /health
//	GET      /ready
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents/{idoc}", h.Document)
	mux.HandleFunc("GET /api/v1/info", h.Info)
	mux.HandleFunc("GET /api/v1/variants", h.Variants)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health", checker.LiveHandler())
	mux.HandleFunc("GET /ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	if timeout > 0 {
		chain = middleware.Timeout(timeout)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	return middleware.RequestID(chain)
}
