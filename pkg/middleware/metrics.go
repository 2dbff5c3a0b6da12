package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
)

// Metrics counts and times requests per route pattern. It reads r.Pattern
// after the handler returns, so it must sit inside the ServeMux's caller
// chain with the mux as next.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.HTTPRequestsInFlight.Inc()
			rec := &codeRecorder{ResponseWriter: w}
			began := time.Now()

			next.ServeHTTP(rec, r)

			elapsed := time.Since(began).Seconds()
			m.HTTPRequestsInFlight.Dec()
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Code())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed)
		})
	}
}

// codeRecorder remembers the first status code written.
type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	if c.code == 0 {
		c.code = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *codeRecorder) Write(b []byte) (int, error) {
	if c.code == 0 {
		c.code = http.StatusOK
	}
	return c.ResponseWriter.Write(b)
}

// Code is the status sent, or 200 when the handler wrote nothing.
func (c *codeRecorder) Code() int {
	if c.code == 0 {
		return http.StatusOK
	}
	return c.code
}

func (c *codeRecorder) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
