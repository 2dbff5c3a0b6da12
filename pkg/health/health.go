// Package health backs the /health and /ready endpoints. Liveness is static;
// readiness runs every registered dependency check and reports the worst
// status among them.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// severity orders statuses; unknown values count as down.
func (s Status) severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

type Check func(ctx context.Context) ComponentHealth

type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Checker holds the dependency checks of one process.
type Checker struct {
	// ReadyTimeout bounds one /ready evaluation.
	ReadyTimeout time.Duration

	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker() *Checker {
	return &Checker{ReadyTimeout: 5 * time.Second, checks: map[string]Check{}}
}

// Register installs check under name, replacing any previous one.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// Run evaluates all checks in parallel.
func (c *Checker) Run(ctx context.Context) Report {
	type result struct {
		name string
		ComponentHealth
	}

	c.mu.RLock()
	results := make(chan result, len(c.checks))
	for name, check := range c.checks {
		go func() {
			began := time.Now()
			h := check(ctx)
			h.Latency = time.Since(began).Round(time.Millisecond).String()
			results <- result{name, h}
		}()
	}
	n := len(c.checks)
	c.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, n),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for range n {
		r := <-results
		report.Components[r.name] = r.ComponentHealth
		if sev := r.Status.severity(); sev > report.Status.severity() {
			report.Status = [...]Status{StatusUp, StatusDegraded, StatusDown}[sev]
		}
	}
	return report
}

// PingCheck maps a ping error to down.
func PingCheck(ping func(context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

// FlagCheck is down with message pending until ready flips.
func FlagCheck(ready *atomic.Bool, pending string) Check {
	return func(context.Context) ComponentHealth {
		if !ready.Load() {
			return ComponentHealth{Status: StatusDown, Message: pending}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyHandler answers 503 unless every component is up.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), c.ReadyTimeout)
		defer cancel()
		report := c.Run(ctx)
		code := http.StatusOK
		if report.Status != StatusUp {
			code = http.StatusServiceUnavailable
		}
		respond(w, code, report)
	}
}

func respond(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
