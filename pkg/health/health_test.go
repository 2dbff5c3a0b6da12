package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFoldsWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("up", PingCheck(func(context.Context) error { return nil }))
	c.Register("slow", func(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDegraded} })

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	require.Len(t, report.Components, 2)

	c.Register("redis", PingCheck(func(context.Context) error { return errors.New("connection refused") }))
	report = c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "connection refused", report.Components["redis"].Message)
}

func TestReadyHandlerFollowsFlag(t *testing.T) {
	var ready atomic.Bool
	c := NewChecker()
	c.Register("artifacts", FlagCheck(&ready, "loading"))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready.Store(true)
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"artifacts"`)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownStatusCountsAsDown(t *testing.T) {
	c := NewChecker()
	c.Register("odd", func(context.Context) ComponentHealth { return ComponentHealth{Status: "starting"} })
	c.Register("fine", PingCheck(func(context.Context) error { return nil }))
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}
