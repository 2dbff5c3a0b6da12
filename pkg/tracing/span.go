// Package tracing times the stages of a query. A sampled query carries a
// root span in its context; each pipeline stage hangs a child off it, and the
// finished tree is written as a single structured log record.
//
// A nil *Span is valid and ignores every call, so untraced queries pay
// nothing beyond a context lookup.
package tracing

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
)

type spanKey struct{}

type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Attrs     map[string]any
	Children  []*Span

	mu sync.Mutex
}

func newSpan(name, traceID string) *Span {
	return &Span{Name: name, TraceID: traceID, StartTime: time.Now(), Attrs: map[string]any{}}
}

// Tracer samples queries for tracing.
type Tracer struct {
	enabled    bool
	sampleRate float64
	logger     *slog.Logger
}

// New builds a tracer. Sample rates outside (0,1] mean every query.
func New(cfg config.TracingConfig) *Tracer {
	t := &Tracer{
		enabled:    cfg.Enabled,
		sampleRate: cfg.SampleRate,
		logger:     slog.Default().With("component", "tracing"),
	}
	if t.sampleRate <= 0 || t.sampleRate > 1 {
		t.sampleRate = 1
	}
	return t
}

func (t *Tracer) sampled() bool {
	return t != nil && t.enabled && (t.sampleRate == 1 || rand.Float64() < t.sampleRate)
}

// Start opens a root span if the query is sampled; otherwise the span is nil.
func (t *Tracer) Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	if !t.sampled() {
		return ctx, nil
	}
	return StartSpan(ctx, name, traceID)
}

// Finish ends root and logs the whole tree.
func (t *Tracer) Finish(root *Span) {
	if root == nil {
		return
	}
	root.End()
	t.logger.Info("trace",
		"trace_id", root.TraceID,
		"total_ms", millis(root.Duration),
		slog.Group("spans", root.logAttrs()...),
	)
}

// StartSpan unconditionally opens a root span.
func StartSpan(ctx context.Context, name, traceID string) (context.Context, *Span) {
	s := newSpan(name, traceID)
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartChildSpan opens a child of the span carried by ctx. Outside a trace it
// returns ctx and a nil span.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	child := newSpan(name, parent.TraceID)
	parent.mu.Lock()
	parent.Children = append(parent.Children, child)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, child), child
}

func SpanFromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

func (s *Span) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Duration = time.Since(s.StartTime)
	s.mu.Unlock()
}

func (s *Span) SetAttr(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// logAttrs renders the span as a group keyed by its name, children nested.
func (s *Span) logAttrs() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	inner := make([]any, 0, 2+2*len(s.Attrs)+len(s.Children))
	inner = append(inner, "ms", millis(s.Duration))
	for k, v := range s.Attrs {
		inner = append(inner, k, v)
	}
	for _, c := range s.Children {
		inner = append(inner, c.logAttrs()...)
	}
	return []any{slog.Group(s.Name, inner...)}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
