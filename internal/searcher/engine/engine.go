// Package engine runs the search pipeline of one resolved variant:
// analyze, retrieve, rank, threshold, summarize.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/retriever"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/summarizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/variant"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/tracing"
)

// DefaultTopK is the number of hits returned per query.
const DefaultTopK = 10

// Request is one search. Blank Query, Period and Names entries count as
// absent.
type Request struct {
	Query  string   `json:"query"`
	Names  []string `json:"authors,omitempty"`
	Period string   `json:"published,omitempty"`
}

// Result is one hit. ID is the docIdx.
type Result struct {
	ID      uint32             `json:"id"`
	Score   float64            `json:"score"`
	Summary summarizer.Summary `json:"summary"`
}

// Response is the outcome of a search. Total counts the hits that passed the
// score threshold before truncation to the top k.
type Response struct {
	Variant string   `json:"variant"`
	Total   int      `json:"total"`
	TookMs  int64    `json:"took_ms"`
	Results []Result `json:"results"`
}

// TopScore returns the best score, or 0 without results.
func (r *Response) TopScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].Score
}

// Engine is immutable after New and safe for concurrent searches.
type Engine struct {
	c       *variant.Components
	naive   *summarizer.Naive
	topK    int
	metrics *metrics.Metrics
	tracer  *tracing.Tracer
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK overrides DefaultTopK.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithSummaryLimit sets the token budget of summaries produced for
// metadata-only searches.
func WithSummaryLimit(limit int) Option {
	return func(e *Engine) {
		e.naive = summarizer.NewNaive(e.c.Corpus, limit)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// New wraps resolved components.
func New(c *variant.Components, opts ...Option) (*Engine, error) {
	if c == nil || c.Analyzer == nil || c.Retriever == nil || c.Ranker == nil || c.Summarizer == nil || c.Corpus == nil {
		return nil, fmt.Errorf("engine needs fully resolved components")
	}
	e := &Engine{
		c:      c,
		naive:  summarizer.NewNaive(c.Corpus, summarizer.DefaultLimit),
		topK:   DefaultTopK,
		logger: slog.Default().With("component", "search-engine", "variant", c.Variant.Name),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Variant returns the served variant.
func (e *Engine) Variant() variant.Variant {
	return e.c.Variant
}

// Components returns the resolved components.
func (e *Engine) Components() *variant.Components {
	return e.c
}

// Search runs the pipeline. An empty candidate set is a successful empty
// response; analysis and shape errors fail the query without retry.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "search", logger.RequestID(ctx))
	defer e.tracer.Finish(span)
	span.SetAttr("variant", e.c.Variant.Name)

	p := &pipeline{engine: e, req: normalise(req), state: StateIdle}
	resp, err := p.run(ctx)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		e.logger.Error("search failed", "state", p.state, "error", err)
	case len(resp.Results) == 0:
		outcome = "empty"
	}
	if e.metrics != nil {
		e.metrics.SearchQueriesTotal.WithLabelValues(e.c.Variant.Name, outcome).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", p.state, err)
	}

	resp.TookMs = time.Since(start).Milliseconds()
	if e.metrics != nil {
		e.metrics.SearchResultsCount.WithLabelValues(e.c.Variant.Name).Observe(float64(len(resp.Results)))
	}
	span.SetAttr("results", len(resp.Results))
	logger.FromContext(ctx).Debug("search completed",
		"variant", e.c.Variant.Name,
		"total", resp.Total,
		"returned", len(resp.Results),
		"took_ms", resp.TookMs,
	)
	return resp, nil
}

// ParseNames splits a comma-separated author list, trimming entries and
// dropping blanks. It returns nil when nothing remains.
func ParseNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func normalise(req Request) Request {
	out := Request{
		Query:  strings.TrimSpace(req.Query),
		Period: strings.TrimSpace(req.Period),
	}
	for _, name := range req.Names {
		if name = strings.TrimSpace(name); name != "" {
			out.Names = append(out.Names, name)
		}
	}
	return out
}

// State is the position of one query in the pipeline.
type State int

const (
	StateIdle State = iota
	StateAnalyzed
	StateRetrieved
	StateRanked
	StateSummarized
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzed:
		return "analyzed"
	case StateRetrieved:
		return "retrieved"
	case StateRanked:
		return "ranked"
	case StateSummarized:
		return "summarized"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// pipeline is the request-local state of one search.
type pipeline struct {
	engine *Engine
	req    Request
	state  State

	analysis   *query.Analysis
	candidates retriever.Candidates
	ranked     []query.Scored
	total      int
	results    []Result
}

func (p *pipeline) run(ctx context.Context) (*Response, error) {
	if p.req.Query == "" && p.req.Period == "" && len(p.req.Names) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "a query, authors or a publication period is required")
	}
	steps := []struct {
		name string
		next State
		fn   func(context.Context) error
	}{
		{"analyze", StateAnalyzed, p.analyze},
		{"retrieve", StateRetrieved, p.retrieve},
		{"rank", StateRanked, p.rank},
		{"summarize", StateSummarized, p.summarize},
	}
	for _, step := range steps {
		if p.state == StateDone {
			break
		}
		if err := p.timed(ctx, step.name, step.fn); err != nil {
			return nil, err
		}
		if p.state != StateDone {
			p.state = step.next
		}
	}
	p.state = StateDone
	results := p.results
	if results == nil {
		results = []Result{}
	}
	return &Response{Variant: p.engine.c.Variant.Name, Total: p.total, Results: results}, nil
}

func (p *pipeline) timed(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx, span := tracing.StartChildSpan(ctx, stage)
	start := time.Now()
	err := fn(ctx)
	span.End()
	if m := p.engine.metrics; m != nil {
		m.StageDuration.WithLabelValues(p.engine.c.Variant.Name, stage).Observe(time.Since(start).Seconds())
	}
	return err
}

func (p *pipeline) analyze(ctx context.Context) error {
	if p.req.Query == "" {
		return nil
	}
	a, err := p.engine.c.Analyzer.Analyze(ctx, p.req.Query)
	if err != nil {
		return fmt.Errorf("analyzing query: %w", err)
	}
	p.analysis = a
	return nil
}

func (p *pipeline) retrieve(ctx context.Context) error {
	c, tr, err := p.engine.c.Retriever.Retrieve(retriever.Request{
		Analysis: p.analysis,
		Names:    p.req.Names,
		Period:   p.req.Period,
	})
	if err != nil {
		return fmt.Errorf("retrieving: %w", err)
	}
	if m := p.engine.metrics; m != nil {
		for _, s := range tr.Stages {
			m.StageCandidates.WithLabelValues(p.engine.c.Variant.Name, s.Stage).Observe(float64(s.Count))
		}
	}
	span := tracing.SpanFromContext(ctx)
	span.SetAttr("candidates", len(c.IDs))
	span.SetAttr("fallback", tr.Fallback)
	p.candidates = c
	if c.Empty() {
		p.state = StateDone
	}
	return nil
}

func (p *pipeline) rank(_ context.Context) error {
	// Without a query there is nothing to score against: documents keep
	// their index order with score 0.
	if p.analysis == nil {
		ids := append([]uint32(nil), p.candidates.IDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		p.total = len(ids)
		if len(ids) > p.engine.topK {
			ids = ids[:p.engine.topK]
		}
		p.ranked = make([]query.Scored, len(ids))
		for i, id := range ids {
			p.ranked[i] = query.Scored{ID: id}
		}
		return nil
	}

	ranked, err := p.engine.c.Ranker.Rank(p.analysis.Vector, p.candidates)
	if err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	threshold := p.engine.c.Variant.Threshold
	kept := ranked[:0]
	for _, r := range ranked {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	p.total = len(kept)
	if len(kept) > p.engine.topK {
		kept = kept[:p.engine.topK]
	}
	p.ranked = kept
	return nil
}

func (p *pipeline) summarize(_ context.Context) error {
	s := p.engine.c.Summarizer
	if p.analysis == nil {
		s = p.engine.naive
	}
	var v vector.Vector
	if s.UsesQuery() && p.analysis != nil {
		v = p.analysis.Vector
	}
	p.results = make([]Result, 0, len(p.ranked))
	for _, r := range p.ranked {
		sum, err := s.Summarize(r.ID, v)
		if err != nil {
			return fmt.Errorf("summarizing document %d: %w", r.ID, err)
		}
		p.results = append(p.results, Result{ID: r.ID, Score: r.Score, Summary: sum})
	}
	return nil
}
