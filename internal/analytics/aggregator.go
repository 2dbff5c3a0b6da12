package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/kafka"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

// Stats is a point-in-time view of the aggregated events.
type Stats struct {
	TotalSearches    int64            `json:"total_searches"`
	ZeroResults      int64            `json:"zero_results"`
	ZeroResultRate   float64          `json:"zero_result_rate"`
	CacheHits        int64            `json:"cache_hits"`
	AvgLatencyMs     float64          `json:"avg_latency_ms"`
	P50LatencyMs     int64            `json:"p50_latency_ms"`
	P95LatencyMs     int64            `json:"p95_latency_ms"`
	AvgTopScore      float64          `json:"avg_top_score"`
	TopQueries       []QueryCount     `json:"top_queries"`
	ZeroResultTop    []QueryCount     `json:"zero_result_queries"`
	Variants         map[string]int64 `json:"variants"`
	QueriesPerMinute float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds SearchEvents into Stats. It is safe for concurrent use.
type Aggregator struct {
	mu          sync.Mutex
	total       int64
	zero        int64
	cacheHits   int64
	latencySum  int64
	scoreSum    float64
	latencies   []int64
	next        int
	queries     map[string]int64
	zeroQueries map[string]int64
	variants    map[string]int64
	topN        int
	started     time.Time
	logger      *slog.Logger
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		latencies:   make([]int64, 0, 1024),
		queries:     make(map[string]int64),
		zeroQueries: make(map[string]int64),
		variants:    make(map[string]int64),
		topN:        topN,
		started:     time.Now(),
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record adds one event.
func (a *Aggregator) Record(ev SearchEvent) {
	q := normaliseQuery(ev)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	a.variants[ev.Variant]++
	a.queries[q]++
	a.latencySum += ev.LatencyMs
	a.scoreSum += ev.TopScore
	if ev.CacheHit {
		a.cacheHits++
	}
	if ev.ResultCount == 0 {
		a.zero++
		a.zeroQueries[q]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, ev.LatencyMs)
	} else {
		a.latencies[a.next] = ev.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

// HandleMessage is the Kafka handler feeding Record. Undecodable messages
// are logged and skipped.
func (a *Aggregator) HandleMessage(_ context.Context, _, value []byte) error {
	ev, err := kafka.DecodeJSON[SearchEvent](value)
	if err != nil {
		a.logger.Warn("skipping undecodable search event", "error", err)
		return nil
	}
	a.Record(ev)
	return nil
}

func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{
		TotalSearches: a.total,
		ZeroResults:   a.zero,
		CacheHits:     a.cacheHits,
		TopQueries:    topN(a.queries, a.topN),
		ZeroResultTop: topN(a.zeroQueries, a.topN),
		Variants:      make(map[string]int64, len(a.variants)),
	}
	for v, n := range a.variants {
		s.Variants[v] = n
	}
	if a.total > 0 {
		s.ZeroResultRate = float64(a.zero) / float64(a.total)
		s.AvgLatencyMs = float64(a.latencySum) / float64(a.total)
		s.AvgTopScore = a.scoreSum / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := append([]int64(nil), a.latencies...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		s.P50LatencyMs = percentile(sorted, 50)
		s.P95LatencyMs = percentile(sorted, 95)
	}
	if minutes := time.Since(a.started).Minutes(); minutes > 0 {
		s.QueriesPerMinute = float64(a.total) / minutes
	}
	return s
}

// normaliseQuery labels metadata-only searches by their constraints.
func normaliseQuery(ev SearchEvent) string {
	q := strings.ToLower(strings.Join(strings.Fields(ev.Query), " "))
	if q != "" {
		return q
	}
	parts := make([]string, 0, 2)
	if len(ev.Names) > 0 {
		parts = append(parts, "authors:"+strings.ToLower(strings.Join(ev.Names, ",")))
	}
	if ev.Period != "" {
		parts = append(parts, "published:"+ev.Period)
	}
	return strings.Join(parts, " ")
}

func percentile(sorted []int64, pct int) int64 {
	idx := pct * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query text.
func topN(counts map[string]int64, n int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
