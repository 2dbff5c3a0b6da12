// Package analytics publishes one event per search to Kafka and aggregates
// the consumed stream into query statistics.
package analytics

import "time"

// SearchEvent describes one answered search.
type SearchEvent struct {
	RequestID   string    `json:"request_id"`
	Variant     string    `json:"variant"`
	Query       string    `json:"query"`
	Names       []string  `json:"names,omitempty"`
	Period      string    `json:"period,omitempty"`
	ResultCount int       `json:"result_count"`
	TopScore    float64   `json:"top_score"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Timestamp   time.Time `json:"timestamp"`
}
