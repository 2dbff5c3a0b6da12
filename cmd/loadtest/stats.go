package main

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats collects request outcomes from concurrent workers.
type Stats struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
	empty     atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	codes     map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies: make([]time.Duration, 0, 1<<16),
		codes:     make(map[int]int64),
	}
}

// Outcome is what a worker observed for one request.
type Outcome struct {
	Latency  time.Duration
	Status   int
	CacheHit bool
	Results  int
	Err      error
}

func (s *Stats) Record(o Outcome) {
	s.total.Add(1)
	if o.Err != nil {
		s.failed.Add(1)
		return
	}
	if o.Status >= 200 && o.Status < 300 {
		s.succeeded.Add(1)
		if o.Results == 0 {
			s.empty.Add(1)
		}
	} else {
		s.failed.Add(1)
	}
	if o.CacheHit {
		s.cacheHits.Add(1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, o.Latency)
	s.codes[o.Status]++
	s.mu.Unlock()
}

// Summary is the final report.
type Summary struct {
	Total, Succeeded, Failed, CacheHits, Empty int64

	RPS                          float64
	Min, Avg, P50, P90, P95, P99 time.Duration
	Max, StdDev                  time.Duration
	Codes                        map[int]int64
}

func (s *Stats) Summarize(elapsed time.Duration) Summary {
	out := Summary{
		Total:     s.total.Load(),
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
		CacheHits: s.cacheHits.Load(),
		Empty:     s.empty.Load(),
		Codes:     make(map[int]int64),
	}
	if elapsed > 0 {
		out.RPS = float64(out.Total) / elapsed.Seconds()
	}

	s.mu.Lock()
	lat := append([]time.Duration(nil), s.latencies...)
	for code, n := range s.codes {
		out.Codes[code] = n
	}
	s.mu.Unlock()

	if len(lat) == 0 {
		return out
	}
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	var sum time.Duration
	for _, l := range lat {
		sum += l
	}
	out.Avg = sum / time.Duration(len(lat))
	out.Min, out.Max = lat[0], lat[len(lat)-1]
	out.P50 = percentile(lat, 50)
	out.P90 = percentile(lat, 90)
	out.P95 = percentile(lat, 95)
	out.P99 = percentile(lat, 99)

	var sq float64
	for _, l := range lat {
		d := float64(l - out.Avg)
		sq += d * d
	}
	out.StdDev = time.Duration(math.Sqrt(sq / float64(len(lat))))
	return out
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total requests:  %d\n", s.Total)
	fmt.Fprintf(w, "Successful:      %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:          %d\n", s.Failed)
	fmt.Fprintf(w, "Empty results:   %d\n", s.Empty)
	fmt.Fprintf(w, "Cache hits:      %d\n", s.CacheHits)
	if s.Total > 0 {
		fmt.Fprintf(w, "Error rate:      %.2f%%\n", float64(s.Failed)/float64(s.Total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", s.RPS)
	}
	if s.Max > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", s.Min)
		fmt.Fprintf(w, "Avg:    %s\n", s.Avg)
		fmt.Fprintf(w, "P50:    %s\n", s.P50)
		fmt.Fprintf(w, "P90:    %s\n", s.P90)
		fmt.Fprintf(w, "P95:    %s\n", s.P95)
		fmt.Fprintf(w, "P99:    %s\n", s.P99)
		fmt.Fprintf(w, "Max:    %s\n", s.Max)
		fmt.Fprintf(w, "StdDev: %s\n", s.StdDev)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status codes ===")
	codes := make([]int, 0, len(s.Codes))
	for code := range s.Codes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d %s: %d\n", code, http.StatusText(code), s.Codes[code])
	}
}
