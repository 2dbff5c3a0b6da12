// Command loadtest drives concurrent searches against a running searcher and
// reports throughput and latency percentiles.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-queries queries.txt]
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

var defaultQueries = []string{
	"neural networks",
	"quantum error correction",
	"graph neural networks for molecules",
	"reinforcement learning",
	"transformer language models",
	"dark matter halos",
	"protein structure prediction",
	"diffusion models image synthesis",
	"federated learning privacy",
	"black hole mergers",
}

type options struct {
	baseURL     string
	concurrency int
	duration    time.Duration
	authors     string
	published   string
	queries     []string
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	queryFile := flag.String("queries", "", "file with one query per line")
	authors := flag.String("authors", "", "comma-separated authors added to every search")
	published := flag.String("published", "", "publication period added to every search")
	flag.Parse()

	queries := defaultQueries
	if *queryFile != "" {
		var err error
		if queries, err = readQueries(*queryFile); err != nil {
			fmt.Fprintf(os.Stderr, "reading queries: %v\n", err)
			os.Exit(1)
		}
	}

	opts := options{
		baseURL:     strings.TrimRight(*baseURL, "/"),
		concurrency: *concurrency,
		duration:    *duration,
		authors:     *authors,
		published:   *published,
		queries:     queries,
	}

	fmt.Println("=== Abstract search load test ===")
	fmt.Printf("Target:      %s\n", opts.baseURL)
	fmt.Printf("Concurrency: %d\n", opts.concurrency)
	fmt.Printf("Duration:    %s\n", opts.duration)
	fmt.Printf("Queries:     %d unique\n\n", len(opts.queries))

	start := time.Now()
	stats := run(opts)
	summary := stats.Summarize(time.Since(start))
	summary.Print(os.Stdout)
	if summary.Total == 0 {
		fmt.Println("\nWARNING: no requests completed. Is the searcher running?")
		os.Exit(1)
	}
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			out = append(out, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s has no queries", path)
	}
	return out, nil
}

func searchURL(opts options, query string) string {
	v := url.Values{}
	v.Set("query", query)
	if opts.authors != "" {
		v.Set("authors", opts.authors)
	}
	if opts.published != "" {
		v.Set("published", opts.published)
	}
	return opts.baseURL + "/api/v1/search?" + v.Encode()
}

func run(opts options) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        opts.concurrency * 2,
			MaxIdleConnsPerHost: opts.concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func(next int) {
			defer wg.Done()
			for ctx.Err() == nil {
				q := opts.queries[next%len(opts.queries)]
				next++
				o := doSearch(ctx, client, searchURL(opts, q))
				if ctx.Err() != nil {
					// the deadline cut this request short
					return
				}
				stats.Record(o)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func doSearch(ctx context.Context, client *http.Client, target string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Err: err}
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Outcome{Latency: time.Since(start), Err: err}
	}
	defer resp.Body.Close()

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if resp.StatusCode == http.StatusOK {
		_ = json.NewDecoder(resp.Body).Decode(&body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return Outcome{
		Latency:  time.Since(start),
		Status:   resp.StatusCode,
		CacheHit: resp.Header.Get("X-Cache") == "HIT",
		Results:  len(body.Results),
	}
}
