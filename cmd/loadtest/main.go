// Command loadtest seeds the search service with documents and hammers
// the search endpoint, reporting throughput and latency percentiles.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	SeedDocs    int
	Queries     []string
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)
	if err != nil {
		s.errorCount.Add(1)
		return
	}
	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

var vocabulary = []string{
	"cat", "dog", "bird", "fish", "horse", "city", "village", "harbor",
	"mountain", "river", "fast", "slow", "bright", "dark", "quiet",
	"library", "station", "market", "garden", "bridge", "winter", "summer",
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	seedDocs := flag.Int("seed", 500, "documents to index before the run")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		SeedDocs:    *seedDocs,
		Queries: []string{
			"cat city",
			"dog harbor -winter",
			"bird mountain river",
			"fast bridge",
			"quiet library garden",
			"horse market -slow",
			"fish station",
			"bright summer village",
		},
	}

	fmt.Println("=== Text Search Server Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Seed docs:   %d\n", cfg.SeedDocs)
	fmt.Println()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	if err := seed(client, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	stats := runLoadTest(client, cfg)
	printReport(stats, cfg.Duration)
}

func seed(client *http.Client, cfg Config) error {
	rng := rand.New(rand.NewSource(42))
	for id := 0; id < cfg.SeedDocs; id++ {
		words := make([]string, 4+rng.Intn(8))
		for i := range words {
			words[i] = vocabulary[rng.Intn(len(vocabulary))]
		}
		text := ""
		for i, w := range words {
			if i > 0 {
				text += " "
			}
			text += w
		}
		body, _ := json.Marshal(map[string]any{
			"id":      id,
			"text":    text,
			"status":  "actual",
			"ratings": []int{rng.Intn(10), rng.Intn(10), rng.Intn(10)},
		})
		resp, err := client.Post(cfg.BaseURL+"/api/v1/documents", "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("adding document %d: %w", id, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("adding document %d: status %d", id, resp.StatusCode)
		}
	}
	fmt.Printf("seeded %d documents\n\n", cfg.SeedDocs)
	return nil
}

func runLoadTest(client *http.Client, cfg Config) *Stats {
	stats := NewStats()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(worker)))
			for ctx.Err() == nil {
				query := cfg.Queries[rng.Intn(len(cfg.Queries))]
				policy := "sequential"
				if rng.Intn(2) == 0 {
					policy = "parallel"
				}
				target := fmt.Sprintf("%s/api/v1/search?q=%s&policy=%s",
					cfg.BaseURL, url.QueryEscape(query), policy)

				start := time.Now()
				resp, err := client.Get(target)
				elapsed := time.Since(start)
				if err != nil {
					stats.RecordRequest(elapsed, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.RecordRequest(elapsed, resp.StatusCode, nil)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	fmt.Println("=== Results ===")
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Success:        %d\n", stats.successCount.Load())
	fmt.Printf("Errors:         %d\n", stats.errorCount.Load())
	fmt.Printf("Throughput:     %.1f req/s\n", float64(total)/duration.Seconds())

	stats.latenciesMu.Lock()
	latencies := stats.latencies
	stats.latenciesMu.Unlock()
	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		fmt.Printf("Latency p50:    %s\n", latencies[len(latencies)*50/100])
		fmt.Printf("Latency p95:    %s\n", latencies[len(latencies)*95/100])
		fmt.Printf("Latency p99:    %s\n", latencies[len(latencies)*99/100])
	}

	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	fmt.Println("Status codes:")
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()
}
