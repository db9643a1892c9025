// Package main provides a performance benchmarking tool for the contacts data access layer.
// It serves seeded in-process stores of different sizes behind a simulated network delay,
// then times reads without a cache, a cold cached read, and the average of warm cached reads,
// generating CSV output for performance analysis and documentation.
//
// Usage: go run ./benchmark [latency]
//
//	latency: simulated round trip added to every store request (default 20ms)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/contacts/internal/contacts"
	"github.com/huangsam/contacts/internal/contactstore"
	"github.com/huangsam/contacts/internal/restclient"
	"github.com/huangsam/contacts/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold read and average of warm reads).
type BenchmarkResult struct {
	StoreSize   int
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
	Requests    uint64 // store requests made by the cached phase
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Latency     time.Duration
	NoCacheRuns int
	CacheRuns   int
	StoreSizes  []int
	PageSize    int
}

// benchCommand is one read pattern to time.
type benchCommand struct {
	name string
	path string // store route counted for the request total
	read func(ctx context.Context, svc *contacts.Service, limit int) error
}

var commands = []benchCommand{
	{
		name: "list",
		path: "/contacts",
		read: func(ctx context.Context, svc *contacts.Service, limit int) error {
			_, err := svc.ListContacts(ctx, schema.ListParams{Page: 1, Limit: limit})
			return err
		},
	},
	{
		name: "search",
		path: "/contacts",
		read: func(ctx context.Context, svc *contacts.Service, limit int) error {
			_, err := svc.ListContacts(ctx, schema.ListParams{Page: 1, Limit: limit, Search: "example.com", FavouritesOnly: true})
			return err
		},
	},
	{
		name: "get",
		path: "/contacts/{id}",
		read: func(ctx context.Context, svc *contacts.Service, _ int) error {
			_, err := svc.GetContact(ctx, "1")
			return err
		},
	},
}

func main() {
	config := BenchmarkConfig{
		Latency:     20 * time.Millisecond,
		NoCacheRuns: 3,
		CacheRuns:   5,
		StoreSizes:  []int{10, 1000, 50000},
		PageSize:    9,
	}
	if len(os.Args) == 2 {
		latency, err := time.ParseDuration(os.Args[1])
		if err != nil {
			fmt.Printf("Usage: %s [latency]\n", os.Args[0])
			os.Exit(1)
		}
		config.Latency = latency
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark commands across configured store sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d store sizes, %v latency, no-cache: %d runs, cache: %d runs\n",
		len(config.StoreSizes), config.Latency, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.StoreSizes {
		fmt.Printf("Benchmarking store with %d contacts\n", size)
		srv := contactstore.NewServer(contactstore.NewInmem(seedContacts(size)...), nil, "benchmark")
		ts := httptest.NewServer(delayed(srv, config.Latency))

		for _, command := range commands {
			results = append(results, runBenchmarkSuite(config, srv, ts.URL+"/contacts", size, command))
		}
		ts.Close()
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, srv *contactstore.Server, baseURL string, size int, command benchCommand) BenchmarkResult {
	fmt.Printf("Running %s on %d contacts\n", command.name, size)

	// Phase 1: No-cache runs, every read gets its own service
	fmt.Printf("  No-cache phase (%d runs)\n", config.NoCacheRuns)
	var noCache []float64
	for range config.NoCacheRuns {
		if t, err := timeRead(command, newService(baseURL), config.PageSize); err == nil {
			noCache = append(noCache, t)
		}
	}

	// Phase 2: Cache runs share one service
	fmt.Printf("  Cache phase (%d runs)\n", config.CacheRuns)
	before := srv.Requests(http.MethodGet, command.path)
	svc := newService(baseURL)
	var cached []float64
	for range config.CacheRuns {
		if t, err := timeRead(command, svc, config.PageSize); err == nil {
			cached = append(cached, t)
		}
	}
	requests := srv.Requests(http.MethodGet, command.path) - before

	coldTimeStr, warmAvg := "FAILED", "FAILED"
	if len(cached) > 0 {
		coldTimeStr = formatSeconds(cached[0])
		warmAvg = average(cached[1:])
	}
	noCacheAvg := average(noCache)

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s, Requests: %d\n",
		noCacheAvg, coldTimeStr, warmAvg, requests)

	return BenchmarkResult{
		StoreSize:   size,
		Command:     command.name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
		Requests:    requests,
	}
}

func newService(baseURL string) *contacts.Service {
	return contacts.NewService(restclient.New(baseURL), nil)
}

// timeRead runs one read and returns how long it took in seconds.
func timeRead(command benchCommand, svc *contacts.Service, limit int) (float64, error) {
	start := time.Now()
	if err := command.read(context.Background(), svc, limit); err != nil {
		fmt.Printf("    %s failed: %v\n", command.name, err)
		return 0, err
	}
	return time.Since(start).Seconds(), nil
}

// delayed adds latency in front of every request.
func delayed(h http.Handler, latency time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(latency)
		h.ServeHTTP(w, r)
	})
}

func seedContacts(n int) []schema.Contact {
	cs := make([]schema.Contact, n)
	for i := range cs {
		cs[i] = schema.Contact{
			ID:        strconv.Itoa(i + 1),
			Name:      fmt.Sprintf("Contact %d", i+1),
			Email:     fmt.Sprintf("contact%d@example.com", i+1),
			Phone:     fmt.Sprintf("555-%05d", i+1),
			Address:   fmt.Sprintf("%d Benchmark Way", i+1),
			Favourite: i%3 == 0,
		}
	}
	return cs
}

func average(times []float64) string {
	if len(times) == 0 {
		return "N/A"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return formatSeconds(sum / float64(len(times)))
}

func formatSeconds(t float64) string {
	return fmt.Sprintf("%.4fs", t)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/contacts_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"store_size", "cmd", "no_cache_avg", "cold_time", "warm_avg", "requests"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{
			strconv.Itoa(result.StoreSize), result.Command, result.NoCacheTime,
			result.ColdTime, result.WarmTime, strconv.FormatUint(result.Requests, 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range commands {
		printCommandSummary(results, command.name)
	}
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command string) {
	fmt.Printf("%s:\n", command)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8d: No-cache: %s, Cold: %s, Warm: %s, Requests: %d\n",
				result.StoreSize, result.NoCacheTime, result.ColdTime, result.WarmTime, result.Requests)
		}
	}
}
