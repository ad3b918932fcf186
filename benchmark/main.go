// Package main provides a performance benchmarking tool for the mlscore CLI.
// It measures scoring times across URL sets of different sizes,
// running each set multiple times, treating the first successful cached run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - mlscore binary installed and available in PATH
// - Network access to huggingface.co and api.github.com
// - MLSCORE_GITHUB_TOKEN set to avoid the anonymous GitHub rate limit
//
// Usage: go run benchmark/main.go [workers]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Set         string
	URLs        int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	SetOrder    []string
	URLSets     map[string][]string
}

func main() {
	workers := 4
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [workers]\n", os.Args[0])
			os.Exit(1)
		}
		workers = n
	}

	config := BenchmarkConfig{
		Timeout:     5 * time.Minute,
		Workers:     workers,
		NoCacheRuns: 3,
		CacheRuns:   4,
		SetOrder:    []string{"single", "group", "mixed"},
		URLSets: map[string][]string{
			"single": {
				"https://huggingface.co/google-bert/bert-base-uncased",
			},
			"group": {
				"https://github.com/google-research/bert,https://huggingface.co/datasets/bookcorpus/bookcorpus,https://huggingface.co/google-bert/bert-base-uncased",
			},
			"mixed": {
				"https://huggingface.co/google-bert/bert-base-uncased",
				"https://huggingface.co/openai-community/gpt2",
				"https://huggingface.co/datasets/stanfordnlp/imdb",
				"https://huggingface.co/datasets/rajpurkar/squad",
				"https://github.com/pallets/flask",
				"https://github.com/huggingface/transformers",
			},
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "mlscore_benchmark")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	results := runBenchmarks(config, dir)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the mlscore binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("mlscore"); err != nil {
		return fmt.Errorf("mlscore binary not found in PATH")
	}
	return nil
}

// runBenchmarks executes all benchmark suites across configured URL sets
func runBenchmarks(config BenchmarkConfig, dir string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.SetOrder), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, set := range config.SetOrder {
		urls := config.URLSets[set]
		urlFile := filepath.Join(dir, set+".txt")
		if err := os.WriteFile(urlFile, []byte(strings.Join(urls, "\n")+"\n"), 0o644); err != nil {
			fmt.Printf("Skipping %s: %v\n", set, err)
			continue
		}
		results = append(results, runBenchmarkSuite(config, set, urlFile, len(urls)))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a URL set
func runBenchmarkSuite(config BenchmarkConfig, set, urlFile string, numURLs int) BenchmarkResult {
	fmt.Printf("Scoring set %s (%d lines)\n", set, numURLs)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, urlFile, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs starting from an empty cache
	clearCache()
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Set:         set,
		URLs:        numURLs,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// clearCache empties the default SQLite harvest cache
func clearCache() {
	clearCmd := exec.Command("mlscore", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmark scores a URL file multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, urlFile, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"score",
		"--url-file", urlFile,
		"--workers", strconv.Itoa(config.Workers),
		"--cache-backend", cacheBackend,
		"--store-backend", "none",
		"--output", "ndjson",
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("mlscore", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that every output line is a score report
func isSuccess(output []byte) bool {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return false
	}
	for _, line := range lines {
		if !strings.Contains(line, `"net_score"`) {
			return false
		}
	}
	return true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/mlscore_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"set", "urls", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Set, strconv.Itoa(result.URLs), result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%d): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Set, result.URLs, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
