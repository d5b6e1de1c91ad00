// Command benchmark runs the ARM7Sim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv       Output results in CSV format (default: human-readable)
//	-json      Output results as a JSON report
//	-cache     Enable the unified cache model
//	-config    Load the timing configuration from a JSON file
//	-core      Run only the core benchmarks
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/arm7sim/benchmarks"
	"github.com/sarchlab/arm7sim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	enableCache := flag.Bool("cache", false, "Enable the unified cache model")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.EnableCache = *enableCache
	config.Output = os.Stdout

	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := timing.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Println("ARM7Sim Timing Benchmark Harness")
		fmt.Println("================================")
		fmt.Printf("Cache: %v\n", config.EnableCache)
		fmt.Println("")
		harness.PrintResults(results)
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Name, r.Error)
			os.Exit(1)
		}
	}
}
