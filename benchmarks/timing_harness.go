// Package benchmarks provides the microbenchmark harness for the ARM7TDMI
// timing model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// ProgramBase is where benchmark programs are loaded and started.
const ProgramBase = 0x1000

// StackTop is the initial stack pointer of every benchmark.
const StackTop = 0x10000

// maxInstructions bounds a runaway benchmark.
const maxInstructions = 1_000_000

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing model
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	InternalCycles  uint64 `json:"internal_cycles"`
	MemStalls       uint64 `json:"mem_stalls"`
	PipelineFlushes uint64 `json:"pipeline_flushes"`
	Skipped         uint64 `json:"skipped"`

	// CacheHits/Misses (if cache enabled)
	CacheHits   uint64 `json:"cache_hits,omitempty"`
	CacheMisses uint64 `json:"cache_misses,omitempty"`

	// ExitCode is the program's exit code
	ExitCode int32 `json:"exit_code"`

	// Error is set when the benchmark stopped on an emulation error.
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the emulator state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the ARM machine code to execute, loaded at ProgramBase
	Program []byte

	// ExpectedExit is the expected exit code (for validation)
	ExpectedExit int32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableCache places the unified cache in front of memory
	EnableCache bool

	// Timing is the cycle model; nil means latency.DefaultTimingConfig
	Timing *latency.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableCache: true,
		Output:      os.Stdout,
	}
}

// Harness runs benchmarks and collects results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

func (h *Harness) timingConfig() *latency.TimingConfig {
	config := latency.DefaultTimingConfig()
	if h.config.Timing != nil {
		config = h.config.Timing.Clone()
	}
	config.CacheEnabled = h.config.EnableCache
	return config
}

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	c := core.NewCore(h.timingConfig(),
		emu.WithStdout(io.Discard),
		emu.WithStderr(io.Discard),
		emu.WithStackPointer(StackTop),
		emu.WithMaxInstructions(maxInstructions),
	)

	if bench.Setup != nil {
		bench.Setup(c.Emulator().RegFile(), c.Memory())
	}

	c.Memory().LoadProgram(ProgramBase, bench.Program)
	c.SetPC(ProgramBase)

	start := time.Now()
	exitCode := c.Run()
	wallTime := time.Since(start)

	stats := c.Stats()
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		InternalCycles:      stats.InternalCycles,
		MemStalls:           stats.MemStalls,
		PipelineFlushes:     stats.Flushes,
		Skipped:             stats.Skipped,
		ExitCode:            exitCode,
		WallTime:            wallTime,
	}

	if err := c.Err(); err != nil {
		result.Error = err.Error()
	}

	if cs := c.Cache(); cs != nil {
		result.CacheHits = cs.Stats().Hits
		result.CacheMisses = cs.Stats().Misses
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "%s: %d cycles, exit %d\n",
			bench.Name, result.SimulatedCycles, result.ExitCode)
	}

	return result
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.SetTitle("ARM7Sim Timing Benchmark Results")
	t.AppendHeader(table.Row{
		"Benchmark", "Cycles", "Insts", "CPI", "I-Cycles", "Mem Stalls",
		"Flushes", "Skipped", "Cache Hits", "Cache Misses", "Exit",
	})

	for _, r := range results {
		exit := fmt.Sprint(r.ExitCode)
		if r.Error != "" {
			exit = "error"
		}
		t.AppendRow(table.Row{
			r.Name, r.SimulatedCycles, r.InstructionsRetired, fmt.Sprintf("%.3f", r.CPI),
			r.InternalCycles, r.MemStalls, r.PipelineFlushes, r.Skipped,
			r.CacheHits, r.CacheMisses, exit,
		})
	}

	t.Render()
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,internal_cycles,mem_stalls,flushes,skipped,cache_hits,cache_misses,exit_code")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.InternalCycles,
			r.MemStalls,
			r.PipelineFlushes,
			r.Skipped,
			r.CacheHits,
			r.CacheMisses,
			r.ExitCode,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the cycle model the benchmarks ran under
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.timingConfig(),
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
