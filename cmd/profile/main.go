// Package main provides a profiling wrapper for ARM7Sim to identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/loader"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

var (
	timing      = flag.Bool("timing", false, "Enable timing simulation mode")
	cached      = flag.Bool("cache", false, "Enable the cache model in timing mode")
	raw         = flag.Bool("raw", false, "Treat the program as a flat binary image")
	base        = flag.String("base", "0x8000", "Load and entry address of a raw image")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loadProgram(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%08X\n", prog.EntryPoint)

	start := time.Now()

	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	opts := []emu.EmulatorOption{
		emu.WithStackPointer(prog.InitialSP),
	}
	if *instruction > 0 {
		opts = append(opts, emu.WithMaxInstructions(*instruction))
	}

	var exitCode int32
	var instrCount uint64

	if *timing {
		exitCode, instrCount = runTimingProfile(prog, opts)
	} else {
		exitCode, instrCount = runEmulationProfile(prog, opts)
	}

	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Exit code: %d\n", exitCode)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

func loadProgram(path string) (*loader.Program, error) {
	if !*raw {
		return loader.Load(path)
	}

	addr, err := strconv.ParseUint(*base, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid base address %q: %w", *base, err)
	}
	return loader.LoadRaw(path, uint32(addr))
}

// runEmulationProfile runs the program in functional emulation mode.
func runEmulationProfile(prog *loader.Program, opts []emu.EmulatorOption) (int32, uint64) {
	emulator := emu.NewEmulator(opts...)
	prog.LoadInto(emulator.Bus())
	emulator.SetPC(prog.EntryPoint)

	exitCode := emulator.Run()

	return exitCode, emulator.InstructionCount()
}

// runTimingProfile runs the program on the cycle-counting core.
func runTimingProfile(prog *loader.Program, opts []emu.EmulatorOption) (int32, uint64) {
	timingConfig := latency.DefaultTimingConfig()
	timingConfig.CacheEnabled = *cached

	c := core.NewCore(timingConfig, opts...)
	prog.LoadInto(c.Memory())
	c.SetPC(prog.EntryPoint)

	exitCode := c.Run()

	stats := c.Stats()
	fmt.Printf("Cycles: %d (CPI %.3f)\n", stats.Cycles, stats.CPI())

	return exitCode, stats.Instructions
}
