// Package main provides the arm7sim command line simulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/loader"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

type options struct {
	timing    bool
	config    string
	raw       bool
	base      string
	max       uint64
	bare      bool
	verbose   bool
	trace     bool
	traceFile string
}

func main() {
	atexit.Exit(int(run(os.Args[1:], os.Stdout, os.Stderr)))
}

// run parses args, simulates the program and returns the process exit
// code.
func run(args []string, stdout, stderr io.Writer) int32 {
	var opts options

	fs := flag.NewFlagSet("arm7sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.timing, "timing", false, "Enable timing simulation mode")
	fs.StringVar(&opts.config, "config", "", "Path to timing configuration JSON file")
	fs.BoolVar(&opts.raw, "raw", false, "Treat the program as a flat binary image")
	fs.StringVar(&opts.base, "base", "0x8000", "Load and entry address of a raw image")
	fs.Uint64Var(&opts.max, "max", 0, "Stop after this many instructions (0 = no limit)")
	fs.BoolVar(&opts.bare, "bare", false, "Run bare metal: SWI takes the exception vector")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.BoolVar(&opts.trace, "trace", false, "Log every retired instruction")
	fs.StringVar(&opts.traceFile, "trace-file", "", "Write log output to this file instead of stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: arm7sim [options] <program>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}
	programPath := fs.Arg(0)

	logger, err := newLogger(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening trace file: %v\n", err)
		return 1
	}

	prog, err := loadProgram(opts, programPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	if opts.verbose {
		fmt.Fprintf(stdout, "Loaded: %s\n", programPath)
		fmt.Fprintf(stdout, "Entry point: 0x%08X\n", prog.EntryPoint)
		fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
	}

	emuOpts := []emu.EmulatorOption{
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithLogger(logger),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithMaxInstructions(opts.max),
	}
	if opts.bare {
		emuOpts = append(emuOpts, emu.WithBareMetal())
	}

	if opts.timing {
		return runTiming(opts, prog, programPath, emuOpts, stdout, stderr)
	}
	return runEmulation(opts, prog, programPath, emuOpts, stdout)
}

func newLogger(opts options, stderr io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	switch {
	case opts.trace:
		level = emu.LevelTrace
	case opts.verbose:
		level = slog.LevelDebug
	}

	out := stderr
	if opts.traceFile != "" {
		f, err := os.Create(opts.traceFile)
		if err != nil {
			return nil, err
		}
		atexit.Register(func() { _ = f.Close() })
		out = f
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

func loadProgram(opts options, path string) (*loader.Program, error) {
	if !opts.raw {
		return loader.Load(path)
	}

	base, err := strconv.ParseUint(opts.base, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid base address %q: %w", opts.base, err)
	}
	return loader.LoadRaw(path, uint32(base))
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(
	opts options,
	prog *loader.Program,
	programPath string,
	emuOpts []emu.EmulatorOption,
	stdout io.Writer,
) int32 {
	emulator := emu.NewEmulator(emuOpts...)
	prog.LoadInto(emulator.Bus())
	emulator.SetPC(prog.EntryPoint)

	exitCode := emulator.Run()

	if opts.verbose {
		fmt.Fprintf(stdout, "\nProgram: %s\n", programPath)
		fmt.Fprintf(stdout, "Exit code: %d\n", exitCode)
		fmt.Fprintf(stdout, "Instructions executed: %d\n", emulator.InstructionCount())
		fmt.Fprintln(stdout, emulator.RegFile().Table())
	}

	return exitCode
}

// runTiming runs the program in timing simulation mode.
func runTiming(
	opts options,
	prog *loader.Program,
	programPath string,
	emuOpts []emu.EmulatorOption,
	stdout, stderr io.Writer,
) int32 {
	timingConfig := latency.DefaultTimingConfig()
	if opts.config != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.config)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return 1
		}
	}
	if err := timingConfig.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid timing config: %v\n", err)
		return 1
	}

	c := core.NewCore(timingConfig, emuOpts...)
	prog.LoadInto(c.Memory())
	c.SetPC(prog.EntryPoint)

	exitCode := c.Run()
	if err := c.Err(); err != nil {
		fmt.Fprintf(stderr, "Emulation error: %v\n", err)
	}

	fmt.Fprintf(stdout, "\nProgram: %s\n", programPath)
	fmt.Fprintf(stdout, "Exit code: %d\n", exitCode)
	fmt.Fprintln(stdout, c.Report())
	if opts.verbose {
		fmt.Fprintln(stdout, c.Emulator().RegFile().Table())
	}

	return exitCode
}
