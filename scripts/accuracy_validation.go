// Package main provides accuracy validation for the timing model.
// Ensures that the cycle-counting core and the cache leave architectural
// results unchanged.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/arm7sim/benchmarks"
	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

type outcome struct {
	exitCode     int32
	instructions uint64
	regs         [16]uint32
}

func snapshot(regFile *emu.RegFile, exitCode int32, instructions uint64) outcome {
	o := outcome{exitCode: exitCode, instructions: instructions}
	for r := uint8(0); r < 15; r++ {
		o.regs[r] = regFile.ReadReg(r)
	}
	return o
}

func options() []emu.EmulatorOption {
	return []emu.EmulatorOption{
		emu.WithStdout(io.Discard),
		emu.WithStackPointer(benchmarks.StackTop),
		emu.WithMaxInstructions(1_000_000),
	}
}

func runFunctional(b benchmarks.Benchmark) outcome {
	emulator := emu.NewEmulator(options()...)
	if b.Setup != nil {
		b.Setup(emulator.RegFile(), emulator.Memory())
	}
	emulator.Memory().LoadProgram(benchmarks.ProgramBase, b.Program)
	emulator.SetPC(benchmarks.ProgramBase)

	exitCode := emulator.Run()
	return snapshot(emulator.RegFile(), exitCode, emulator.InstructionCount())
}

func runTiming(b benchmarks.Benchmark, cached bool) outcome {
	config := latency.DefaultTimingConfig()
	config.CacheEnabled = cached

	c := core.NewCore(config, options()...)
	if b.Setup != nil {
		b.Setup(c.Emulator().RegFile(), c.Memory())
	}
	c.Memory().LoadProgram(benchmarks.ProgramBase, b.Program)
	c.SetPC(benchmarks.ProgramBase)

	exitCode := c.Run()
	return snapshot(c.Emulator().RegFile(), exitCode, c.Emulator().InstructionCount())
}

func compare(name, mode string, want, got outcome) bool {
	if want == got {
		fmt.Printf("PASS %-24s %s\n", name, mode)
		return true
	}

	fmt.Printf("FAIL %-24s %s\n", name, mode)
	fmt.Printf("  functional: exit=%d insts=%d regs=%08X\n", want.exitCode, want.instructions, want.regs)
	fmt.Printf("  timing:     exit=%d insts=%d regs=%08X\n", got.exitCode, got.instructions, got.regs)
	return false
}

func main() {
	fmt.Println("Validating timing model against functional emulation...")

	ok := true
	for _, b := range benchmarks.GetMicrobenchmarks() {
		want := runFunctional(b)
		if want.exitCode != b.ExpectedExit {
			fmt.Printf("FAIL %-24s functional exit %d, expected %d\n", b.Name, want.exitCode, b.ExpectedExit)
			ok = false
		}

		ok = compare(b.Name, "timing", want, runTiming(b, false)) && ok
		ok = compare(b.Name, "timing+cache", want, runTiming(b, true)) && ok
	}

	if !ok {
		fmt.Println("\nAccuracy validation failed")
		os.Exit(1)
	}
	fmt.Println("\nAll benchmarks match")
}
