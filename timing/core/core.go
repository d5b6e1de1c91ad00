// Package core provides the cycle-counting ARM7TDMI core model.
// It wraps the functional emulator and charges every retired instruction
// its S/N/I cost plus the latency of its memory accesses.
package core

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/cache"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Flushes is the number of pipeline refills.
	Flushes uint64
	// InternalCycles is the number of I-cycles charged by the core.
	InternalCycles uint64
	// MemStalls is the number of cycles spent waiting on the cache.
	MemStalls uint64
	// Skipped is the number of instructions whose condition failed.
	Skipped uint64
	// Interrupts is the number of IRQ/FIQ entries.
	Interrupts uint64
	Loads      uint64
	Stores     uint64
	Branches   uint64
}

// CPI returns cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-counting CPU core model.
type Core struct {
	emulator *emu.Emulator
	table    *latency.Table
	memory   *emu.Memory
	bus      *cache.CachedBus

	stats    Stats
	halted   bool
	exitCode int32
	err      error
}

// NewCore creates a Core with the given timing configuration. When the
// configuration enables the cache, the emulator's bus is a CachedBus in
// front of a fresh memory. opts configure the wrapped emulator.
func NewCore(config *latency.TimingConfig, opts ...emu.EmulatorOption) *Core {
	c := &Core{
		table:  latency.NewTableWithConfig(config),
		memory: emu.NewMemory(),
	}

	var bus emu.Bus = c.memory
	if config.CacheEnabled {
		c.bus = cache.NewCachedBus(cache.ConfigFromTiming(config), c.memory)
		bus = c.bus
	}

	opts = append(opts, emu.WithBus(bus))
	c.emulator = emu.NewEmulator(opts...)

	return c
}

// Emulator returns the wrapped functional emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Memory returns the memory behind the cache. Programs are loaded here.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Cache returns the cache, or nil when the cache is disabled.
func (c *Core) Cache() *cache.Cache {
	if c.bus == nil {
		return nil
	}
	return c.bus.Cache()
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.emulator.SetPC(pc)
}

// Halted returns true if the core has halted (exit syscall or error).
func (c *Core) Halted() bool {
	return c.halted
}

// ExitCode returns the exit code if the core has halted.
func (c *Core) ExitCode() int32 {
	return c.exitCode
}

// Err returns the error that halted the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Step executes one instruction and accounts its cycles.
func (c *Core) Step() emu.StepResult {
	if c.halted {
		return emu.StepResult{Exited: c.err == nil, ExitCode: c.exitCode, Err: c.err}
	}

	before := c.emulator.Core().Cycles()
	result := c.emulator.Step()
	internal := c.emulator.Core().Cycles() - before

	var stall uint64
	if c.bus != nil {
		stall = c.bus.TakeLatency()
	}

	if result.Err != nil {
		c.halted = true
		c.exitCode = -1
		c.err = result.Err
		return result
	}

	var cost uint64
	switch {
	case result.Interrupted:
		cost = c.table.ExceptionCost()
		c.stats.Interrupts++
	case result.Skipped:
		cost = c.table.SkipCost()
		c.stats.Skipped++
		c.stats.Instructions++
	default:
		cost = c.table.Cost(result.Inst, result.Action, internal)
		c.stats.Instructions++
		c.count(result)
	}

	if result.Action == emu.ActionFlush {
		c.stats.Flushes++
	}
	c.stats.InternalCycles += internal
	c.stats.MemStalls += stall
	c.stats.Cycles += cost + stall

	if result.Exited {
		c.halted = true
		c.exitCode = result.ExitCode
	}

	return result
}

func (c *Core) count(result emu.StepResult) {
	if c.table.IsLoadOp(result.Inst) {
		c.stats.Loads++
	}
	if c.table.IsStoreOp(result.Inst) {
		c.stats.Stores++
	}
	if c.table.IsBranchOp(result.Inst) {
		c.stats.Branches++
	}
}

// Run executes the core until it halts.
// Returns the exit code, or -1 on error.
func (c *Core) Run() int32 {
	for !c.halted {
		c.Step()
	}
	return c.exitCode
}

// RunInstructions executes up to n instructions.
// Returns true if still running, false if halted.
func (c *Core) RunInstructions(n uint64) bool {
	for i := uint64(0); i < n && !c.halted; i++ {
		c.Step()
	}
	return !c.halted
}

// Reset clears the core state and statistics. Memory contents are kept.
func (c *Core) Reset() {
	c.emulator.Reset()
	if c.bus != nil {
		c.bus.Flush()
		c.bus.Cache().ResetStats()
		c.bus.TakeLatency()
	}
	c.stats = Stats{}
	c.halted = false
	c.exitCode = 0
	c.err = nil
}

// Report renders the statistics as a table.
func (c *Core) Report() string {
	s := c.stats

	t := table.NewWriter()
	t.SetTitle("Timing")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Cycles", s.Cycles},
		{"Instructions", s.Instructions},
		{"CPI", fmt.Sprintf("%.3f", s.CPI())},
		{"Skipped", s.Skipped},
		{"Flushes", s.Flushes},
		{"Internal cycles", s.InternalCycles},
		{"Memory stalls", s.MemStalls},
		{"Loads", s.Loads},
		{"Stores", s.Stores},
		{"Branches", s.Branches},
		{"Interrupts", s.Interrupts},
	})

	if cs := c.Cache(); cs != nil {
		stats := cs.Stats()
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Cache hits", stats.Hits},
			{"Cache misses", stats.Misses},
			{"Cache hit rate", fmt.Sprintf("%.1f%%", 100*stats.HitRate())},
			{"Cache write-backs", stats.Writebacks},
		})
	}

	return t.Render()
}
