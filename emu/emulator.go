// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/arm7sim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Inst is the instruction that was retired. It is the zero value when
	// the step was spent entering an interrupt.
	Inst insts.Instruction

	// Action is the pipeline action the instruction produced.
	Action PipelineAction

	// Skipped is true if the condition check failed.
	Skipped bool

	// Interrupted is true if the step took Exception instead of executing.
	Interrupted bool
	Exception   Exception

	// Exited is true if the program terminated (via exit syscall).
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int32

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator drives a Core with a two-entry prefetch queue. The executing
// instruction always observes PC = its address + 2 instruction widths.
type Emulator struct {
	regFile        *RegFile
	core           *Core
	bus            Bus
	memory         *Memory
	decoder        *insts.Decoder
	syscallHandler SyscallHandler
	logger         *slog.Logger

	// I/O
	stdout io.Writer
	stderr io.Writer

	// Configuration gathered from options.
	bareMetal    bool
	entryMode    CPUMode
	entryModeSet bool
	stackPointer uint32
	spSet        bool

	// Prefetch queue. prefetch[0] is the next instruction to execute.
	prefetch      [2]uint32
	prefetchValid bool

	irqPending bool
	fiqPending bool

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithLogger sets the logger for execution traces, mode changes and
// exceptions.
func WithLogger(logger *slog.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
	}
}

// WithBareMetal disables host syscall emulation. SWI then takes the
// software interrupt vector and the core starts in Supervisor mode.
func WithBareMetal() EmulatorOption {
	return func(e *Emulator) {
		e.bareMetal = true
	}
}

// WithBus replaces the default sparse memory with a custom bus.
func WithBus(bus Bus) EmulatorOption {
	return func(e *Emulator) {
		e.bus = bus
	}
}

// WithEntryMode sets the processor mode execution starts in. NewEmulator
// panics if the mode is not valid.
func WithEntryMode(m CPUMode) EmulatorOption {
	return func(e *Emulator) {
		e.entryMode = m
		e.entryModeSet = true
	}
}

// WithStackPointer sets the initial stack pointer of the entry mode.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.stackPointer = sp
		e.spSet = true
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new ARM7TDMI emulator. Hosted programs start in
// User mode with the default syscall handler; bare-metal ones start in
// Supervisor mode.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder: insts.NewDecoder(),
		logger:  slog.Default(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	// Apply options first (may set stdout/stderr)
	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.memory = NewMemory()
		e.bus = e.memory
	}

	if !e.entryModeSet {
		e.entryMode = ModeUSR
		if e.bareMetal {
			e.entryMode = ModeSVC
		}
	}
	if !e.entryMode.IsValid() {
		panic(fmt.Sprintf("emu: invalid entry mode %v", e.entryMode))
	}

	e.regFile = NewRegFile()
	e.core = NewCore(WithRegFile(e.regFile), WithCoreLogger(e.logger))
	e.enterEntryMode()

	// If no syscall handler was provided, create a default one
	if e.syscallHandler == nil && !e.bareMetal {
		e.syscallHandler = NewDefaultSyscallHandler(e.regFile, e.bus, e.stdout, e.stderr)
	}

	return e
}

func (e *Emulator) enterEntryMode() {
	// The mode was validated in NewEmulator.
	_ = e.regFile.ChangeMode(e.entryMode)
	if e.entryMode == ModeUSR || e.entryMode == ModeSYS {
		e.regFile.CPSR.SetIRQDisabled(false)
		e.regFile.CPSR.SetFIQDisabled(false)
	}
	if e.spSet {
		e.regFile.WriteReg(insts.SP, e.stackPointer)
	}
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Core returns the execution core.
func (e *Emulator) Core() *Core {
	return e.core
}

// Bus returns the bus instructions and data are accessed through.
func (e *Emulator) Bus() Bus {
	return e.bus
}

// Memory returns the emulator's memory, or nil when a custom bus is used.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions retired.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// WriteMemory copies data onto the bus starting at addr.
func (e *Emulator) WriteMemory(addr uint32, data []byte) {
	for i, b := range data {
		e.bus.Write8(addr+uint32(i), b)
	}
}

// LoadProgram loads a program into memory and sets the entry point.
// The program can be either a []byte or a *Memory.
func (e *Emulator) LoadProgram(entry uint32, program interface{}) {
	switch p := program.(type) {
	case []byte:
		e.WriteMemory(entry, p)
	case *Memory:
		e.memory = p
		e.bus = p
		if _, ok := e.syscallHandler.(*DefaultSyscallHandler); ok {
			e.syscallHandler = NewDefaultSyscallHandler(e.regFile, e.bus, e.stdout, e.stderr)
		}
	}
	e.SetPC(entry)
}

// SetPC redirects execution to pc and empties the prefetch queue.
func (e *Emulator) SetPC(pc uint32) {
	e.regFile.SetPC(pc)
	e.prefetchValid = false
}

// RaiseIRQ requests an interrupt. It is taken before the next instruction
// once the CPSR I bit is clear.
func (e *Emulator) RaiseIRQ() {
	e.irqPending = true
}

// RaiseFIQ requests a fast interrupt. It is taken before the next
// instruction once the CPSR F bit is clear.
func (e *Emulator) RaiseFIQ() {
	e.fiqPending = true
}

// Reset resets the core to the entry mode and clears the counters. Memory
// contents are kept.
func (e *Emulator) Reset() {
	e.core.Reset()
	e.enterEntryMode()
	e.prefetchValid = false
	e.irqPending = false
	e.fiqPending = false
	e.instructionCount = 0
}

// refill loads both prefetch slots starting at PC.
func (e *Emulator) refill() {
	w := e.core.WordSize()
	pc := e.regFile.RawPC()
	e.prefetch[0] = e.bus.Read32(pc)
	e.prefetch[1] = e.bus.Read32(pc + w)
	e.regFile.SetPC(pc + 2*w)
	e.prefetchValid = true
}

// advance shifts the queue by one and fetches the next word.
func (e *Emulator) advance() {
	pc := e.regFile.RawPC()
	e.prefetch[0] = e.prefetch[1]
	e.prefetch[1] = e.bus.Read32(pc)
	e.regFile.SetPC(pc + e.core.WordSize())
}

// pendingInterrupt returns the interrupt to take, FIQ first.
func (e *Emulator) pendingInterrupt() (Exception, bool) {
	cpsr := e.regFile.CPSR
	if e.fiqPending && !cpsr.FIQDisabled() {
		e.fiqPending = false
		return ExceptionFIQ, true
	}
	if e.irqPending && !cpsr.IRQDisabled() {
		e.irqPending = false
		return ExceptionIRQ, true
	}
	return 0, false
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	if e.regFile.CPSR.State() == StateTHUMB {
		return StepResult{
			Err: fmt.Errorf("fetch at 0x%08X: %w", e.regFile.RawPC(), ErrThumbStateUnsupported),
		}
	}

	if !e.prefetchValid {
		e.refill()
	}

	if exc, ok := e.pendingInterrupt(); ok {
		if err := e.core.Exception(exc); err != nil {
			return StepResult{Err: err}
		}
		e.prefetchValid = false
		return StepResult{Action: ActionFlush, Interrupted: true, Exception: exc}
	}

	addr := e.regFile.RawPC() - 2*e.core.WordSize()
	inst := e.decoder.Decode(addr, e.prefetch[0])

	result := StepResult{Inst: inst}
	result.Skipped = !e.core.ConditionPassed(inst)

	if inst.Format == insts.FormatSWI && !result.Skipped && e.syscallHandler != nil {
		sys := e.syscallHandler.Handle()
		result.Action = ActionAdvance
		result.Exited = sys.Exited
		result.ExitCode = sys.ExitCode
	} else {
		result.Action, result.Err = e.core.Execute(e.bus, inst)
	}

	if result.Err != nil {
		e.logger.Warn("execution stopped",
			"pc", fmt.Sprintf("0x%08X", addr),
			"inst", inst.String(),
			"err", result.Err)
		return result
	}

	e.instructionCount++

	if TraceEnabled(e.logger) {
		Trace(e.logger, "retire",
			"pc", fmt.Sprintf("0x%08X", addr),
			"raw", fmt.Sprintf("0x%08X", inst.Raw),
			"inst", inst.String(),
			"action", result.Action)
	}

	if result.Action == ActionFlush {
		e.prefetchValid = false
	} else {
		e.advance()
	}

	return result
}

// Run executes instructions until the program exits or an error occurs.
// Returns the exit code (-1 if error).
func (e *Emulator) Run() int32 {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(e.stderr, "Emulation error: %v\n", result.Err)
			return -1
		}
	}
}
