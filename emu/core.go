package emu

import (
	"log/slog"

	"github.com/sarchlab/arm7sim/insts"
)

// PipelineAction tells the fetch stage how to continue after an instruction.
type PipelineAction uint8

// Pipeline actions.
const (
	// ActionAdvance keeps the prefetched instructions and moves on by one
	// instruction width.
	ActionAdvance PipelineAction = iota

	// ActionFlush discards the prefetch queue and refills it from the PC.
	ActionFlush
)

func (a PipelineAction) String() string {
	if a == ActionFlush {
		return "flush"
	}
	return "advance"
}

// Core executes decoded ARM-state instructions. It owns the register file
// and status registers; the bus is supplied per call.
type Core struct {
	regFile *RegFile
	alu     *ALU
	logger  *slog.Logger

	// cycles counts internal (I) cycles charged by the handlers.
	cycles uint64
}

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithCoreLogger sets the logger used for mode changes and exceptions.
func WithCoreLogger(logger *slog.Logger) CoreOption {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithRegFile makes the core operate on an existing register file.
func WithRegFile(regFile *RegFile) CoreOption {
	return func(c *Core) {
		c.regFile = regFile
	}
}

// NewCore creates a core in the reset state.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.regFile == nil {
		c.regFile = NewRegFile()
	}
	c.alu = NewALU(c.regFile)

	return c
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *RegFile {
	return c.regFile
}

// Cycles returns the number of internal cycles charged so far.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

func (c *Core) addCycle() {
	c.cycles++
}

// Reset puts the register file back into the reset state and clears the
// cycle counter.
func (c *Core) Reset() {
	*c.regFile = *NewRegFile()
	c.cycles = 0
}

// WordSize returns the instruction width of the current state in bytes.
func (c *Core) WordSize() uint32 {
	if c.regFile.CPSR.State() == StateTHUMB {
		return 2
	}
	return 4
}

// RawPC returns the program counter as held by the fetch stage.
func (c *Core) RawPC() uint32 {
	return c.regFile.RawPC()
}

// PrefetchPC returns the value an instruction observes when it reads R15:
// its own address plus two instruction widths.
func (c *Core) PrefetchPC(insn insts.Instruction) uint32 {
	return insn.Addr + 2*c.WordSize()
}

// readReg reads a register operand, substituting the prefetch-adjusted PC
// for R15.
func (c *Core) readReg(insn insts.Instruction, reg uint8) uint32 {
	if reg == insts.PC {
		return c.PrefetchPC(insn)
	}
	return c.regFile.ReadReg(reg)
}

// storedPC is the R15 value written to memory by STR and STM.
func (c *Core) storedPC(insn insts.Instruction) uint32 {
	return insn.Addr + 3*c.WordSize()
}

// ConditionPassed reports whether insn executes under the current flags.
func (c *Core) ConditionPassed(insn insts.Instruction) bool {
	return c.regFile.CPSR.CheckCondition(insn.Cond)
}

// Execute runs one decoded instruction. A failed condition is a no-op that
// advances the pipeline.
func (c *Core) Execute(bus Bus, insn insts.Instruction) (PipelineAction, error) {
	if !c.ConditionPassed(insn) {
		return ActionAdvance, nil
	}

	switch insn.Format {
	case insts.FormatBX:
		return c.execBX(insn)
	case insts.FormatBranch:
		return c.execBranch(insn)
	case insts.FormatDataProcessing:
		return c.execDataProcessing(insn)
	case insts.FormatSWI:
		return c.execSWI(insn)
	case insts.FormatLdrStr:
		return c.execLdrStr(bus, insn)
	case insts.FormatLdrStrHSImm, insts.FormatLdrStrHSReg:
		return c.execLdrStrHS(bus, insn)
	case insts.FormatLdmStm:
		return c.execLdmStm(bus, insn)
	case insts.FormatMRS:
		return c.execMRS(insn)
	case insts.FormatMSRReg:
		return c.execMSRReg(insn)
	case insts.FormatMSRFlags:
		return c.execMSRFlags(insn)
	case insts.FormatMultiply:
		return c.execMultiply(insn)
	case insts.FormatMultiplyLong:
		return c.execMultiplyLong(insn)
	case insts.FormatSwap:
		return c.execSwap(bus, insn)
	default:
		return ActionAdvance, &UnimplementedInstructionError{
			Addr: insn.Addr,
			Raw:  insn.Raw,
			Inst: insn,
		}
	}
}

func (c *Core) fatal(insn insts.Instruction, err error) error {
	return &FatalError{Addr: insn.Addr, Err: err}
}

func (c *Core) illegal(insn insts.Instruction, reason string) error {
	return &IllegalInstructionError{Addr: insn.Addr, Raw: insn.Raw, Reason: reason}
}

// changeMode swaps register banks and logs the transition.
func (c *Core) changeMode(m CPUMode) error {
	old := c.regFile.CPSR.Mode()
	if err := c.regFile.ChangeMode(m); err != nil {
		return err
	}
	if old != m {
		c.logger.Debug("mode change", "from", old, "to", m)
	}
	return nil
}
