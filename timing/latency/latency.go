// Package latency provides the ARM7TDMI instruction cycle model.
//
// Every instruction is charged a number of sequential (S), non-sequential
// (N) and internal (I) cycles following the ARM7TDMI data sheet, weighted
// by the TimingConfig.
package latency

import (
	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

// Cycles counts bus and internal cycles by kind.
type Cycles struct {
	S, N, I uint64
}

// Add returns the sum of c and o.
func (c Cycles) Add(o Cycles) Cycles {
	return Cycles{S: c.S + o.S, N: c.N + o.N, I: c.I + o.I}
}

// Table provides instruction cost lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// Weigh converts a cycle breakdown to clock cycles.
func (t *Table) Weigh(c Cycles) uint64 {
	return c.S*t.config.SCycle + c.N*t.config.NCycle + c.I*t.config.ICycle
}

// Cost returns the clock cycles of an executed instruction. internal is the
// number of I-cycles the core charged while executing it.
func (t *Table) Cost(inst insts.Instruction, action emu.PipelineAction, internal uint64) uint64 {
	return t.Weigh(t.Breakdown(inst, action, internal))
}

// Breakdown returns the S/N/I cycles of an executed instruction.
func (t *Table) Breakdown(inst insts.Instruction, action emu.PipelineAction, internal uint64) Cycles {
	c := Cycles{I: internal}
	refill := Cycles{S: 1, N: 1}

	switch inst.Format {
	case insts.FormatBranch, insts.FormatBX, insts.FormatSWI:
		c = c.Add(Cycles{S: 2, N: 1})

	case insts.FormatDataProcessing:
		c.S++
		if action == emu.ActionFlush {
			c = c.Add(refill)
		}

	case insts.FormatLdrStr, insts.FormatLdrStrHSImm, insts.FormatLdrStrHSReg:
		if !inst.LoadFlag() {
			c.N += 2
			break
		}
		c = c.Add(Cycles{S: 1, N: 1})
		if action == emu.ActionFlush {
			c = c.Add(refill)
		}

	case insts.FormatLdmStm:
		n := uint64(len(inst.RegisterList()))
		if inst.LoadFlag() {
			// The core counts an I-cycle per loaded word; LDM is priced at one.
			c = Cycles{S: n, N: 1, I: 1}
			if action == emu.ActionFlush {
				c = c.Add(refill)
			}
			break
		}
		if n > 0 {
			c.S += n - 1
		}
		c.N += 2

	case insts.FormatSwap:
		c = c.Add(Cycles{S: 1, N: 2})

	default:
		c.S++
	}

	return c
}

// SkipCost returns the cost of an instruction whose condition failed.
func (t *Table) SkipCost() uint64 {
	return t.config.SCycle
}

// ExceptionCost returns the cost of entering an interrupt handler.
func (t *Table) ExceptionCost() uint64 {
	return t.Weigh(Cycles{S: 2, N: 1})
}

// IsMemoryOp returns true if the instruction accesses data memory.
func (t *Table) IsMemoryOp(inst insts.Instruction) bool {
	switch inst.Format {
	case insts.FormatLdrStr, insts.FormatLdrStrHSImm, insts.FormatLdrStrHSReg,
		insts.FormatLdmStm, insts.FormatSwap:
		return true
	default:
		return false
	}
}

// IsLoadOp returns true if the instruction reads data memory.
func (t *Table) IsLoadOp(inst insts.Instruction) bool {
	if inst.Format == insts.FormatSwap {
		return true
	}
	return t.IsMemoryOp(inst) && inst.LoadFlag()
}

// IsStoreOp returns true if the instruction writes data memory.
func (t *Table) IsStoreOp(inst insts.Instruction) bool {
	if inst.Format == insts.FormatSwap {
		return true
	}
	return t.IsMemoryOp(inst) && !inst.LoadFlag()
}

// IsBranchOp returns true if the instruction is a branch.
func (t *Table) IsBranchOp(inst insts.Instruction) bool {
	return inst.Format == insts.FormatBranch || inst.Format == insts.FormatBX
}
