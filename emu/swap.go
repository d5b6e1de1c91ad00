package emu

import "github.com/sarchlab/arm7sim/insts"

// execSwap executes SWP and SWPB: Rd is loaded from [Rn] and Rm is stored
// there in the same bus transaction.
//
// Cycles: 1S+2N+1I.
func (c *Core) execSwap(bus Bus, insn insts.Instruction) (PipelineAction, error) {
	if insn.Rd() == insts.PC || insn.Rn() == insts.PC || insn.Rm() == insts.PC {
		return ActionAdvance, c.illegal(insn, "swap with PC operand")
	}

	addr := c.regFile.ReadReg(insn.Rn())
	src := c.regFile.ReadReg(insn.Rm())

	var loaded uint32
	if insn.SwapByteFlag() {
		loaded = uint32(bus.Read8(addr))
		bus.Write8(addr, uint8(src))
	} else {
		loaded = bus.Read32(addr)
		bus.Write32(addr, src)
	}

	c.regFile.WriteReg(insn.Rd(), loaded)
	c.addCycle()

	return ActionAdvance, nil
}
