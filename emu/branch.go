package emu

import "github.com/sarchlab/arm7sim/insts"

// execBranch executes B and BL. The target is the current PC plus the
// sign-extended offset; BL first saves the address of the next instruction.
//
// Cycles: 2S+1N.
func (c *Core) execBranch(insn insts.Instruction) (PipelineAction, error) {
	if insn.LinkFlag() {
		c.regFile.WriteReg(insts.LR, (insn.Addr+c.WordSize())&^1)
	}

	target := uint32(int32(c.regFile.RawPC()) + insn.BranchOffset())
	c.regFile.SetPC(target &^ 1)

	return ActionFlush, nil
}

// execBX executes BX. Bit 0 of the target selects THUMB (1) or ARM (0).
//
// Cycles: 2S+1N.
func (c *Core) execBX(insn insts.Instruction) (PipelineAction, error) {
	target := c.readReg(insn, insn.Rn())

	if target&1 == 1 {
		c.regFile.CPSR.SetState(StateTHUMB)
	} else {
		c.regFile.CPSR.SetState(StateARM)
	}

	c.regFile.SetPC(target &^ 1)

	return ActionFlush, nil
}
