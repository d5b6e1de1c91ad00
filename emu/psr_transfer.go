package emu

import "github.com/sarchlab/arm7sim/insts"

// execMRS copies the CPSR or the current SPSR into Rd.
func (c *Core) execMRS(insn insts.Instruction) (PipelineAction, error) {
	if insn.Rd() == insts.PC {
		return ActionAdvance, c.illegal(insn, "MRS into PC")
	}

	value := c.regFile.CPSR
	if insn.SPSRFlag() {
		spsr, err := c.regFile.SPSR()
		if err != nil {
			return ActionAdvance, c.fatal(insn, err)
		}
		value = spsr
	}

	c.regFile.WriteReg(insn.Rd(), uint32(value))

	return ActionAdvance, nil
}

// execMSRReg installs Rm as a full status register image. Writing the SPSR
// from a mode without one is fatal. A CPSR write whose mode differs from the
// current one swaps the register banks before the new value is installed.
func (c *Core) execMSRReg(insn insts.Instruction) (PipelineAction, error) {
	newPSR := PSR(c.readReg(insn, insn.Rm()))

	if insn.SPSRFlag() {
		if err := c.regFile.SetSPSR(newPSR); err != nil {
			return ActionAdvance, c.fatal(insn, err)
		}
		return ActionAdvance, nil
	}

	if newPSR.Mode() != c.regFile.CPSR.Mode() {
		if err := c.changeMode(newPSR.Mode()); err != nil {
			return ActionAdvance, c.fatal(insn, err)
		}
	}
	c.regFile.CPSR = newPSR

	return ActionAdvance, nil
}

// execMSRFlags writes only the condition flags (bits [31:28]) of the CPSR
// or SPSR from a register or rotated immediate.
func (c *Core) execMSRFlags(insn insts.Instruction) (PipelineAction, error) {
	op, err := insn.Operand2()
	if err != nil {
		return ActionAdvance, err
	}

	var value uint32
	if op.Kind == insts.OperandRotatedImmediate {
		value, _ = RotateImmediate(op.Imm, op.Rotate, false)
	} else {
		value = c.readReg(insn, op.Reg)
	}

	merge := func(p PSR) PSR {
		return PSR(uint32(p)&^flagsMask | value&flagsMask)
	}

	if insn.SPSRFlag() {
		spsr, err := c.regFile.SPSR()
		if err != nil {
			return ActionAdvance, c.fatal(insn, err)
		}
		// SetSPSR cannot fail once SPSR succeeded.
		_ = c.regFile.SetSPSR(merge(spsr))
		return ActionAdvance, nil
	}

	c.regFile.CPSR = merge(c.regFile.CPSR)

	return ActionAdvance, nil
}

// restoreCPSR copies the current mode's SPSR into the CPSR, as done by a
// flag-setting data-processing write to PC.
func (c *Core) restoreCPSR(insn insts.Instruction) error {
	spsr, err := c.regFile.SPSR()
	if err != nil {
		return c.fatal(insn, err)
	}
	if err := c.changeMode(spsr.Mode()); err != nil {
		return c.fatal(insn, err)
	}
	c.regFile.CPSR = spsr
	return nil
}
