package emu

import "github.com/sarchlab/arm7sim/insts"

// multiplierCycles returns the early-termination count m for multiplier
// rs: 1 to 4 depending on how many top bytes are all zeros (or all ones
// when signed is true).
func multiplierCycles(rs uint32, signed bool) int {
	m := 4
	for _, mask := range []uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000} {
		top := rs & mask
		if top == 0 || (signed && top == mask) {
			return 5 - m
		}
		m--
	}
	return 4
}

// execMultiply executes MUL and MLA.
//
// Cycles: 1S+mI (+1I for MLA).
func (c *Core) execMultiply(insn insts.Instruction) (PipelineAction, error) {
	if insn.Rd() == insts.PC {
		return ActionAdvance, c.illegal(insn, "multiply into PC")
	}

	rs := c.regFile.ReadReg(insn.Rs())
	result := c.regFile.ReadReg(insn.Rm()) * rs

	cycles := multiplierCycles(rs, true)
	if insn.AccumulateFlag() {
		result += c.regFile.ReadReg(insn.Rn())
		cycles++
	}
	for i := 0; i < cycles; i++ {
		c.addCycle()
	}

	c.regFile.WriteReg(insn.Rd(), result)
	if insn.SetCondFlag() {
		c.regFile.CPSR.SetNZ(result)
	}

	return ActionAdvance, nil
}

// execMultiplyLong executes UMULL, UMLAL, SMULL and SMLAL.
//
// Cycles: 1S+(m+1)I (+1I for the accumulating forms).
func (c *Core) execMultiplyLong(insn insts.Instruction) (PipelineAction, error) {
	rdHi, rdLo := insn.RdHi(), insn.RdLo()
	if rdHi == insts.PC || rdLo == insts.PC {
		return ActionAdvance, c.illegal(insn, "long multiply into PC")
	}
	if rdHi == rdLo {
		return ActionAdvance, c.illegal(insn, "RdHi == RdLo")
	}

	rm := c.regFile.ReadReg(insn.Rm())
	rs := c.regFile.ReadReg(insn.Rs())

	var result uint64
	if insn.SignedFlag() {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	} else {
		result = uint64(rm) * uint64(rs)
	}

	cycles := multiplierCycles(rs, insn.SignedFlag()) + 1
	if insn.AccumulateFlag() {
		result += uint64(c.regFile.ReadReg(rdHi))<<32 | uint64(c.regFile.ReadReg(rdLo))
		cycles++
	}
	for i := 0; i < cycles; i++ {
		c.addCycle()
	}

	c.regFile.WriteReg(rdLo, uint32(result))
	c.regFile.WriteReg(rdHi, uint32(result>>32))
	if insn.SetCondFlag() {
		c.regFile.CPSR.SetN(result&(1<<63) != 0)
		c.regFile.CPSR.SetZ(result == 0)
	}

	return ActionAdvance, nil
}
