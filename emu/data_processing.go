package emu

import "github.com/sarchlab/arm7sim/insts"

// execDataProcessing executes the sixteen ALU operations.
//
// Cycles: 1S+x+y. x=1I if the shift amount comes from a register,
// y=1S+1N if Rd=R15.
func (c *Core) execDataProcessing(insn insts.Instruction) (PipelineAction, error) {
	var op1 uint32
	if insn.Rn() == insts.PC {
		op1 = c.regFile.RawPC()
	} else {
		op1 = c.regFile.ReadReg(insn.Rn())
	}

	op2, carry, err := c.operand2(insn)
	if err != nil {
		return ActionAdvance, err
	}

	opcode := insn.Opcode()
	rd := insn.Rd()

	// S with a PC destination restores the CPSR instead of setting flags.
	restore := insn.SetCondFlag() && rd == insts.PC && !opcode.IsSettingFlags()
	setFlags := (opcode.IsSettingFlags() || insn.SetCondFlag()) && !restore

	result, writes := c.alu.Execute(opcode, op1, op2, carry, setFlags)
	if !writes {
		return ActionAdvance, nil
	}

	c.regFile.WriteReg(rd, result)
	if rd != insts.PC {
		return ActionAdvance, nil
	}

	if restore {
		if err := c.restoreCPSR(insn); err != nil {
			return ActionFlush, err
		}
	}

	return ActionFlush, nil
}

// operand2 evaluates the second ALU operand and the shifter carry-out.
func (c *Core) operand2(insn insts.Instruction) (uint32, bool, error) {
	op, err := insn.Operand2()
	if err != nil {
		return 0, false, err
	}

	carry := c.regFile.CPSR.C()

	if op.Kind == insts.OperandRotatedImmediate {
		value, carryOut := RotateImmediate(op.Imm, op.Rotate, carry)
		return value, carryOut, nil
	}

	value, carryOut := c.shiftedRegister(insn, op, carry)
	return value, carryOut, nil
}

// shiftedRegister passes a register operand through the barrel shifter. A
// register-specified amount costs one internal cycle.
func (c *Core) shiftedRegister(insn insts.Instruction, op insts.Operand, carry bool) (uint32, bool) {
	value := c.readReg(insn, op.Reg)

	if op.Shift.ByRegister {
		c.addCycle()
		amount := c.readReg(insn, op.Shift.Reg)
		return ShiftRegister(op.Shift.Type, value, amount, carry)
	}

	return ShiftImmediate(op.Shift.Type, value, op.Shift.Amount, carry)
}

// addressOffset returns the signed byte offset of a transfer addressing
// mode.
func (c *Core) addressOffset(insn insts.Instruction, op insts.Operand) uint32 {
	var value uint32
	if op.Kind == insts.OperandShiftedRegister {
		value, _ = c.shiftedRegister(insn, op, c.regFile.CPSR.C())
	} else {
		value = op.Imm
	}

	if !op.Added {
		return -value
	}
	return value
}
