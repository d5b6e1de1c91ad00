// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"math/bits"

	"github.com/sarchlab/arm7sim/insts"
)

// ALU implements the ARM data-processing operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Execute computes op over op1 and op2. shifterCarry is the carry-out of
// the barrel shifter, used as C by the logical operations. When setFlags is
// true the CPSR condition flags are updated. The second return value is
// false for the comparison opcodes, which produce no register result.
func (a *ALU) Execute(op insts.Opcode, op1, op2 uint32, shifterCarry, setFlags bool) (uint32, bool) {
	var result uint32
	carryIn := uint32(0)
	if a.regFile.CPSR.C() {
		carryIn = 1
	}

	switch op {
	case insts.OpAND, insts.OpTST:
		result = op1 & op2
	case insts.OpEOR, insts.OpTEQ:
		result = op1 ^ op2
	case insts.OpORR:
		result = op1 | op2
	case insts.OpMOV:
		result = op2
	case insts.OpBIC:
		result = op1 &^ op2
	case insts.OpMVN:
		result = ^op2
	case insts.OpADD, insts.OpCMN:
		result = a.addWithCarry(op1, op2, 0, setFlags)
	case insts.OpADC:
		result = a.addWithCarry(op1, op2, carryIn, setFlags)
	case insts.OpSUB, insts.OpCMP:
		result = a.addWithCarry(op1, ^op2, 1, setFlags)
	case insts.OpSBC:
		result = a.addWithCarry(op1, ^op2, carryIn, setFlags)
	case insts.OpRSB:
		result = a.addWithCarry(op2, ^op1, 1, setFlags)
	case insts.OpRSC:
		result = a.addWithCarry(op2, ^op1, carryIn, setFlags)
	}

	if op.IsLogical() && setFlags {
		a.setLogicFlags32(result, shifterCarry)
	}

	return result, !op.IsSettingFlags()
}

// addWithCarry computes x + y + carryIn. Subtraction is x + ^y + 1, so C is
// the inverted borrow as the architecture defines it.
func (a *ALU) addWithCarry(x, y, carryIn uint32, setFlags bool) uint32 {
	sum, carryOut := bits.Add32(x, y, carryIn)
	if setFlags {
		a.setArithFlags32(x, y, sum, carryOut)
	}
	return sum
}

// setArithFlags32 sets NZCV flags for 32-bit addition.
func (a *ALU) setArithFlags32(x, y, result, carryOut uint32) {
	a.regFile.CPSR.SetNZ(result)
	a.regFile.CPSR.SetC(carryOut == 1)
	a.regFile.CPSR.SetV(((x^result)&(y^result))>>31 == 1)
}

// setLogicFlags32 sets NZ from the result and C from the shifter. V is
// preserved.
func (a *ALU) setLogicFlags32(result uint32, carry bool) {
	a.regFile.CPSR.SetNZ(result)
	a.regFile.CPSR.SetC(carry)
}
