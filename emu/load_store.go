package emu

import "github.com/sarchlab/arm7sim/insts"

// transferAddress checks the write-back rule and computes the access
// address and the effective (written-back) address of a single transfer.
func (c *Core) transferAddress(insn insts.Instruction, offset insts.Operand) (addr, effective uint32, err error) {
	if insn.WriteBackFlag() && insn.Rd() == insn.Rn() {
		return 0, 0, c.illegal(insn, "write-back with Rd == Rn")
	}

	base := c.readReg(insn, insn.Rn())
	effective = base + c.addressOffset(insn, offset)

	if insn.PreIndexFlag() {
		return effective, effective, nil
	}
	return base, effective, nil
}

// storeValue returns the value stored for register rd.
func (c *Core) storeValue(insn insts.Instruction, rd uint8) uint32 {
	if rd == insts.PC {
		return c.storedPC(insn)
	}
	return c.regFile.ReadReg(rd)
}

// execLdrStr executes word and unsigned byte LDR/STR.
//
//	LDR{cond}{B} Rd,<Address>  1S+1N+1I+y  (y=1S+1N if Rd=R15)
//	STR{cond}{B} Rd,<Address>  2N
func (c *Core) execLdrStr(bus Bus, insn insts.Instruction) (PipelineAction, error) {
	offset, err := insn.LdrStrOffset()
	if err != nil {
		return ActionAdvance, err
	}

	addr, effective, err := c.transferAddress(insn, offset)
	if err != nil {
		return ActionAdvance, err
	}

	action := ActionAdvance

	if insn.LoadFlag() {
		var data uint32
		if insn.TransferSize() == 1 {
			data = uint32(bus.Read8(addr))
		} else {
			data = bus.Read32(addr)
		}

		c.regFile.WriteReg(insn.Rd(), data)
		c.addCycle()

		if insn.Rd() == insts.PC {
			action = ActionFlush
		}
	} else {
		value := c.storeValue(insn, insn.Rd())
		if insn.TransferSize() == 1 {
			bus.Write8(addr, uint8(value))
		} else {
			bus.Write32(addr, value)
		}
	}

	if insn.WriteBackFlag() {
		c.regFile.WriteReg(insn.Rn(), effective)
	}

	return action, nil
}

// execLdrStrHS executes LDRH, STRH, LDRSB and LDRSH.
//
//	LDR{cond}H|SH|SB Rd,<Address>  1S+1N+1I+y  (y=1S+1N if Rd=R15)
//	STR{cond}H Rd,<Address>        2N
func (c *Core) execLdrStrHS(bus Bus, insn insts.Instruction) (PipelineAction, error) {
	offset, err := insn.LdrStrHSOffset()
	if err != nil {
		return ActionAdvance, err
	}

	kind, err := insn.HalfwordTransferType()
	if err != nil {
		return ActionAdvance, err
	}

	addr, effective, err := c.transferAddress(insn, offset)
	if err != nil {
		return ActionAdvance, err
	}

	action := ActionAdvance

	if insn.LoadFlag() {
		var data uint32
		switch kind {
		case insts.SignedByte:
			data = uint32(int32(int8(bus.Read8(addr))))
		case insts.SignedHalfword:
			data = uint32(int32(int16(bus.Read16(addr))))
		default:
			data = uint32(bus.Read16(addr))
		}

		c.regFile.WriteReg(insn.Rd(), data)
		c.addCycle()

		if insn.Rd() == insts.PC {
			action = ActionFlush
		}
	} else {
		if kind != insts.UnsignedHalfword {
			return ActionAdvance, c.fatal(insn, ErrSignedStore)
		}
		bus.Write16(addr, uint16(c.storeValue(insn, insn.Rd())))
	}

	if insn.WriteBackFlag() {
		c.regFile.WriteReg(insn.Rn(), effective)
	}

	return action, nil
}
