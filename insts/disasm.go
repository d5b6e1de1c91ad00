package insts

import (
	"fmt"
	"strings"
)

func regName(r uint8) string {
	switch r {
	case SP:
		return "SP"
	case LR:
		return "LR"
	case PC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", r)
	}
}

func (s Shift) String() string {
	if s.ByRegister {
		return fmt.Sprintf("%v %s", s.Type, regName(s.Reg))
	}
	if s.Amount == 0 {
		switch s.Type {
		case ShiftLSL:
			return ""
		case ShiftROR:
			return "RRX"
		default:
			return fmt.Sprintf("%v #32", s.Type)
		}
	}
	return fmt.Sprintf("%v #%d", s.Type, s.Amount)
}

func (o Operand) String() string {
	sign := ""
	if !o.Added {
		sign = "-"
	}
	switch o.Kind {
	case OperandImmediate:
		return fmt.Sprintf("#%s0x%X", sign, o.Imm)
	case OperandRotatedImmediate:
		v := o.Imm>>o.Rotate | o.Imm<<((32-uint32(o.Rotate))&31)
		return fmt.Sprintf("#0x%X", v)
	default:
		if shift := o.Shift.String(); shift != "" {
			return fmt.Sprintf("%s%s, %s", sign, regName(o.Reg), shift)
		}
		return sign + regName(o.Reg)
	}
}

func registerListString(list []uint8) string {
	names := make([]string, len(list))
	for i, r := range list {
		names[i] = regName(r)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// String returns a one-line disassembly used by execution traces.
func (i Instruction) String() string {
	c := i.Cond.String()

	switch i.Format {
	case FormatBX:
		return fmt.Sprintf("BX%s %s", c, regName(i.Rn()))
	case FormatBranch:
		mnemonic := "B"
		if i.LinkFlag() {
			mnemonic = "BL"
		}
		target := int64(i.Addr) + 8 + int64(i.BranchOffset())
		return fmt.Sprintf("%s%s 0x%08X", mnemonic, c, uint32(target))
	case FormatDataProcessing:
		return i.dataProcessingString(c)
	case FormatMRS:
		return fmt.Sprintf("MRS%s %s, %s", c, regName(i.Rd()), i.psrName())
	case FormatMSRReg:
		return fmt.Sprintf("MSR%s %s, %s", c, i.psrName(), regName(i.Rm()))
	case FormatMSRFlags:
		op, _ := i.Operand2()
		return fmt.Sprintf("MSR%s %s_flg, %v", c, i.psrName(), op)
	case FormatMultiply:
		if i.AccumulateFlag() {
			return fmt.Sprintf("MLA%s%s %s, %s, %s, %s", c, i.sSuffix(),
				regName(i.Rd()), regName(i.Rm()), regName(i.Rs()), regName(i.Rn()))
		}
		return fmt.Sprintf("MUL%s%s %s, %s, %s", c, i.sSuffix(),
			regName(i.Rd()), regName(i.Rm()), regName(i.Rs()))
	case FormatMultiplyLong:
		sign := "U"
		if i.SignedFlag() {
			sign = "S"
		}
		op := "MULL"
		if i.AccumulateFlag() {
			op = "MLAL"
		}
		return fmt.Sprintf("%s%s%s%s %s, %s, %s, %s", sign, op, c, i.sSuffix(),
			regName(i.RdLo()), regName(i.RdHi()), regName(i.Rm()), regName(i.Rs()))
	case FormatSwap:
		b := ""
		if i.SwapByteFlag() {
			b = "B"
		}
		return fmt.Sprintf("SWP%s%s %s, %s, [%s]", c, b,
			regName(i.Rd()), regName(i.Rm()), regName(i.Rn()))
	case FormatLdrStr:
		suffix := ""
		if i.TransferSize() == 1 {
			suffix = "B"
		}
		op, _ := i.LdrStrOffset()
		return i.transferString(c, suffix, op)
	case FormatLdrStrHSImm, FormatLdrStrHSReg:
		t, _ := i.HalfwordTransferType()
		op, _ := i.LdrStrHSOffset()
		return i.transferString(c, t.String(), op)
	case FormatLdmStm:
		mnemonic := "STM"
		if i.LoadFlag() {
			mnemonic = "LDM"
		}
		mode := map[[2]bool]string{
			{false, true}: "IA", {true, true}: "IB",
			{false, false}: "DA", {true, false}: "DB",
		}[[2]bool{i.PreIndexFlag(), i.AddOffsetFlag()}]
		wb := ""
		if i.WriteBackFlag() {
			wb = "!"
		}
		user := ""
		if i.PSRForceUserFlag() {
			user = "^"
		}
		return fmt.Sprintf("%s%s%s %s%s, %s%s", mnemonic, c, mode,
			regName(i.Rn()), wb, registerListString(i.RegisterList()), user)
	case FormatSWI:
		return fmt.Sprintf("SWI%s 0x%06X", c, i.SWIComment())
	case FormatUndefined:
		return fmt.Sprintf("UND%s 0x%08X", c, i.Raw)
	case FormatCoprocessor:
		return fmt.Sprintf("CP%s 0x%08X", c, i.Raw)
	default:
		return fmt.Sprintf(".word 0x%08X", i.Raw)
	}
}

func (i Instruction) sSuffix() string {
	if i.SetCondFlag() {
		return "S"
	}
	return ""
}

func (i Instruction) psrName() string {
	if i.SPSRFlag() {
		return "SPSR"
	}
	return "CPSR"
}

func (i Instruction) dataProcessingString(c string) string {
	opcode := i.Opcode()
	op2, _ := i.Operand2()

	switch opcode {
	case OpMOV, OpMVN:
		return fmt.Sprintf("%v%s%s %s, %v", opcode, c, i.sSuffix(), regName(i.Rd()), op2)
	case OpTST, OpTEQ, OpCMP, OpCMN:
		return fmt.Sprintf("%v%s %s, %v", opcode, c, regName(i.Rn()), op2)
	default:
		return fmt.Sprintf("%v%s%s %s, %s, %v", opcode, c, i.sSuffix(),
			regName(i.Rd()), regName(i.Rn()), op2)
	}
}

func (i Instruction) transferString(c, suffix string, offset Operand) string {
	mnemonic := "STR"
	if i.LoadFlag() {
		mnemonic = "LDR"
	}
	base := regName(i.Rn())
	if i.PreIndexFlag() {
		wb := ""
		if i.WriteBackFlag() {
			wb = "!"
		}
		return fmt.Sprintf("%s%s%s %s, [%s, %v]%s", mnemonic, c, suffix,
			regName(i.Rd()), base, offset, wb)
	}
	return fmt.Sprintf("%s%s%s %s, [%s], %v", mnemonic, c, suffix,
		regName(i.Rd()), base, offset)
}
