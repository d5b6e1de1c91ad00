package insts

import "fmt"

// PC is the index of the program counter in the register file.
const PC uint8 = 15

// LR is the index of the link register.
const LR uint8 = 14

// SP is the index of the stack pointer.
const SP uint8 = 13

// Format represents an ARM-state instruction encoding class.
type Format uint8

// Instruction formats.
const (
	FormatUnknown        Format = iota
	FormatBX                    // Branch and exchange
	FormatBranch                // B, BL
	FormatDataProcessing        // ALU operations
	FormatMRS                   // PSR to register
	FormatMSRReg                // Register to full PSR
	FormatMSRFlags              // Register or immediate to PSR flag bits
	FormatMultiply              // MUL, MLA
	FormatMultiplyLong          // UMULL, UMLAL, SMULL, SMLAL
	FormatSwap                  // SWP, SWPB
	FormatLdrStr                // LDR, STR (word/byte)
	FormatLdrStrHSImm           // LDRH, STRH, LDRSB, LDRSH, immediate offset
	FormatLdrStrHSReg           // LDRH, STRH, LDRSB, LDRSH, register offset
	FormatLdmStm                // LDM, STM
	FormatSWI                   // Software interrupt
	FormatUndefined             // Architecturally undefined
	FormatCoprocessor           // CDP, LDC, STC, MCR, MRC
)

var formatNames = [...]string{
	FormatUnknown:        "Unknown",
	FormatBX:             "BX",
	FormatBranch:         "B_BL",
	FormatDataProcessing: "DP",
	FormatMRS:            "MRS",
	FormatMSRReg:         "MSR_REG",
	FormatMSRFlags:       "MSR_FLAGS",
	FormatMultiply:       "MUL_MLA",
	FormatMultiplyLong:   "MULL_MLAL",
	FormatSwap:           "SWP",
	FormatLdrStr:         "LDR_STR",
	FormatLdrStrHSImm:    "LDR_STR_HS_IMM",
	FormatLdrStrHSReg:    "LDR_STR_HS_REG",
	FormatLdmStm:         "LDM_STM",
	FormatSWI:            "SWI",
	FormatUndefined:      "Undefined",
	FormatCoprocessor:    "Coprocessor",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Cond represents an ARM condition code.
type Cond uint8

// ARM condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always
	CondNV Cond = 0b1111 // Never (reserved on ARMv4)
)

var condNames = [...]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "", "NV",
}

// String returns the assembler suffix for the condition. CondAL is empty.
func (c Cond) String() string {
	return condNames[c&0xF]
}

// Opcode is a data-processing operation.
type Opcode uint8

// Data-processing opcodes.
const (
	OpAND Opcode = iota
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpTST
	OpTEQ
	OpCMP
	OpCMN
	OpORR
	OpMOV
	OpBIC
	OpMVN
)

var opcodeNames = [...]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func (o Opcode) String() string {
	return opcodeNames[o&0xF]
}

// IsSettingFlags reports whether the opcode always updates the condition
// flags. These are the comparison forms, which never write Rd.
func (o Opcode) IsSettingFlags() bool {
	switch o {
	case OpTST, OpTEQ, OpCMP, OpCMN:
		return true
	default:
		return false
	}
}

// IsLogical reports whether the opcode takes its carry flag from the shifter
// rather than from the adder.
func (o Opcode) IsLogical() bool {
	switch o {
	case OpAND, OpEOR, OpTST, OpTEQ, OpORR, OpMOV, OpBIC, OpMVN:
		return true
	default:
		return false
	}
}

// ShiftType represents a barrel shifter operation.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right (RRX when immediate amount is 0)
)

var shiftNames = [...]string{"LSL", "LSR", "ASR", "ROR"}

func (s ShiftType) String() string {
	return shiftNames[s&0x3]
}

// Shift describes how a register operand is passed through the barrel
// shifter. The amount comes either from the instruction or from the bottom
// byte of register Reg.
type Shift struct {
	Type       ShiftType
	Amount     uint8
	ByRegister bool
	Reg        uint8
}

// OperandKind tags the variant held by an Operand.
type OperandKind uint8

// Operand kinds.
const (
	OperandImmediate OperandKind = iota
	OperandRotatedImmediate
	OperandShiftedRegister
)

// Operand is a barrel shifter input: a plain immediate (addressing offsets),
// an 8-bit immediate rotated right by an even amount, or a shifted register.
// Added is the sign of an addressing offset and is true for ALU operands.
type Operand struct {
	Kind   OperandKind
	Imm    uint32
	Rotate uint8
	Reg    uint8
	Shift  Shift
	Added  bool
}

// HalfwordTransferType selects the width and extension of a halfword/signed
// transfer.
type HalfwordTransferType uint8

// Halfword transfer types, encoded by the S and H bits.
const (
	UnsignedHalfword HalfwordTransferType = 0b01
	SignedByte       HalfwordTransferType = 0b10
	SignedHalfword   HalfwordTransferType = 0b11
)

func (t HalfwordTransferType) String() string {
	switch t {
	case UnsignedHalfword:
		return "H"
	case SignedByte:
		return "SB"
	case SignedHalfword:
		return "SH"
	default:
		return fmt.Sprintf("HalfwordTransferType(%d)", uint8(t))
	}
}

// FieldError reports an accessor applied to an instruction whose format does
// not carry the requested field.
type FieldError struct {
	Field  string
	Format Format
	Raw    uint32
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("instruction 0x%08X (%v) has no %s field", e.Raw, e.Format, e.Field)
}

// Instruction is a decoded ARM-state instruction. It is a value type; the
// class-specific fields are read from Raw by the accessor methods.
type Instruction struct {
	// Addr is the address the instruction was fetched from.
	Addr uint32

	// Raw is the 32-bit encoding.
	Raw uint32

	// Cond is the condition field (bits [31:28]).
	Cond Cond

	// Format is the encoding class chosen by the decoder.
	Format Format
}

func (i Instruction) bit(n uint) bool {
	return (i.Raw>>n)&1 == 1
}

func (i Instruction) field(lo, width uint) uint32 {
	return (i.Raw >> lo) & (1<<width - 1)
}

// Rn returns the base/first operand register. BX keeps its target in bits
// [3:0] and multiplies keep the accumulator in bits [15:12].
func (i Instruction) Rn() uint8 {
	switch i.Format {
	case FormatBX:
		return uint8(i.field(0, 4))
	case FormatMultiply:
		return uint8(i.field(12, 4))
	default:
		return uint8(i.field(16, 4))
	}
}

// Rd returns the destination register. Multiplies keep Rd in bits [19:16].
func (i Instruction) Rd() uint8 {
	if i.Format == FormatMultiply {
		return uint8(i.field(16, 4))
	}
	return uint8(i.field(12, 4))
}

// Rm returns the register in bits [3:0].
func (i Instruction) Rm() uint8 {
	return uint8(i.field(0, 4))
}

// Rs returns the register in bits [11:8].
func (i Instruction) Rs() uint8 {
	return uint8(i.field(8, 4))
}

// RdHi returns the high destination register of a long multiply.
func (i Instruction) RdHi() uint8 {
	return uint8(i.field(16, 4))
}

// RdLo returns the low destination register of a long multiply.
func (i Instruction) RdLo() uint8 {
	return uint8(i.field(12, 4))
}

// LinkFlag reports the L bit of B/BL.
func (i Instruction) LinkFlag() bool {
	return i.bit(24)
}

// BranchOffset returns the sign-extended byte offset of B/BL.
func (i Instruction) BranchOffset() int32 {
	return int32(i.Raw<<8) >> 6
}

// Opcode returns the data-processing operation.
func (i Instruction) Opcode() Opcode {
	return Opcode(i.field(21, 4))
}

// SetCondFlag reports the S bit.
func (i Instruction) SetCondFlag() bool {
	return i.bit(20)
}

// ImmediateFlag reports the I bit (bit 25).
func (i Instruction) ImmediateFlag() bool {
	return i.bit(25)
}

// LoadFlag reports the L bit of transfers.
func (i Instruction) LoadFlag() bool {
	return i.bit(20)
}

// PreIndexFlag reports the P bit.
func (i Instruction) PreIndexFlag() bool {
	return i.bit(24)
}

// AddOffsetFlag reports the U bit.
func (i Instruction) AddOffsetFlag() bool {
	return i.bit(23)
}

// WriteBackFlag reports whether the base register is updated. Post-indexed
// single transfers always write back.
func (i Instruction) WriteBackFlag() bool {
	switch i.Format {
	case FormatLdrStr, FormatLdrStrHSImm, FormatLdrStrHSReg:
		return i.bit(21) || !i.bit(24)
	default:
		return i.bit(21)
	}
}

// TransferSize returns 1 for byte transfers and 4 for word transfers.
func (i Instruction) TransferSize() uint32 {
	if i.bit(22) {
		return 1
	}
	return 4
}

// SPSRFlag reports whether a PSR transfer targets the saved status register.
func (i Instruction) SPSRFlag() bool {
	return i.bit(22)
}

// PSRForceUserFlag reports the S bit of LDM/STM.
func (i Instruction) PSRForceUserFlag() bool {
	return i.bit(22)
}

// AccumulateFlag reports the A bit of multiplies.
func (i Instruction) AccumulateFlag() bool {
	return i.bit(21)
}

// SignedFlag reports the U bit of long multiplies (set for signed).
func (i Instruction) SignedFlag() bool {
	return i.bit(22)
}

// SwapByteFlag reports the B bit of SWP.
func (i Instruction) SwapByteFlag() bool {
	return i.bit(22)
}

// MSRFieldMask returns the field mask bits [19:16] of an MSR.
func (i Instruction) MSRFieldMask() uint8 {
	return uint8(i.field(16, 4))
}

// SWIComment returns the 24-bit comment field of SWI.
func (i Instruction) SWIComment() uint32 {
	return i.field(0, 24)
}

// RegisterList returns the registers of an LDM/STM in ascending order.
func (i Instruction) RegisterList() []uint8 {
	list := make([]uint8, 0, 16)
	for r := uint8(0); r < 16; r++ {
		if i.bit(uint(r)) {
			list = append(list, r)
		}
	}
	return list
}

func (i Instruction) registerShift() Shift {
	s := Shift{Type: ShiftType(i.field(5, 2))}
	if i.bit(4) {
		s.ByRegister = true
		s.Reg = i.Rs()
	} else {
		s.Amount = uint8(i.field(7, 5))
	}
	return s
}

// Operand2 returns the second ALU operand of data processing and the source
// operand of MSR_FLAGS.
func (i Instruction) Operand2() (Operand, error) {
	if i.Format != FormatDataProcessing && i.Format != FormatMSRFlags {
		return Operand{}, &FieldError{Field: "operand2", Format: i.Format, Raw: i.Raw}
	}
	if i.ImmediateFlag() {
		return Operand{
			Kind:   OperandRotatedImmediate,
			Imm:    i.field(0, 8),
			Rotate: uint8(i.field(8, 4) * 2),
			Added:  true,
		}, nil
	}
	return Operand{
		Kind:  OperandShiftedRegister,
		Reg:   i.Rm(),
		Shift: i.registerShift(),
		Added: true,
	}, nil
}

// LdrStrOffset returns the addressing offset of LDR/STR. The I bit selects a
// shifted register; otherwise it is a 12-bit immediate.
func (i Instruction) LdrStrOffset() (Operand, error) {
	if i.Format != FormatLdrStr {
		return Operand{}, &FieldError{Field: "ldr/str offset", Format: i.Format, Raw: i.Raw}
	}
	if !i.ImmediateFlag() {
		return Operand{
			Kind:  OperandImmediate,
			Imm:   i.field(0, 12),
			Added: i.AddOffsetFlag(),
		}, nil
	}
	return Operand{
		Kind:  OperandShiftedRegister,
		Reg:   i.Rm(),
		Shift: i.registerShift(),
		Added: i.AddOffsetFlag(),
	}, nil
}

// LdrStrHSOffset returns the addressing offset of halfword/signed transfers.
func (i Instruction) LdrStrHSOffset() (Operand, error) {
	switch i.Format {
	case FormatLdrStrHSImm:
		return Operand{
			Kind:  OperandImmediate,
			Imm:   i.field(8, 4)<<4 | i.field(0, 4),
			Added: i.AddOffsetFlag(),
		}, nil
	case FormatLdrStrHSReg:
		return Operand{
			Kind:  OperandShiftedRegister,
			Reg:   i.Rm(),
			Shift: Shift{Type: ShiftLSL},
			Added: i.AddOffsetFlag(),
		}, nil
	default:
		return Operand{}, &FieldError{Field: "halfword offset", Format: i.Format, Raw: i.Raw}
	}
}

// HalfwordTransferType returns the S/H selection of a halfword transfer.
func (i Instruction) HalfwordTransferType() (HalfwordTransferType, error) {
	if i.Format != FormatLdrStrHSImm && i.Format != FormatLdrStrHSReg {
		return 0, &FieldError{Field: "halfword transfer type", Format: i.Format, Raw: i.Raw}
	}
	sh := HalfwordTransferType(i.field(5, 2))
	if sh == 0 {
		return 0, &FieldError{Field: "halfword transfer type", Format: i.Format, Raw: i.Raw}
	}
	return sh, nil
}
