package benchmarks

import (
	"encoding/binary"

	"github.com/sarchlab/arm7sim/insts"
)

// Helper functions for building ARM programs. Branch offsets are byte
// distances from the branch instruction to its target.

// BuildProgram assembles instruction words into a byte slice.
func BuildProgram(instrs ...uint32) []byte {
	program := make([]byte, len(instrs)*4)
	for i, inst := range instrs {
		binary.LittleEndian.PutUint32(program[i*4:], inst)
	}
	return program
}

// EncodeDPImm encodes a data-processing instruction with an unrotated
// 8-bit immediate.
func EncodeDPImm(cond insts.Cond, op insts.Opcode, setFlags bool, rd, rn uint8, imm uint8) uint32 {
	inst := uint32(cond)<<28 | 1<<25 | uint32(op)<<21
	if setFlags {
		inst |= 1 << 20
	}
	inst |= uint32(rn&0xF) << 16
	inst |= uint32(rd&0xF) << 12
	return inst | uint32(imm)
}

// EncodeDPReg encodes a data-processing instruction with an unshifted
// register operand.
func EncodeDPReg(cond insts.Cond, op insts.Opcode, setFlags bool, rd, rn, rm uint8) uint32 {
	inst := uint32(cond)<<28 | uint32(op)<<21
	if setFlags {
		inst |= 1 << 20
	}
	inst |= uint32(rn&0xF) << 16
	inst |= uint32(rd&0xF) << 12
	return inst | uint32(rm&0xF)
}

// EncodeMOVImm encodes MOV rd, #imm.
func EncodeMOVImm(rd uint8, imm uint8) uint32 {
	return EncodeDPImm(insts.CondAL, insts.OpMOV, false, rd, 0, imm)
}

// EncodeADDImm encodes ADD rd, rn, #imm.
func EncodeADDImm(rd, rn uint8, imm uint8, setFlags bool) uint32 {
	return EncodeDPImm(insts.CondAL, insts.OpADD, setFlags, rd, rn, imm)
}

// EncodeSUBImm encodes SUB rd, rn, #imm.
func EncodeSUBImm(rd, rn uint8, imm uint8, setFlags bool) uint32 {
	return EncodeDPImm(insts.CondAL, insts.OpSUB, setFlags, rd, rn, imm)
}

// EncodeADDReg encodes ADD rd, rn, rm.
func EncodeADDReg(rd, rn, rm uint8) uint32 {
	return EncodeDPReg(insts.CondAL, insts.OpADD, false, rd, rn, rm)
}

// EncodeB encodes a conditional branch.
func EncodeB(cond insts.Cond, offset int32) uint32 {
	return uint32(cond)<<28 | 0x0A000000 | uint32((offset-8)>>2)&0xFFFFFF
}

// EncodeBL encodes an unconditional branch with link.
func EncodeBL(offset int32) uint32 {
	return uint32(insts.CondAL)<<28 | 0x0B000000 | uint32((offset-8)>>2)&0xFFFFFF
}

// EncodeBXLR encodes BX LR.
func EncodeBXLR() uint32 {
	return uint32(insts.CondAL)<<28 | 0x012FFF1E
}

// EncodeSWI encodes SWI #imm.
func EncodeSWI(imm uint32) uint32 {
	return uint32(insts.CondAL)<<28 | 0x0F000000 | imm&0xFFFFFF
}

// EncodeLDR encodes LDR rd, [rn, #imm12].
func EncodeLDR(rd, rn uint8, imm12 uint16) uint32 {
	return uint32(insts.CondAL)<<28 | 0x05900000 | uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(imm12&0xFFF)
}

// EncodeSTR encodes STR rd, [rn, #imm12].
func EncodeSTR(rd, rn uint8, imm12 uint16) uint32 {
	return uint32(insts.CondAL)<<28 | 0x05800000 | uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(imm12&0xFFF)
}

// EncodePush encodes STMDB rn!, {list}.
func EncodePush(rn uint8, list uint16) uint32 {
	return uint32(insts.CondAL)<<28 | 0x09200000 | uint32(rn&0xF)<<16 | uint32(list)
}

// EncodePop encodes LDMIA rn!, {list}.
func EncodePop(rn uint8, list uint16) uint32 {
	return uint32(insts.CondAL)<<28 | 0x08B00000 | uint32(rn&0xF)<<16 | uint32(list)
}

// EncodeMUL encodes MUL rd, rm, rs.
func EncodeMUL(rd, rm, rs uint8) uint32 {
	return uint32(insts.CondAL)<<28 | uint32(rd&0xF)<<16 | uint32(rs&0xF)<<8 | 0x90 | uint32(rm&0xF)
}

// exit appends the hosted exit sequence; the exit code must already be in R0.
func exit(instrs ...uint32) []byte {
	return BuildProgram(append(instrs, EncodeMOVImm(7, 1), EncodeSWI(0))...)
}
