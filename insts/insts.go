// Package insts provides ARM7TDMI (ARMv4T) ARM-state instruction definitions
// and decoding.
//
// This package classifies 32-bit ARM machine words into instruction formats
// and exposes the class-specific fields of each format through accessor
// methods on an immutable Instruction value. It supports:
//   - Branches: B, BL, BX
//   - Data processing: AND..MVN with rotated-immediate or shifted-register operands
//   - PSR transfer: MRS, MSR (full register form and flag-only form)
//   - Multiply: MUL, MLA, UMULL, UMLAL, SMULL, SMLAL
//   - Single transfer: LDR, STR, LDRB, STRB, LDRH, STRH, LDRSB, LDRSH, SWP
//   - Block transfer: LDM, STM
//   - SWI, plus recognition of undefined and coprocessor encodings
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x8000, 0xE2810005) // ADD R0, R1, #5
//	fmt.Printf("%v Rd=%d Rn=%d\n", inst.Format, inst.Rd(), inst.Rn())
package insts
