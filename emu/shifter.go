package emu

import (
	"math/bits"

	"github.com/sarchlab/arm7sim/insts"
)

// ShiftImmediate applies a barrel shift whose amount is encoded in the
// instruction. An encoded amount of 0 means LSL #0 (carry unchanged),
// LSR #32, ASR #32 or RRX, depending on the type.
func ShiftImmediate(t insts.ShiftType, value uint32, amount uint8, carry bool) (uint32, bool) {
	n := uint(amount & 31)

	switch t {
	case insts.ShiftLSL:
		if n == 0 {
			return value, carry
		}
		return value << n, value&(1<<(32-n)) != 0
	case insts.ShiftLSR:
		if n == 0 {
			return 0, value&(1<<31) != 0
		}
		return value >> n, value&(1<<(n-1)) != 0
	case insts.ShiftASR:
		if n == 0 {
			return asrFill(value), value&(1<<31) != 0
		}
		return uint32(int32(value) >> n), value&(1<<(n-1)) != 0
	default:
		if n == 0 {
			out := value >> 1
			if carry {
				out |= 1 << 31
			}
			return out, value&1 != 0
		}
		return bits.RotateLeft32(value, -int(n)), value&(1<<(n-1)) != 0
	}
}

// ShiftRegister applies a barrel shift whose amount comes from the bottom
// byte of a register. Amount 0 leaves both value and carry unchanged;
// amounts of 32 and above saturate.
func ShiftRegister(t insts.ShiftType, value uint32, amount uint32, carry bool) (uint32, bool) {
	amount &= 0xFF
	if amount == 0 {
		return value, carry
	}

	switch t {
	case insts.ShiftLSL:
		switch {
		case amount < 32:
			return value << amount, value&(1<<(32-amount)) != 0
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}
	case insts.ShiftLSR:
		switch {
		case amount < 32:
			return value >> amount, value&(1<<(amount-1)) != 0
		case amount == 32:
			return 0, value&(1<<31) != 0
		default:
			return 0, false
		}
	case insts.ShiftASR:
		if amount < 32 {
			return uint32(int32(value) >> amount), value&(1<<(amount-1)) != 0
		}
		return asrFill(value), value&(1<<31) != 0
	default:
		n := amount & 31
		if n == 0 {
			return value, value&(1<<31) != 0
		}
		return bits.RotateLeft32(value, -int(n)), value&(1<<(n-1)) != 0
	}
}

// RotateImmediate expands an 8-bit immediate rotated right by rotate bits.
// A zero rotation keeps the carry; otherwise carry is bit 31 of the result.
func RotateImmediate(imm uint32, rotate uint8, carry bool) (uint32, bool) {
	if rotate == 0 {
		return imm, carry
	}
	v := bits.RotateLeft32(imm, -int(rotate))
	return v, v&(1<<31) != 0
}

func asrFill(value uint32) uint32 {
	if value&(1<<31) != 0 {
		return 0xFFFFFFFF
	}
	return 0
}
