// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/arm7sim/insts"
)

// CPUMode is the processor mode held in PSR bits [4:0].
type CPUMode uint32

// ARM7TDMI processor modes.
const (
	ModeUSR CPUMode = 0b10000 // User
	ModeFIQ CPUMode = 0b10001 // Fast interrupt
	ModeIRQ CPUMode = 0b10010 // Interrupt
	ModeSVC CPUMode = 0b10011 // Supervisor
	ModeABT CPUMode = 0b10111 // Abort
	ModeUND CPUMode = 0b11011 // Undefined
	ModeSYS CPUMode = 0b11111 // System (user registers, privileged)
)

// IsValid reports whether m is one of the seven ARMv4 modes.
func (m CPUMode) IsValid() bool {
	switch m {
	case ModeUSR, ModeFIQ, ModeIRQ, ModeSVC, ModeABT, ModeUND, ModeSYS:
		return true
	default:
		return false
	}
}

// SPSRIndex returns the saved status register slot of the mode. User and
// System modes have none.
func (m CPUMode) SPSRIndex() (int, bool) {
	switch m {
	case ModeFIQ:
		return 0, true
	case ModeIRQ:
		return 1, true
	case ModeSVC:
		return 2, true
	case ModeABT:
		return 3, true
	case ModeUND:
		return 4, true
	default:
		return 0, false
	}
}

// bankIndex returns the R13/R14 bank of the mode. User and System share 0.
func (m CPUMode) bankIndex() int {
	switch m {
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSVC:
		return 3
	case ModeABT:
		return 4
	case ModeUND:
		return 5
	default:
		return 0
	}
}

func (m CPUMode) String() string {
	switch m {
	case ModeUSR:
		return "USR"
	case ModeFIQ:
		return "FIQ"
	case ModeIRQ:
		return "IRQ"
	case ModeSVC:
		return "SVC"
	case ModeABT:
		return "ABT"
	case ModeUND:
		return "UND"
	case ModeSYS:
		return "SYS"
	default:
		return fmt.Sprintf("CPUMode(%#05b)", uint32(m))
	}
}

// CPUState is the instruction set the core fetches in.
type CPUState uint8

// Execution states.
const (
	StateARM CPUState = iota
	StateTHUMB
)

func (s CPUState) String() string {
	if s == StateTHUMB {
		return "THUMB"
	}
	return "ARM"
}

// PSR bit positions.
const (
	flagN     uint32 = 1 << 31
	flagZ     uint32 = 1 << 30
	flagC     uint32 = 1 << 29
	flagV     uint32 = 1 << 28
	flagI     uint32 = 1 << 7
	flagF     uint32 = 1 << 6
	flagT     uint32 = 1 << 5
	modeMask  uint32 = 0x1F
	flagsMask uint32 = 0xF0000000
)

// PSR is a program status register image (CPSR or SPSR).
type PSR uint32

func (p PSR) has(mask uint32) bool {
	return uint32(p)&mask != 0
}

func (p *PSR) set(mask uint32, v bool) {
	if v {
		*p = PSR(uint32(*p) | mask)
	} else {
		*p = PSR(uint32(*p) &^ mask)
	}
}

// N returns the negative flag.
func (p PSR) N() bool { return p.has(flagN) }

// Z returns the zero flag.
func (p PSR) Z() bool { return p.has(flagZ) }

// C returns the carry flag.
func (p PSR) C() bool { return p.has(flagC) }

// V returns the overflow flag.
func (p PSR) V() bool { return p.has(flagV) }

// IRQDisabled returns the I bit.
func (p PSR) IRQDisabled() bool { return p.has(flagI) }

// FIQDisabled returns the F bit.
func (p PSR) FIQDisabled() bool { return p.has(flagF) }

// SetN sets the negative flag.
func (p *PSR) SetN(v bool) { p.set(flagN, v) }

// SetZ sets the zero flag.
func (p *PSR) SetZ(v bool) { p.set(flagZ, v) }

// SetC sets the carry flag.
func (p *PSR) SetC(v bool) { p.set(flagC, v) }

// SetV sets the overflow flag.
func (p *PSR) SetV(v bool) { p.set(flagV, v) }

// SetIRQDisabled sets the I bit.
func (p *PSR) SetIRQDisabled(v bool) { p.set(flagI, v) }

// SetFIQDisabled sets the F bit.
func (p *PSR) SetFIQDisabled(v bool) { p.set(flagF, v) }

// Mode returns the processor mode field.
func (p PSR) Mode() CPUMode {
	return CPUMode(uint32(p) & modeMask)
}

// SetMode replaces the mode field. It does not bank registers; use
// RegFile.ChangeMode for that.
func (p *PSR) SetMode(m CPUMode) {
	*p = PSR(uint32(*p)&^modeMask | uint32(m)&modeMask)
}

// State returns ARM or THUMB from the T bit.
func (p PSR) State() CPUState {
	if p.has(flagT) {
		return StateTHUMB
	}
	return StateARM
}

// SetState sets the T bit.
func (p *PSR) SetState(s CPUState) {
	p.set(flagT, s == StateTHUMB)
}

// SetNZ sets N and Z from a 32-bit result.
func (p *PSR) SetNZ(result uint32) {
	p.SetN(result&(1<<31) != 0)
	p.SetZ(result == 0)
}

// CheckCondition evaluates an ARM condition code against the flags.
func (p PSR) CheckCondition(cond insts.Cond) bool {
	switch cond {
	case insts.CondEQ:
		return p.Z()
	case insts.CondNE:
		return !p.Z()
	case insts.CondCS:
		return p.C()
	case insts.CondCC:
		return !p.C()
	case insts.CondMI:
		return p.N()
	case insts.CondPL:
		return !p.N()
	case insts.CondVS:
		return p.V()
	case insts.CondVC:
		return !p.V()
	case insts.CondHI:
		return p.C() && !p.Z()
	case insts.CondLS:
		return !p.C() || p.Z()
	case insts.CondGE:
		return p.N() == p.V()
	case insts.CondLT:
		return p.N() != p.V()
	case insts.CondGT:
		return !p.Z() && p.N() == p.V()
	case insts.CondLE:
		return p.Z() || p.N() != p.V()
	case insts.CondAL:
		return true
	default:
		// NV is unpredictable on ARMv4; treat as never.
		return false
	}
}

func (p PSR) String() string {
	flag := func(set bool, c byte) byte {
		if set {
			return c
		}
		return '-'
	}
	return fmt.Sprintf("%c%c%c%c %c%c %v %v",
		flag(p.N(), 'N'), flag(p.Z(), 'Z'), flag(p.C(), 'C'), flag(p.V(), 'V'),
		flag(p.IRQDisabled(), 'I'), flag(p.FIQDisabled(), 'F'),
		p.State(), p.Mode())
}
