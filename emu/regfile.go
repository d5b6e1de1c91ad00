// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RegFile represents the ARM7TDMI register file.
// It contains the 16 registers visible in the current mode (R15 is the
// program counter), the CPSR, one SPSR per exception mode, and the banked
// copies of R8-R14 that are swapped in and out on mode changes.
type RegFile struct {
	// gpr holds the registers of the current mode. gpr[15] is the raw PC.
	gpr [16]uint32

	// CPSR is the current program status register. Write the mode field
	// through ChangeMode so that the banks stay consistent.
	CPSR PSR

	spsr [5]PSR

	// R8-R12 for FIQ mode and for every other mode. Only the inactive set
	// is stored here; the active one lives in gpr.
	fiqHigh [5]uint32
	usrHigh [5]uint32

	// R13/R14 per bank, indexed by CPUMode.bankIndex.
	sp [6]uint32
	lr [6]uint32
}

// NewRegFile creates a register file in the reset state: Supervisor mode,
// ARM state, IRQ and FIQ masked.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.CPSR.SetMode(ModeSVC)
	r.CPSR.SetIRQDisabled(true)
	r.CPSR.SetFIQDisabled(true)
	return r
}

// ReadReg returns the stored value of a register in the current mode. For
// R15 this is the raw PC; prefetch adjustment is the caller's concern.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.gpr[reg&0xF]
}

// WriteReg writes a register in the current mode.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.gpr[reg&0xF] = value
}

// RawPC returns the program counter as held by the fetch stage.
func (r *RegFile) RawPC() uint32 {
	return r.gpr[15]
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint32) {
	r.gpr[15] = pc
}

// SPSR returns the saved status register of the current mode.
func (r *RegFile) SPSR() (PSR, error) {
	idx, ok := r.CPSR.Mode().SPSRIndex()
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNoSPSR, r.CPSR.Mode())
	}
	return r.spsr[idx], nil
}

// SetSPSR writes the saved status register of the current mode.
func (r *RegFile) SetSPSR(p PSR) error {
	idx, ok := r.CPSR.Mode().SPSRIndex()
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoSPSR, r.CPSR.Mode())
	}
	r.spsr[idx] = p
	return nil
}

// BankedSPSR returns the saved status register of mode m without switching
// to it.
func (r *RegFile) BankedSPSR(m CPUMode) (PSR, bool) {
	idx, ok := m.SPSRIndex()
	if !ok {
		return 0, false
	}
	return r.spsr[idx], true
}

// BankedReg returns R13 or R14 as seen from mode m.
func (r *RegFile) BankedReg(m CPUMode, reg uint8) uint32 {
	cur := r.CPSR.Mode()
	if m.bankIndex() == cur.bankIndex() {
		return r.gpr[reg&0xF]
	}
	switch reg {
	case 13:
		return r.sp[m.bankIndex()]
	case 14:
		return r.lr[m.bankIndex()]
	}
	if reg >= 8 && reg <= 12 && (m == ModeFIQ) != (cur == ModeFIQ) {
		if m == ModeFIQ {
			return r.fiqHigh[reg-8]
		}
		return r.usrHigh[reg-8]
	}
	return r.gpr[reg&0xF]
}

// ChangeMode switches the CPSR mode field to m and swaps the banked
// registers. The rest of the CPSR is untouched.
func (r *RegFile) ChangeMode(m CPUMode) error {
	if !m.IsValid() {
		return fmt.Errorf("%w: %#05b", ErrInvalidMode, uint32(m))
	}

	old := r.CPSR.Mode()
	if old == m {
		return nil
	}

	if oldBank, newBank := old.bankIndex(), m.bankIndex(); oldBank != newBank {
		r.sp[oldBank], r.lr[oldBank] = r.gpr[13], r.gpr[14]
		r.gpr[13], r.gpr[14] = r.sp[newBank], r.lr[newBank]
	}

	if (old == ModeFIQ) != (m == ModeFIQ) {
		save, load := &r.usrHigh, &r.fiqHigh
		if old == ModeFIQ {
			save, load = &r.fiqHigh, &r.usrHigh
		}
		copy(save[:], r.gpr[8:13])
		copy(r.gpr[8:13], load[:])
	}

	r.CPSR.SetMode(m)
	return nil
}

// Table renders the registers and status registers for a verbose dump.
func (r *RegFile) Table() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Registers (%v)", r.CPSR.Mode()))
	t.AppendHeader(table.Row{"R0-R3", "R4-R7", "R8-R11", "R12-R15"})

	for row := 0; row < 4; row++ {
		cells := make(table.Row, 4)
		for col := 0; col < 4; col++ {
			reg := col*4 + row
			cells[col] = fmt.Sprintf("%-3s %08X", regLabel(reg), r.gpr[reg])
		}
		t.AppendRow(cells)
	}

	t.AppendSeparator()
	spsr := "-"
	if p, err := r.SPSR(); err == nil {
		spsr = p.String()
	}
	t.AppendRow(table.Row{"CPSR", r.CPSR.String(), "SPSR", spsr})

	return t.Render()
}

func regLabel(reg int) string {
	switch reg {
	case 13:
		return "SP"
	case 14:
		return "LR"
	case 15:
		return "PC"
	default:
		return fmt.Sprintf("R%d", reg)
	}
}
