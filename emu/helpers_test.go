package emu_test

import (
	"encoding/binary"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var testDecoder = insts.NewDecoder()

// execute runs word as if it had been fetched from addr, with the PC in the
// state the prefetch queue leaves it in.
func execute(core *emu.Core, bus emu.Bus, addr, word uint32) (emu.PipelineAction, error) {
	core.RegFile().SetPC(addr + 8)
	return core.Execute(bus, testDecoder.Decode(addr, word))
}

// program assembles instruction words into little-endian bytes.
func program(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

// snapshot captures the visible registers and CPSR.
func snapshot(r *emu.RegFile) ([16]uint32, emu.PSR) {
	var regs [16]uint32
	for i := range regs {
		regs[i] = r.ReadReg(uint8(i))
	}
	return regs, r.CPSR
}
