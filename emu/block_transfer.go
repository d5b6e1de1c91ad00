package emu

import (
	"slices"

	"github.com/sarchlab/arm7sim/insts"
)

// execLdmStm executes LDM and STM. Descending transfers walk the register
// list backwards with a negative step so that the lowest register always
// lands at the lowest address. A load that includes the base register
// suppresses write-back. Every loaded word adds one internal cycle to the
// core's count.
//
//	LDM  nS+1N+1I (+1S+1N if PC is loaded)
//	STM  (n-1)S+2N
func (c *Core) execLdmStm(bus Bus, insn insts.Instruction) (PipelineAction, error) {
	if insn.PSRForceUserFlag() {
		return ActionAdvance, c.fatal(insn, ErrForceUser)
	}

	full := insn.PreIndexFlag()
	rn := insn.Rn()
	writeBack := insn.WriteBackFlag()
	action := ActionAdvance

	step := uint32(4)
	list := insn.RegisterList()
	if !insn.AddOffsetFlag() {
		step = ^uint32(3) // -4
		slices.Reverse(list)
	}

	addr := c.regFile.ReadReg(rn)

	if insn.LoadFlag() {
		if slices.Contains(list, rn) {
			writeBack = false
		}

		for _, r := range list {
			if full {
				addr += step
			}

			c.addCycle()
			c.regFile.WriteReg(r, bus.Read32(addr))
			if r == insts.PC {
				action = ActionFlush
			}

			if !full {
				addr += step
			}
		}
	} else {
		for _, r := range list {
			if full {
				addr += step
			}

			bus.Write32(addr, c.storeValue(insn, r))

			if !full {
				addr += step
			}
		}
	}

	if writeBack {
		c.regFile.WriteReg(rn, addr)
	}

	return action, nil
}
