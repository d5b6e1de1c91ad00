package emu

import (
	"fmt"

	"github.com/sarchlab/arm7sim/insts"
)

// Exception is an ARM7TDMI exception class.
type Exception uint8

// Exceptions in vector order.
const (
	ExceptionReset Exception = iota
	ExceptionUndefined
	ExceptionSoftwareInterrupt
	ExceptionPrefetchAbort
	ExceptionDataAbort
	ExceptionIRQ
	ExceptionFIQ
)

var exceptionInfo = [...]struct {
	name   string
	vector uint32
	mode   CPUMode
}{
	ExceptionReset:             {"Reset", 0x00, ModeSVC},
	ExceptionUndefined:         {"Undefined", 0x04, ModeUND},
	ExceptionSoftwareInterrupt: {"SoftwareInterrupt", 0x08, ModeSVC},
	ExceptionPrefetchAbort:     {"PrefetchAbort", 0x0C, ModeABT},
	ExceptionDataAbort:         {"DataAbort", 0x10, ModeABT},
	ExceptionIRQ:               {"IRQ", 0x18, ModeIRQ},
	ExceptionFIQ:               {"FIQ", 0x1C, ModeFIQ},
}

// Vector returns the address the exception jumps to.
func (e Exception) Vector() uint32 {
	return exceptionInfo[e].vector
}

// Mode returns the mode the exception is taken in.
func (e Exception) Mode() CPUMode {
	return exceptionInfo[e].mode
}

func (e Exception) String() string {
	if int(e) < len(exceptionInfo) {
		return exceptionInfo[e].name
	}
	return fmt.Sprintf("Exception(%d)", uint8(e))
}

// Exception enters exception e: the CPSR is saved into the SPSR of the
// target mode, the banks are switched, LR receives the return address, the
// core returns to ARM state with IRQs masked, and PC is set to the vector.
func (c *Core) Exception(e Exception) error {
	if int(e) >= len(exceptionInfo) {
		return fmt.Errorf("%w: %v", ErrInvalidMode, e)
	}

	saved := c.regFile.CPSR

	lr := c.regFile.RawPC() - c.WordSize()
	if e == ExceptionDataAbort {
		lr = c.regFile.RawPC()
	}

	if err := c.changeMode(e.Mode()); err != nil {
		return err
	}
	if err := c.regFile.SetSPSR(saved); err != nil {
		return err
	}

	c.regFile.WriteReg(insts.LR, lr)
	c.regFile.CPSR.SetState(StateARM)
	c.regFile.CPSR.SetIRQDisabled(true)
	if e == ExceptionReset || e == ExceptionFIQ {
		c.regFile.CPSR.SetFIQDisabled(true)
	}
	c.regFile.SetPC(e.Vector())

	c.logger.Debug("exception entry",
		"exception", e,
		"vector", fmt.Sprintf("0x%02X", e.Vector()),
		"lr", fmt.Sprintf("0x%08X", lr))

	return nil
}

// execSWI takes the software interrupt exception.
//
// Cycles: 2S+1N.
func (c *Core) execSWI(insn insts.Instruction) (PipelineAction, error) {
	if err := c.Exception(ExceptionSoftwareInterrupt); err != nil {
		return ActionFlush, c.fatal(insn, err)
	}
	return ActionFlush, nil
}
