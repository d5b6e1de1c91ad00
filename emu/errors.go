package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arm7sim/insts"
)

var (
	// ErrThumbStateUnsupported is returned when the core is asked to fetch
	// in THUMB state.
	ErrThumbStateUnsupported = errors.New("THUMB state execution is not supported")

	// ErrMaxInstructions is returned by Step once the instruction limit is
	// reached.
	ErrMaxInstructions = errors.New("max instructions reached")

	// ErrNoSPSR is returned when the current mode has no saved status
	// register slot.
	ErrNoSPSR = errors.New("mode has no saved status register")

	// ErrInvalidMode is returned for a mode field that is not an ARMv4 mode.
	ErrInvalidMode = errors.New("invalid processor mode")

	// ErrForceUser is returned for LDM/STM with the S bit set.
	ErrForceUser = errors.New("PSR and force-user block transfer is not supported")

	// ErrSignedStore is returned for a halfword store whose S/H bits select
	// anything but an unsigned halfword.
	ErrSignedStore = errors.New("store of signed halfword/byte is not defined")
)

// UnimplementedInstructionError reports a decoded instruction that has no
// handler.
type UnimplementedInstructionError struct {
	Addr uint32
	Raw  uint32
	Inst insts.Instruction
}

func (e *UnimplementedInstructionError) Error() string {
	return fmt.Sprintf("unimplemented instruction 0x%08X at 0x%08X (%v)",
		e.Raw, e.Addr, e.Inst.Format)
}

// IllegalInstructionError reports an encoding whose field combination has
// no defined behaviour, such as write-back into the transfer register.
type IllegalInstructionError struct {
	Addr   uint32
	Raw    uint32
	Reason string
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%08X at 0x%08X: %s", e.Raw, e.Addr, e.Reason)
}

// FatalError reports an architectural invariant violation. Execution must
// not continue after it.
type FatalError struct {
	Addr uint32
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal at 0x%08X: %v", e.Addr, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
