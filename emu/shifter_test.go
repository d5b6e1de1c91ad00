package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("Barrel shifter", func() {
	DescribeTable("immediate amounts",
		func(t insts.ShiftType, value uint32, amount uint8, carryIn bool, want uint32, wantCarry bool) {
			got, carry := emu.ShiftImmediate(t, value, amount, carryIn)

			Expect(got).To(Equal(want))
			Expect(carry).To(Equal(wantCarry))
		},
		Entry("LSL #0 keeps carry", insts.ShiftLSL, uint32(0x80000001), uint8(0), true, uint32(0x80000001), true),
		Entry("LSL #1", insts.ShiftLSL, uint32(0x80000001), uint8(1), false, uint32(0x00000002), true),
		Entry("LSL #31", insts.ShiftLSL, uint32(0x3), uint8(31), false, uint32(0x80000000), true),
		Entry("LSR #0 means #32", insts.ShiftLSR, uint32(0x80000000), uint8(0), false, uint32(0), true),
		Entry("LSR #4", insts.ShiftLSR, uint32(0x18), uint8(4), false, uint32(0x1), true),
		Entry("ASR #0 means #32 (negative)", insts.ShiftASR, uint32(0x80000000), uint8(0), false, uint32(0xFFFFFFFF), true),
		Entry("ASR #0 means #32 (positive)", insts.ShiftASR, uint32(0x7FFFFFFF), uint8(0), true, uint32(0), false),
		Entry("ASR #1", insts.ShiftASR, uint32(0x80000001), uint8(1), false, uint32(0xC0000000), true),
		Entry("ROR #0 means RRX", insts.ShiftROR, uint32(0x00000003), uint8(0), true, uint32(0x80000001), true),
		Entry("ROR #8", insts.ShiftROR, uint32(0x000000FF), uint8(8), false, uint32(0xFF000000), true),
	)

	DescribeTable("register amounts",
		func(t insts.ShiftType, value, amount uint32, carryIn bool, want uint32, wantCarry bool) {
			got, carry := emu.ShiftRegister(t, value, amount, carryIn)

			Expect(got).To(Equal(want))
			Expect(carry).To(Equal(wantCarry))
		},
		Entry("amount 0 is identity", insts.ShiftLSR, uint32(0x80000000), uint32(0), true, uint32(0x80000000), true),
		Entry("only the bottom byte counts", insts.ShiftLSL, uint32(1), uint32(0x101), false, uint32(2), false),
		Entry("LSL #32", insts.ShiftLSL, uint32(0x1), uint32(32), false, uint32(0), true),
		Entry("LSL #33", insts.ShiftLSL, uint32(0xFFFFFFFF), uint32(33), true, uint32(0), false),
		Entry("LSR #32", insts.ShiftLSR, uint32(0x80000000), uint32(32), false, uint32(0), true),
		Entry("LSR #40", insts.ShiftLSR, uint32(0xFFFFFFFF), uint32(40), true, uint32(0), false),
		Entry("ASR #40", insts.ShiftASR, uint32(0x80000000), uint32(40), false, uint32(0xFFFFFFFF), true),
		Entry("ROR #32", insts.ShiftROR, uint32(0x80000001), uint32(32), false, uint32(0x80000001), true),
		Entry("ROR #36", insts.ShiftROR, uint32(0x0000001F), uint32(36), false, uint32(0xF0000001), true),
	)

	It("should rotate immediates and keep carry for rotation 0", func() {
		v, c := emu.RotateImmediate(0xFF, 0, true)
		Expect(v).To(Equal(uint32(0xFF)))
		Expect(c).To(BeTrue())

		v, c = emu.RotateImmediate(0x3F, 2, false)
		Expect(v).To(Equal(uint32(0xC000000F)))
		Expect(c).To(BeTrue())
	})
})

var _ = Describe("ALU", func() {
	var (
		regs *emu.RegFile
		alu  *emu.ALU
	)

	BeforeEach(func() {
		regs = emu.NewRegFile()
		alu = emu.NewALU(regs)
	})

	result := func(op insts.Opcode, op1, op2 uint32) uint32 {
		v, _ := alu.Execute(op, op1, op2, false, false)
		return v
	}

	It("should set overflow on signed addition overflow", func() {
		result, writes := alu.Execute(insts.OpADD, 0x7FFFFFFF, 1, false, true)

		Expect(writes).To(BeTrue())
		Expect(result).To(Equal(uint32(0x80000000)))
		Expect(regs.CPSR.N()).To(BeTrue())
		Expect(regs.CPSR.V()).To(BeTrue())
		Expect(regs.CPSR.C()).To(BeFalse())
	})

	It("should set carry on unsigned addition overflow", func() {
		result, _ := alu.Execute(insts.OpADD, 0xFFFFFFFF, 1, false, true)

		Expect(result).To(BeZero())
		Expect(regs.CPSR.Z()).To(BeTrue())
		Expect(regs.CPSR.C()).To(BeTrue())
	})

	It("should clear carry on borrow", func() {
		result, writes := alu.Execute(insts.OpCMP, 1, 2, false, true)

		Expect(writes).To(BeFalse())
		Expect(result).To(Equal(uint32(0xFFFFFFFF)))
		Expect(regs.CPSR.C()).To(BeFalse())
		Expect(regs.CPSR.N()).To(BeTrue())
	})

	It("should use the carry for ADC, SBC and RSC", func() {
		regs.CPSR.SetC(true)
		Expect(result(insts.OpADC, 1, 1)).To(Equal(uint32(3)))
		Expect(result(insts.OpSBC, 5, 2)).To(Equal(uint32(3)))
		Expect(result(insts.OpRSC, 2, 5)).To(Equal(uint32(3)))

		regs.CPSR.SetC(false)
		Expect(result(insts.OpSBC, 5, 2)).To(Equal(uint32(2)))
	})

	It("should compute the logical operations", func() {
		Expect(result(insts.OpAND, 0xF0, 0x3C)).To(Equal(uint32(0x30)))
		Expect(result(insts.OpEOR, 0xF0, 0x3C)).To(Equal(uint32(0xCC)))
		Expect(result(insts.OpORR, 0xF0, 0x0F)).To(Equal(uint32(0xFF)))
		Expect(result(insts.OpBIC, 0xFF, 0x0F)).To(Equal(uint32(0xF0)))
		Expect(result(insts.OpMVN, 0, 0)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(result(insts.OpRSB, 1, 5)).To(Equal(uint32(4)))
	})

	It("should keep V and take C from the shifter for logical operations", func() {
		regs.CPSR.SetV(true)

		_, writes := alu.Execute(insts.OpTST, 0x1, 0x2, true, true)

		Expect(writes).To(BeFalse())
		Expect(regs.CPSR.Z()).To(BeTrue())
		Expect(regs.CPSR.C()).To(BeTrue())
		Expect(regs.CPSR.V()).To(BeTrue())
	})

	It("should leave flags alone when not asked", func() {
		before := regs.CPSR

		alu.Execute(insts.OpSUB, 0, 1, true, false)

		Expect(regs.CPSR).To(Equal(before))
	})
})
