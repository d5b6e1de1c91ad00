package emu_test

import (
	"errors"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("Core", func() {
	var (
		mockCtrl *gomock.Controller
		bus      *MockBus
		core     *emu.Core
		regs     *emu.RegFile
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		bus = NewMockBus(mockCtrl)
		core = emu.NewCore()
		regs = core.RegFile()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start in Supervisor mode with interrupts masked", func() {
		Expect(regs.CPSR.Mode()).To(Equal(emu.ModeSVC))
		Expect(regs.CPSR.State()).To(Equal(emu.StateARM))
		Expect(regs.CPSR.IRQDisabled()).To(BeTrue())
		Expect(regs.CPSR.FIQDisabled()).To(BeTrue())
		Expect(core.WordSize()).To(Equal(uint32(4)))
	})

	It("should report the prefetch-adjusted PC separately from the raw PC", func() {
		insn := testDecoder.Decode(0x100, 0xE1A00000)
		regs.SetPC(0x2000)

		Expect(core.PrefetchPC(insn)).To(Equal(uint32(0x108)))
		Expect(core.RawPC()).To(Equal(uint32(0x2000)))
	})

	Describe("condition evaluation", func() {
		DescribeTable("a failing condition has no side effects",
			func(cond insts.Cond, setup func(p *emu.PSR)) {
				setup(&regs.CPSR)
				regs.WriteReg(0, 0x11)
				regs.WriteReg(1, 0x400)
				before, cpsr := snapshot(regs)
				before[15] = 0x108

				// STR R0, [R1], no bus call is expected.
				action, err := execute(core, bus, 0x100, uint32(cond)<<28|0x05810000)

				Expect(err).NotTo(HaveOccurred())
				Expect(action).To(Equal(emu.ActionAdvance))
				after, cpsrAfter := snapshot(regs)
				Expect(after).To(Equal(before))
				Expect(cpsrAfter).To(Equal(cpsr))
				Expect(core.Cycles()).To(BeZero())
			},
			Entry("EQ with Z clear", insts.CondEQ, func(p *emu.PSR) { p.SetZ(false) }),
			Entry("NE with Z set", insts.CondNE, func(p *emu.PSR) { p.SetZ(true) }),
			Entry("CS with C clear", insts.CondCS, func(p *emu.PSR) { p.SetC(false) }),
			Entry("CC with C set", insts.CondCC, func(p *emu.PSR) { p.SetC(true) }),
			Entry("MI with N clear", insts.CondMI, func(p *emu.PSR) { p.SetN(false) }),
			Entry("PL with N set", insts.CondPL, func(p *emu.PSR) { p.SetN(true) }),
			Entry("VS with V clear", insts.CondVS, func(p *emu.PSR) { p.SetV(false) }),
			Entry("VC with V set", insts.CondVC, func(p *emu.PSR) { p.SetV(true) }),
			Entry("HI with C clear", insts.CondHI, func(p *emu.PSR) { p.SetC(false) }),
			Entry("LS with C set and Z clear", insts.CondLS, func(p *emu.PSR) {
				p.SetC(true)
				p.SetZ(false)
			}),
			Entry("GE with N != V", insts.CondGE, func(p *emu.PSR) { p.SetN(true) }),
			Entry("LT with N == V", insts.CondLT, func(p *emu.PSR) { p.SetN(false) }),
			Entry("GT with Z set", insts.CondGT, func(p *emu.PSR) { p.SetZ(true) }),
			Entry("LE with Z clear and N == V", insts.CondLE, func(p *emu.PSR) { p.SetZ(false) }),
			Entry("NV", insts.CondNV, func(p *emu.PSR) {}),
		)

		It("should report unimplemented formats with the instruction", func() {
			_, err := execute(core, bus, 0x200, 0xEE000000)

			var unimpl *emu.UnimplementedInstructionError
			Expect(errors.As(err, &unimpl)).To(BeTrue())
			Expect(unimpl.Addr).To(Equal(uint32(0x200)))
			Expect(unimpl.Raw).To(Equal(uint32(0xEE000000)))
			Expect(unimpl.Inst.Format).To(Equal(insts.FormatCoprocessor))
		})

		It("should report the undefined encoding as unimplemented", func() {
			_, err := execute(core, bus, 0x200, 0xE6000010)

			var unimpl *emu.UnimplementedInstructionError
			Expect(errors.As(err, &unimpl)).To(BeTrue())
		})
	})

	Describe("B and BL", func() {
		DescribeTable("BL links to the next instruction and flushes",
			func(word uint32, target uint32) {
				action, err := execute(core, bus, 0x1000, word)

				Expect(err).NotTo(HaveOccurred())
				Expect(action).To(Equal(emu.ActionFlush))
				Expect(regs.ReadReg(insts.LR)).To(Equal(uint32(0x1004)))
				Expect(regs.RawPC()).To(Equal(target))
			},
			Entry("offset 0", uint32(0xEB000000), uint32(0x1008)),
			Entry("offset -8", uint32(0xEBFFFFFE), uint32(0x1000)),
			Entry("offset +0x40", uint32(0xEB000010), uint32(0x1048)),
			Entry("offset -0x1000", uint32(0xEBFFFC00), uint32(0x0008)),
		)

		It("should not touch LR without the link bit", func() {
			regs.WriteReg(insts.LR, 0xCAFE)

			action, err := execute(core, bus, 0x1000, 0xEA000002)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionFlush))
			Expect(regs.ReadReg(insts.LR)).To(Equal(uint32(0xCAFE)))
			Expect(regs.RawPC()).To(Equal(uint32(0x1010)))
		})
	})

	Describe("BX", func() {
		DescribeTable("bit 0 selects the state and is cleared from PC",
			func(target uint32, state emu.CPUState) {
				regs.WriteReg(1, target)

				action, err := execute(core, bus, 0x1000, 0xE12FFF11)

				Expect(err).NotTo(HaveOccurred())
				Expect(action).To(Equal(emu.ActionFlush))
				Expect(regs.CPSR.State()).To(Equal(state))
				Expect(regs.RawPC()).To(Equal(target &^ 1))
			},
			Entry("ARM target", uint32(0x2000), emu.StateARM),
			Entry("THUMB target", uint32(0x2001), emu.StateTHUMB),
			Entry("high THUMB target", uint32(0xFFFFFFFF), emu.StateTHUMB),
		)

		It("should switch back to ARM from THUMB", func() {
			regs.CPSR.SetState(emu.StateTHUMB)
			regs.WriteReg(2, 0x3000)

			_, err := core.Execute(bus, testDecoder.Decode(0x1000, 0xE12FFF12))

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.CPSR.State()).To(Equal(emu.StateARM))
		})
	})

	Describe("data processing", func() {
		It("should read R15 as op1 from the raw PC", func() {
			regs.SetPC(0x2000)

			// ADD R0, PC, #0 at 0x100
			_, err := core.Execute(bus, testDecoder.Decode(0x100, 0xE28F0000))

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x2000)))
		})

		It("should add an immediate and advance", func() {
			regs.WriteReg(1, 10)

			action, err := execute(core, bus, 0x100, 0xE2810005)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionAdvance))
			Expect(regs.ReadReg(0)).To(Equal(uint32(15)))
		})

		It("should flush when writing PC", func() {
			regs.WriteReg(1, 0x4000)

			// MOV PC, R1
			action, err := execute(core, bus, 0x100, 0xE1A0F001)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionFlush))
			Expect(regs.RawPC()).To(Equal(uint32(0x4000)))
		})

		It("should not write or flush for a comparison with Rd=15 bits", func() {
			regs.WriteReg(1, 5)
			regs.WriteReg(2, 5)

			// CMP R1, R2 with the Rd field set to 15
			action, err := execute(core, bus, 0x100, 0xE151F002)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionAdvance))
			Expect(regs.CPSR.Z()).To(BeTrue())
			Expect(regs.CPSR.C()).To(BeTrue())
			Expect(regs.CPSR.N()).To(BeFalse())
			Expect(regs.RawPC()).To(Equal(uint32(0x108)))
		})

		It("should charge an internal cycle for a register shift amount", func() {
			regs.WriteReg(1, 1)
			regs.WriteReg(2, 1)
			regs.WriteReg(3, 4)

			// ADD R0, R1, R2, LSL R3
			_, err := execute(core, bus, 0x100, 0xE0810312)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(17)))
			Expect(core.Cycles()).To(Equal(uint64(1)))
		})

		It("should not charge a cycle for an immediate shift", func() {
			regs.WriteReg(1, 0x100)

			// MOV R0, R1, ASR #2
			_, err := execute(core, bus, 0x100, 0xE1A00141)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x40)))
			Expect(core.Cycles()).To(BeZero())
		})

		It("should take the logical carry from the shifter", func() {
			regs.WriteReg(1, 0x80000000)

			// MOVS R0, R1, LSL #1
			_, err := execute(core, bus, 0x100, 0xE1B00081)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(BeZero())
			Expect(regs.CPSR.Z()).To(BeTrue())
			Expect(regs.CPSR.C()).To(BeTrue())
		})

		It("should restore CPSR from SPSR for MOVS PC, LR", func() {
			spsr := emu.PSR(0)
			spsr.SetMode(emu.ModeUSR)
			spsr.SetZ(true)
			Expect(regs.SetSPSR(spsr)).To(Succeed())
			regs.WriteReg(insts.LR, 0x8004)

			action, err := execute(core, bus, 0x08, 0xE1B0F00E)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionFlush))
			Expect(regs.RawPC()).To(Equal(uint32(0x8004)))
			Expect(regs.CPSR).To(Equal(spsr))
		})

		It("should fail fatally on MOVS PC, LR in User mode", func() {
			Expect(regs.ChangeMode(emu.ModeUSR)).To(Succeed())

			_, err := execute(core, bus, 0x100, 0xE1B0F00E)

			Expect(emu.IsFatal(err)).To(BeTrue())
			Expect(errors.Is(err, emu.ErrNoSPSR)).To(BeTrue())
		})
	})

	Describe("single data transfer", func() {
		DescribeTable("write-back into the transfer register is illegal",
			func(word uint32) {
				regs.WriteReg(1, 0x400)

				_, err := execute(core, bus, 0x100, word)

				var illegal *emu.IllegalInstructionError
				Expect(errors.As(err, &illegal)).To(BeTrue())
				Expect(illegal.Raw).To(Equal(word))
				Expect(regs.ReadReg(1)).To(Equal(uint32(0x400)))
			},
			Entry("LDR pre-indexed", uint32(0xE5B11004)),
			Entry("LDR post-indexed", uint32(0xE4911004)),
			Entry("STR pre-indexed", uint32(0xE5A11004)),
			Entry("STRB post-indexed", uint32(0xE4C11004)),
			Entry("LDRH pre-indexed", uint32(0xE1F110B2)),
			Entry("STRH post-indexed", uint32(0xE0C110B2)),
			Entry("LDRSB register offset", uint32(0xE1B110D2)),
		)

		It("should load a word with an immediate offset", func() {
			regs.WriteReg(1, 0x100)
			bus.EXPECT().Read32(uint32(0x104)).Return(uint32(0xDEADBEEF))

			action, err := execute(core, bus, 0x0, 0xE5910004)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionAdvance))
			Expect(regs.ReadReg(0)).To(Equal(uint32(0xDEADBEEF)))
			Expect(regs.ReadReg(1)).To(Equal(uint32(0x100)))
			Expect(core.Cycles()).To(Equal(uint64(1)))
		})

		It("should subtract a negative offset", func() {
			regs.WriteReg(1, 0x100)
			bus.EXPECT().Read32(uint32(0xFC)).Return(uint32(7))

			_, err := execute(core, bus, 0x0, 0xE5110004)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(7)))
		})

		It("should use the instruction address plus 8 for a PC base", func() {
			regs.SetPC(0xFFFF0000)
			bus.EXPECT().Read32(uint32(0x10C)).Return(uint32(1))

			_, err := core.Execute(bus, testDecoder.Decode(0x100, 0xE59F0004))

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(1)))
		})

		It("should store the instruction address plus 12 for PC", func() {
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Write32(uint32(0x400), uint32(0x10C))

			_, err := execute(core, bus, 0x100, 0xE581F000)

			Expect(err).NotTo(HaveOccurred())
		})

		It("should store then write back when post-indexed", func() {
			regs.WriteReg(0, 0x55)
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Write32(uint32(0x400), uint32(0x55))

			_, err := execute(core, bus, 0x100, 0xE4810004)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(1)).To(Equal(uint32(0x404)))
		})

		It("should write back the effective address when pre-indexed with W", func() {
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Read32(uint32(0x404)).Return(uint32(9))

			// LDR R0, [R1, #4]!
			_, err := execute(core, bus, 0x100, 0xE5B10004)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(1)).To(Equal(uint32(0x404)))
		})

		It("should flush when loading PC", func() {
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Read32(uint32(0x400)).Return(uint32(0x8000))

			action, err := execute(core, bus, 0x100, 0xE591F000)

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionFlush))
			Expect(regs.RawPC()).To(Equal(uint32(0x8000)))
		})

		It("should zero-extend LDRB and sign-extend LDRSB", func() {
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Read8(uint32(0x400)).Return(uint8(0xFF)).Times(2)

			_, err := execute(core, bus, 0x100, 0xE5D10000) // LDRB R0, [R1]
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x000000FF)))

			_, err = execute(core, bus, 0x104, 0xE1D100D0) // LDRSB R0, [R1]
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("should sign-extend LDRSH and zero-extend LDRH", func() {
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Read16(uint32(0x400)).Return(uint16(0x8000)).Times(2)

			_, err := execute(core, bus, 0x100, 0xE1D100F0)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0xFFFF8000)))

			_, err = execute(core, bus, 0x104, 0xE1D100B0)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x00008000)))
		})

		It("should store an unsigned halfword", func() {
			regs.WriteReg(0, 0x12345678)
			regs.WriteReg(1, 0x400)
			bus.EXPECT().Write16(uint32(0x402), uint16(0x5678))

			// STRH R0, [R1, #2]
			_, err := execute(core, bus, 0x100, 0xE1C100B2)

			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse a signed store", func() {
			regs.WriteReg(1, 0x400)

			_, err := execute(core, bus, 0x100, 0xE1C100D0)

			Expect(emu.IsFatal(err)).To(BeTrue())
			Expect(errors.Is(err, emu.ErrSignedStore)).To(BeTrue())
		})
	})

	Describe("SWP", func() {
		It("should read then write the same address", func() {
			regs.WriteReg(1, 0xAA)
			regs.WriteReg(2, 0x400)
			gomock.InOrder(
				bus.EXPECT().Read32(uint32(0x400)).Return(uint32(0x55)),
				bus.EXPECT().Write32(uint32(0x400), uint32(0xAA)),
			)

			_, err := execute(core, bus, 0x100, 0xE1020091)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x55)))
			Expect(core.Cycles()).To(Equal(uint64(1)))
		})
	})

	Describe("multiply", func() {
		It("should execute MUL and MLA", func() {
			regs.WriteReg(1, 6)
			regs.WriteReg(2, 7)
			regs.WriteReg(4, 100)

			_, err := execute(core, bus, 0x100, 0xE0000291)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(42)))

			_, err = execute(core, bus, 0x104, 0xE0234291)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(3)).To(Equal(uint32(142)))
		})

		It("should produce unsigned and signed 64-bit products", func() {
			regs.WriteReg(2, 0xFFFFFFFF)
			regs.WriteReg(3, 2)

			_, err := execute(core, bus, 0x100, 0xE0810392) // UMULL R0, R1, R2, R3
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0xFFFFFFFE)))
			Expect(regs.ReadReg(1)).To(Equal(uint32(1)))

			_, err = execute(core, bus, 0x104, 0xE0C10392) // SMULL R0, R1, R2, R3
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0xFFFFFFFE)))
			Expect(regs.ReadReg(1)).To(Equal(uint32(0xFFFFFFFF)))
		})
	})
})
