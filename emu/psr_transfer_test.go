package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("PSR transfer", func() {
	var (
		core *emu.Core
		regs *emu.RegFile
		mem  *emu.Memory
	)

	BeforeEach(func() {
		core = emu.NewCore()
		regs = core.RegFile()
		mem = emu.NewMemory()
	})

	Describe("MSR register form", func() {
		It("should swap banks once when the mode changes", func() {
			regs.WriteReg(insts.SP, 0x3000) // SVC stack
			newPSR := emu.PSR(0)
			newPSR.SetMode(emu.ModeUSR)
			newPSR.SetC(true)
			regs.WriteReg(0, uint32(newPSR))

			action, err := execute(core, mem, 0x0, 0xE129F000) // MSR CPSR, R0

			Expect(err).NotTo(HaveOccurred())
			Expect(action).To(Equal(emu.ActionAdvance))
			Expect(regs.CPSR).To(Equal(newPSR))
			Expect(regs.ReadReg(insts.SP)).To(BeZero())
			Expect(regs.BankedReg(emu.ModeSVC, insts.SP)).To(Equal(uint32(0x3000)))
		})

		It("should install flags without a bank swap in the same mode", func() {
			regs.WriteReg(insts.SP, 0x3000)
			newPSR := regs.CPSR
			newPSR.SetN(true)
			regs.WriteReg(0, uint32(newPSR))

			_, err := execute(core, mem, 0x0, 0xE129F000)

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.CPSR.N()).To(BeTrue())
			Expect(regs.ReadReg(insts.SP)).To(Equal(uint32(0x3000)))
		})

		It("should write the SPSR of the current mode", func() {
			regs.WriteReg(0, 0xF000001F)

			_, err := execute(core, mem, 0x0, 0xE169F000) // MSR SPSR, R0

			Expect(err).NotTo(HaveOccurred())
			spsr, err := regs.SPSR()
			Expect(err).NotTo(HaveOccurred())
			Expect(spsr).To(Equal(emu.PSR(0xF000001F)))
		})

		DescribeTable("writing the SPSR without a slot is fatal",
			func(mode emu.CPUMode) {
				Expect(regs.ChangeMode(mode)).To(Succeed())

				_, err := execute(core, mem, 0x0, 0xE169F000)

				Expect(emu.IsFatal(err)).To(BeTrue())
				Expect(errors.Is(err, emu.ErrNoSPSR)).To(BeTrue())
			},
			Entry("User", emu.ModeUSR),
			Entry("System", emu.ModeSYS),
		)

		It("should be fatal to install an invalid mode", func() {
			regs.WriteReg(0, 0x00000005)

			_, err := execute(core, mem, 0x0, 0xE129F000)

			Expect(emu.IsFatal(err)).To(BeTrue())
			Expect(errors.Is(err, emu.ErrInvalidMode)).To(BeTrue())
			Expect(regs.CPSR.Mode()).To(Equal(emu.ModeSVC))
		})
	})

	Describe("MSR flag form", func() {
		It("should set only the flags from an immediate", func() {
			_, err := execute(core, mem, 0x0, 0xE328F20F) // MSR CPSR_flg, #0xF0000000

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.CPSR.N()).To(BeTrue())
			Expect(regs.CPSR.Z()).To(BeTrue())
			Expect(regs.CPSR.C()).To(BeTrue())
			Expect(regs.CPSR.V()).To(BeTrue())
			Expect(regs.CPSR.Mode()).To(Equal(emu.ModeSVC))
			Expect(regs.CPSR.IRQDisabled()).To(BeTrue())
		})

		It("should ignore control bits in the source register", func() {
			regs.WriteReg(0, 0x4000001F)

			_, err := execute(core, mem, 0x0, 0xE128F000) // MSR CPSR_flg, R0

			Expect(err).NotTo(HaveOccurred())
			Expect(regs.CPSR.Z()).To(BeTrue())
			Expect(regs.CPSR.Mode()).To(Equal(emu.ModeSVC))
		})
	})

	Describe("MRS", func() {
		It("should copy the CPSR and SPSR", func() {
			Expect(regs.SetSPSR(emu.PSR(0x80000010))).To(Succeed())

			_, err := execute(core, mem, 0x0, 0xE10F0000)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(regs.CPSR)))

			_, err = execute(core, mem, 0x4, 0xE14F0000)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs.ReadReg(0)).To(Equal(uint32(0x80000010)))
		})

		It("should be fatal to read the SPSR in User mode", func() {
			Expect(regs.ChangeMode(emu.ModeUSR)).To(Succeed())

			_, err := execute(core, mem, 0x0, 0xE14F0000)

			Expect(emu.IsFatal(err)).To(BeTrue())
		})
	})
})
