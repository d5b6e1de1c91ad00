package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should report the always-setting comparison opcodes", func() {
		for op := insts.OpAND; op <= insts.OpMVN; op++ {
			expected := op == insts.OpTST || op == insts.OpTEQ ||
				op == insts.OpCMP || op == insts.OpCMN
			Expect(op.IsSettingFlags()).To(Equal(expected), op.String())
		}
	})
})
