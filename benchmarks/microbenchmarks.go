package benchmarks

import (
	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

// GetMicrobenchmarks returns the standard set of ARM7TDMI microbenchmarks.
// Each benchmark targets one part of the cycle model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		countedLoop(),
		memorySequential(),
		blockTransfer(),
		functionCalls(),
		multiply(),
		conditionalExecution(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick runs.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countedLoop(),
		functionCalls(),
		memorySequential(),
	}
}

// 1. Arithmetic Sequential - 1S per instruction, no refills
func arithmeticSequential() Benchmark {
	var prog []uint32
	for i := 0; i < 4; i++ {
		for r := uint8(0); r < 5; r++ {
			prog = append(prog, EncodeADDImm(r, r, 1, false))
		}
	}

	return Benchmark{
		Name:         "arithmetic_sequential",
		Description:  "20 ADD immediates - the sequential fetch baseline",
		Program:      exit(prog...),
		ExpectedExit: 4,
	}
}

// 2. Counted Loop - one refill per taken branch
func countedLoop() Benchmark {
	return Benchmark{
		Name:        "counted_loop",
		Description: "10 iterations of ADD/SUBS/BNE - measures taken-branch refills",
		Program: exit(
			EncodeMOVImm(0, 0),
			EncodeMOVImm(1, 10),
			EncodeADDImm(0, 0, 2, false), // loop:
			EncodeSUBImm(1, 1, 1, true),
			EncodeB(insts.CondNE, -8),
		),
		ExpectedExit: 20,
	}
}

// 3. Memory Sequential - single loads and stores
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "3 STR then 3 LDR to consecutive words - measures N-cycle and load I-cycle cost",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(2, 0x2000)
		},
		Program: exit(
			EncodeMOVImm(0, 1),
			EncodeMOVImm(1, 2),
			EncodeMOVImm(3, 3),
			EncodeSTR(0, 2, 0),
			EncodeSTR(1, 2, 4),
			EncodeSTR(3, 2, 8),
			EncodeLDR(4, 2, 0),
			EncodeLDR(5, 2, 4),
			EncodeLDR(6, 2, 8),
			EncodeADDReg(0, 4, 5),
			EncodeADDReg(0, 0, 6),
		),
		ExpectedExit: 6,
	}
}

// 4. Block Transfer - push and pop of four registers
func blockTransfer() Benchmark {
	return Benchmark{
		Name:        "block_transfer",
		Description: "STMDB/LDMIA of 4 registers - measures burst transfers",
		Program: exit(
			EncodeMOVImm(0, 1),
			EncodeMOVImm(1, 2),
			EncodeMOVImm(2, 3),
			EncodeMOVImm(3, 4),
			EncodePush(insts.SP, 0x000F),
			EncodeMOVImm(0, 0),
			EncodeMOVImm(3, 0),
			EncodePop(insts.SP, 0x000F),
			EncodeADDReg(0, 0, 3),
		),
		ExpectedExit: 5,
	}
}

// 5. Function Calls - BL/BX pairs
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "3 BL/BX LR round trips - measures call and return refills",
		Program: exit(
			EncodeMOVImm(0, 0),           // 0x00
			EncodeBL(0x10),               // 0x04 -> 0x14
			EncodeBL(0x0C),               // 0x08 -> 0x14
			EncodeBL(0x08),               // 0x0C -> 0x14
			EncodeB(insts.CondAL, 0x0C),  // 0x10 -> 0x1C
			EncodeADDImm(0, 0, 1, false), // 0x14
			EncodeBXLR(),                 // 0x18
		),
		ExpectedExit: 3,
	}
}

// 6. Multiply - early termination by multiplier size
func multiply() Benchmark {
	return Benchmark{
		Name:        "multiply",
		Description: "MUL with an 8-bit multiplier - measures multiply I-cycles",
		Program: exit(
			EncodeMOVImm(1, 7),
			EncodeMOVImm(2, 6),
			EncodeMUL(0, 1, 2),
		),
		ExpectedExit: 42,
	}
}

// 7. Conditional Execution - skipped instructions cost 1S
func conditionalExecution() Benchmark {
	return Benchmark{
		Name:        "conditional_execution",
		Description: "Counts even values in 8..1 with TST/ADDEQ - measures skipped instructions",
		Program: exit(
			EncodeMOVImm(0, 0),
			EncodeMOVImm(1, 8),
			EncodeDPImm(insts.CondAL, insts.OpTST, true, 0, 1, 1), // loop:
			EncodeDPImm(insts.CondEQ, insts.OpADD, false, 0, 0, 1),
			EncodeSUBImm(1, 1, 1, true),
			EncodeB(insts.CondNE, -12),
		),
		ExpectedExit: 4,
	}
}
