// Validate decoder allocation behavior - measures the cost of decoding ARM words
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/arm7sim/insts"
)

var words = []uint32{
	0xE2810001, // ADD R0, R1, #1
	0xE0921003, // ADDS R1, R2, R3
	0xE1A00211, // MOV R0, R1, LSL R2
	0xE5912004, // LDR R2, [R1, #4]
	0xE92D000F, // STMDB SP!, {R0-R3}
	0xE0000291, // MUL R0, R1, R2
	0x1AFFFFFE, // BNE .
	0xE12FFF1E, // BX LR
}

func main() {
	decoder := insts.NewDecoder()

	for i := 0; i < 1000; i++ {
		for _, w := range words {
			decoder.Decode(0x1000, w)
		}
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for j, w := range words {
			decoder.Decode(0x1000+uint32(j)*4, w)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	for j, w := range words {
		fmt.Printf("  0x%08X  %s\n", w, decoder.Decode(0x1000+uint32(j)*4, w))
	}
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	if allocations == 0 {
		fmt.Printf("\nSUCCESS: Zero allocations detected.\n")
	} else if float64(allocations)/float64(totalDecodes) < 0.1 {
		fmt.Printf("\nGOOD: Low allocation rate (< 0.1 per decode)\n")
	} else {
		fmt.Printf("\nWARNING: High allocation rate detected\n")
	}
}
