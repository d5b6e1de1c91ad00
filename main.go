// Package main provides the entry point for ARM7Sim.
// ARM7Sim is an ARM7TDMI instruction-set simulator with an optional
// cycle-counting timing model.
//
// For the full CLI, use: go run ./cmd/arm7sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ARM7Sim - ARM7TDMI Simulator")
	fmt.Println("")
	fmt.Println("Usage: arm7sim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Enable timing simulation mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -raw       Load a flat binary image at -base")
	fmt.Println("  -bare      Run bare metal (SWI takes the exception vector)")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/arm7sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/arm7sim' instead.")
	}
}
