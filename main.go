// Package main provides the entry point for ProcSim.
// ProcSim is a cycle-accurate out-of-order superscalar processor simulator.
//
// For the full CLI, use: go run ./cmd/procsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ProcSim - Out-of-Order Superscalar Processor Simulator")
	fmt.Println("")
	fmt.Println("Usage: procsim [options] <trace file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -r         Number of result buses")
	fmt.Println("  -k0/k1/k2  Functional unit counts per class")
	fmt.Println("  -f         Fetch rate (instructions per cycle)")
	fmt.Println("  -config    Path to processor configuration JSON file")
	fmt.Println("  -trace     Print the per-cycle event log")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/procsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/procsim' instead.")
	}
}
