// Package insts provides the instruction record used throughout the
// simulator.
//
// Instructions arrive pre-decoded from a trace: each carries its fetch
// address, a functional-unit class, an optional destination register and
// up to two optional source registers. The simulator assigns every
// fetched instruction a tag, a strictly increasing sequence number that
// doubles as its program-order key and its identity on the result bus.
// There is no register renaming beyond the tag.
package insts

import (
	"errors"
	"fmt"
)

// NumRegisters is the size of the architectural register namespace.
// Register ids are valid in [0, NumRegisters).
const NumRegisters = 128

// RegNone marks an absent destination or source register.
const RegNone = -1

// ErrBadRegister reports a register id outside [0, NumRegisters) that is
// not RegNone. Hazard semantics are undefined for such an instruction,
// so it is rejected at fetch time rather than clamped.
var ErrBadRegister = errors.New("register id out of range")

// FUClass identifies the functional-unit class an instruction executes on.
type FUClass int

const (
	// FUClass0 is functional-unit class 0.
	FUClass0 FUClass = iota
	// FUClass1 is functional-unit class 1. Trace op codes outside the
	// known classes default to FUClass1.
	FUClass1
	// FUClass2 is functional-unit class 2.
	FUClass2

	// NumFUClasses is the number of functional-unit classes.
	NumFUClasses = 3
)

// Valid reports whether c names one of the configured classes.
func (c FUClass) Valid() bool {
	return c >= FUClass0 && c < NumFUClasses
}

// String returns the class in trace notation (k0, k1, k2).
func (c FUClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("k?(%d)", int(c))
	}
	return fmt.Sprintf("k%d", int(c))
}

// Instruction is one trace record plus the tag assigned at fetch time.
// It is immutable once fetched; all mutable in-flight state lives in the
// reservation-station entry that holds it.
type Instruction struct {
	// Address is the instruction's fetch address from the trace.
	Address uint64

	// Class is the functional-unit class the instruction executes on.
	Class FUClass

	// Dest is the destination register id, or RegNone.
	Dest int

	// Src holds the two source register ids, each possibly RegNone.
	Src [2]int

	// Tag is the program-order sequence number, assigned once at fetch.
	// Tags start at 1; 0 never names an instruction.
	Tag uint64
}

// Validate checks that every register id is RegNone or inside the
// architectural namespace.
func (i Instruction) Validate() error {
	if err := checkReg(i.Dest); err != nil {
		return fmt.Errorf("dest: %w", err)
	}
	if err := checkReg(i.Src[0]); err != nil {
		return fmt.Errorf("src1: %w", err)
	}
	if err := checkReg(i.Src[1]); err != nil {
		return fmt.Errorf("src2: %w", err)
	}
	return nil
}

func checkReg(r int) error {
	if r == RegNone {
		return nil
	}
	if r < 0 || r >= NumRegisters {
		return fmt.Errorf("%w: %d", ErrBadRegister, r)
	}
	return nil
}

// HasDest reports whether the instruction writes a register.
func (i Instruction) HasDest() bool {
	return i.Dest != RegNone
}

// String renders the instruction in trace notation.
func (i Instruction) String() string {
	return fmt.Sprintf("0x%x %s %d %d %d (tag %d)",
		i.Address, i.Class, i.Dest, i.Src[0], i.Src[1], i.Tag)
}
