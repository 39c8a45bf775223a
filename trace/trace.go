// Package trace provides reading of instruction traces.
//
// A trace is a text file with one instruction per line:
//
//	<address> <op code> <dest reg> <src1 reg> <src2 reg>
//
// The address is hexadecimal (with or without a 0x prefix), the op code
// selects the functional-unit class, and register ids of -1 mean "none".
// An op code outside the known classes selects the default class (k1).
//
// Usage:
//
//	r := trace.NewReader(f)
//	inst, ok, err := r.Next()
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/procsim/insts"
)

// Reader pulls instructions from a trace, one per call to Next.
// It satisfies the simulator's instruction-source contract.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a trace reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next instruction in the trace. The second return
// value is false when the trace is exhausted. Blank lines are skipped.
// The returned instruction has no tag; the simulator assigns tags at
// fetch time.
func (r *Reader) Next() (insts.Instruction, bool, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		inst, err := parseLine(text)
		if err != nil {
			return insts.Instruction{}, false, fmt.Errorf("trace line %d: %w", r.line, err)
		}
		return inst, true, nil
	}

	if err := r.scanner.Err(); err != nil {
		return insts.Instruction{}, false, fmt.Errorf("failed to read trace: %w", err)
	}
	return insts.Instruction{}, false, nil
}

// parseLine decodes one 5-column trace record.
func parseLine(text string) (insts.Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return insts.Instruction{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("bad address %q: %w", fields[0], err)
	}

	opCode, err := strconv.Atoi(fields[1])
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("bad op code %q: %w", fields[1], err)
	}

	var regs [3]int
	for i, f := range fields[2:] {
		regs[i], err = strconv.Atoi(f)
		if err != nil {
			return insts.Instruction{}, fmt.Errorf("bad register %q: %w", f, err)
		}
	}

	inst := insts.Instruction{
		Address: addr,
		Class:   classForOpCode(opCode),
		Dest:    regs[0],
		Src:     [2]int{regs[1], regs[2]},
	}
	if err := inst.Validate(); err != nil {
		return insts.Instruction{}, err
	}
	return inst, nil
}

// classForOpCode maps a trace op code to a functional-unit class.
// Traces use -1 for instructions without a meaningful class.
func classForOpCode(opCode int) insts.FUClass {
	c := insts.FUClass(opCode)
	if !c.Valid() {
		return insts.FUClass1
	}
	return c
}
