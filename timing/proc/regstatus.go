package proc

import (
	"fmt"

	"github.com/sarchlab/procsim/insts"
)

// registerStatus is one register's entry in the status table.
type registerStatus struct {
	// tag identifies the most recently dispatched writer, 0 when no
	// writer has ever been recorded.
	tag uint64

	// ready is true iff no write is pending, i.e. the writer named by
	// tag has broadcast on the result bus (or no writer exists).
	ready bool
}

// RegisterStatusTable tracks, per architectural register, the latest
// dispatched writer and whether its result has reached the bus.
//
// The table is overwritten unconditionally at dispatch time (newest
// writer wins), and only a broadcast whose tag still matches the
// recorded writer may mark a register ready. A broadcast from a writer
// that was superseded by a later dispatch is stale and leaves the table
// untouched, which is what makes write-after-write hazards resolve in
// favor of the latest writer.
type RegisterStatusTable struct {
	regs [insts.NumRegisters]registerStatus
}

// NewRegisterStatusTable creates a table with every register ready.
func NewRegisterStatusTable() *RegisterStatusTable {
	t := &RegisterStatusTable{}
	t.Reset()
	return t
}

// Reset marks every register ready with no recorded writer.
func (t *RegisterStatusTable) Reset() {
	for i := range t.regs {
		t.regs[i] = registerStatus{ready: true}
	}
}

// SourceStatus reports the dispatch-time status of a source operand:
// whether it is ready, and if not, the tag of the pending writer it
// must wait for. An absent operand (insts.RegNone) is always ready.
func (t *RegisterStatusTable) SourceStatus(reg int) (ready bool, parent uint64) {
	if reg == insts.RegNone {
		return true, 0
	}

	entry := t.regs[reg]
	if entry.ready {
		return true, 0
	}
	return false, entry.tag
}

// RecordWriter registers tag as the latest dispatched writer of reg and
// marks the register not ready. The recorded tag is monotonically
// non-decreasing for each register; a violation means dispatch ran out
// of program order and is a logic defect.
func (t *RegisterStatusTable) RecordWriter(reg int, tag uint64) {
	entry := &t.regs[reg]
	if tag <= entry.tag {
		panic(fmt.Sprintf(
			"register status for r%d went backwards: recorded writer %d, new writer %d",
			reg, entry.tag, tag))
	}

	entry.tag = tag
	entry.ready = false
}

// Broadcast delivers a result-bus broadcast for reg. The register
// becomes ready only if tag is still the recorded writer; a stale
// broadcast from a superseded writer returns false and changes nothing.
func (t *RegisterStatusTable) Broadcast(reg int, tag uint64) bool {
	entry := &t.regs[reg]
	if entry.ready || entry.tag != tag {
		return false
	}

	entry.ready = true
	return true
}
