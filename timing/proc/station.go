package proc

import (
	"fmt"
	"sort"

	"github.com/sarchlab/procsim/insts"
)

// SlotState is the lifecycle state of one reservation-station slot.
type SlotState int

const (
	// SlotFree means the slot holds no instruction.
	SlotFree SlotState = iota
	// SlotDispatched means the slot holds an instruction waiting for
	// operands or a functional unit.
	SlotDispatched
	// SlotFired means the instruction holds a functional unit and is
	// executing.
	SlotFired
	// SlotCompleted means execution finished and the instruction is
	// waiting for a result-bus slot.
	SlotCompleted
	// SlotBroadcast means the result has been broadcast; the slot is
	// freed by retirement in a later cycle.
	SlotBroadcast
)

// String returns the state name.
func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "Free"
	case SlotDispatched:
		return "Dispatched"
	case SlotFired:
		return "Fired"
	case SlotCompleted:
		return "Completed"
	case SlotBroadcast:
		return "Broadcast"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

// Slot is one reservation-station entry. Exactly one instruction
// occupies a slot between dispatch and retirement.
type Slot struct {
	// State is the slot's lifecycle state.
	State SlotState

	// Inst is the occupying instruction. Meaningless when State is
	// SlotFree.
	Inst insts.Instruction

	// SrcReady records per-source operand readiness.
	SrcReady [2]bool

	// SrcParent records, per source, the tag of the pending writer the
	// operand waits for; 0 when the operand was ready at dispatch.
	SrcParent [2]uint64

	// ExecCyclesLeft is the remaining execution countdown while fired.
	ExecCyclesLeft uint64

	// Cycle timestamps for diagnostics.
	DispatchCycle  uint64
	FireCycle      uint64
	CompleteCycle  uint64
	BroadcastCycle uint64
}

// Ready reports whether both source operands are available.
func (s *Slot) Ready() bool {
	return s.SrcReady[0] && s.SrcReady[1]
}

// transition moves the slot to a new state, panicking on any transition
// the lifecycle does not allow. Illegal transitions mean the arbitration
// logic itself is broken, so they are never silently corrected.
func (s *Slot) transition(to SlotState) {
	legal := false
	switch s.State {
	case SlotFree:
		legal = to == SlotDispatched
	case SlotDispatched:
		legal = to == SlotFired
	case SlotFired:
		legal = to == SlotCompleted
	case SlotCompleted:
		legal = to == SlotBroadcast
	case SlotBroadcast:
		legal = to == SlotFree
	}

	if !legal {
		panic(fmt.Sprintf("illegal slot transition %v -> %v (tag %d)",
			s.State, to, s.Inst.Tag))
	}
	s.State = to
}

// clear resets the slot to its free state.
func (s *Slot) clear() {
	*s = Slot{}
}

// StationPool is the fixed-capacity array of reservation-station slots.
// Slots are addressed by stable integer index; the result bus and the
// scheduler cross-reference entries by index, never by pointer.
type StationPool struct {
	slots []Slot
}

// NewStationPool creates a pool with the given number of slots.
func NewStationPool(size int) *StationPool {
	return &StationPool{
		slots: make([]Slot, size),
	}
}

// Size returns the pool capacity.
func (p *StationPool) Size() int {
	return len(p.slots)
}

// FreeCount returns the number of unoccupied slots.
func (p *StationPool) FreeCount() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].State == SlotFree {
			n++
		}
	}
	return n
}

// Empty reports whether no slot is occupied.
func (p *StationPool) Empty() bool {
	return p.FreeCount() == len(p.slots)
}

// Slot returns the entry at index i.
func (p *StationPool) Slot(i int) *Slot {
	return &p.slots[i]
}

// Allocate places inst into the lowest-indexed free slot and returns
// that index. The caller is responsible for having reserved capacity;
// allocation with no free slot, or with a tag already in flight, is a
// logic defect and panics.
func (p *StationPool) Allocate(
	inst insts.Instruction,
	cycle uint64,
	srcReady [2]bool,
	srcParent [2]uint64,
) int {
	free := -1
	for i := range p.slots {
		s := &p.slots[i]
		if s.State == SlotFree {
			if free == -1 {
				free = i
			}
			continue
		}
		if s.Inst.Tag == inst.Tag {
			panic(fmt.Sprintf("tag %d already occupies slot %d", inst.Tag, i))
		}
	}

	if free == -1 {
		panic(fmt.Sprintf("reservation station overflow dispatching tag %d", inst.Tag))
	}

	s := &p.slots[free]
	s.transition(SlotDispatched)
	s.Inst = inst
	s.SrcReady = srcReady
	s.SrcParent = srcParent
	s.DispatchCycle = cycle
	return free
}

// Release frees the slot at index i at retirement. Retiring a slot that
// has not broadcast is a logic defect and panics (via transition).
func (p *StationPool) Release(i int) {
	s := &p.slots[i]
	s.transition(SlotFree)
	s.clear()
}

// OccupiedByTag returns the indices of all occupied slots in ascending
// tag (program) order. Slot reuse makes index order meaningless for
// scheduling, so every program-order scan goes through this.
func (p *StationPool) OccupiedByTag() []int {
	idx := make([]int, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].State != SlotFree {
			idx = append(idx, i)
		}
	}

	sort.Slice(idx, func(a, b int) bool {
		return p.slots[idx[a]].Inst.Tag < p.slots[idx[b]].Inst.Tag
	})
	return idx
}
