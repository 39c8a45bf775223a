package proc

import "fmt"

// Completion identifies one completed-but-unbroadcast instruction
// queued for the result bus. The station slot is referenced by index so
// the entry stays valid across slot reuse.
type Completion struct {
	// Slot is the reservation-station index holding the instruction.
	Slot int

	// Tag is the instruction's program-order tag.
	Tag uint64

	// Cycle is the cycle execution completed.
	Cycle uint64
}

// ResultBus models the bandwidth-limited result broadcast mechanism.
// Completed instructions queue in completion order (ties broken by tag)
// and each cycle at most `width` entries drain from the front. Entries
// that lose arbitration stay queued; nothing is ever reordered or
// dropped.
type ResultBus struct {
	width   int
	pending []Completion
}

// NewResultBus creates a bus with the given number of broadcast slots
// per cycle.
func NewResultBus(width int) *ResultBus {
	return &ResultBus{
		width: width,
	}
}

// Width returns the number of broadcast slots per cycle.
func (b *ResultBus) Width() int {
	return b.width
}

// Enqueue appends a completion to the broadcast queue. Completions must
// arrive in (cycle, tag) order; anything else means the execute scan
// ran out of order and panics.
func (b *ResultBus) Enqueue(c Completion) {
	if n := len(b.pending); n > 0 {
		last := b.pending[n-1]
		inOrder := last.Cycle < c.Cycle ||
			(last.Cycle == c.Cycle && last.Tag < c.Tag)
		if !inOrder {
			panic(fmt.Sprintf(
				"result bus enqueue out of order: (cycle %d, tag %d) after (cycle %d, tag %d)",
				c.Cycle, c.Tag, last.Cycle, last.Tag))
		}
	}
	b.pending = append(b.pending, c)
}

// Drain removes and returns up to Width() completions from the front of
// the queue, i.e. this cycle's broadcast winners.
func (b *ResultBus) Drain() []Completion {
	n := len(b.pending)
	if n > b.width {
		n = b.width
	}
	if n == 0 {
		return nil
	}

	batch := make([]Completion, n)
	copy(batch, b.pending[:n])
	b.pending = b.pending[n:]
	return batch
}

// PendingCount returns the number of queued completions still waiting
// for a broadcast slot.
func (b *ResultBus) PendingCount() int {
	return len(b.pending)
}
