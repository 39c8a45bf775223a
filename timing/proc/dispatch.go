package proc

// Dispatch moves instructions from the dispatch queue into reservation
// stations. It is split across the half-cycle boundary: the number of
// instructions to move is reserved from a stable snapshot of the free
// slot count in the first half, and the slots are consumed in the
// second half. Retirements committed earlier in the same cycle are
// visible to the snapshot; nothing that happens after it is.

// reserveDispatch computes how many instructions this cycle's dispatch
// may move: min(free slots, queue length).
func (p *Processor) reserveDispatch() int {
	n := p.stations.FreeCount()
	if q := len(p.dispatchQueue); q < n {
		n = q
	}
	return n
}

// commitDispatch allocates slots for the first n queued instructions in
// FIFO (program) order. Each instruction snapshots its operand status
// from the register status table and then records itself as the latest
// writer of its destination. The overwrite is unconditional: a later
// dispatch always supersedes an earlier pending writer, so only the
// latest writer's eventual broadcast can set the register ready.
func (p *Processor) commitDispatch(n int) {
	for i := 0; i < n; i++ {
		inst := p.dispatchQueue[0]
		p.dispatchQueue = p.dispatchQueue[1:]

		var ready [2]bool
		var parent [2]uint64
		for s, reg := range inst.Src {
			ready[s], parent[s] = p.regStatus.SourceStatus(reg)
		}

		p.stations.Allocate(inst, p.cycle, ready, parent)

		if inst.HasDest() {
			p.regStatus.RecordWriter(inst.Dest, inst.Tag)
		}

		p.record(EventDispatched, inst.Tag)
	}
}
