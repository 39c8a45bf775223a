package proc

import "fmt"

// executeAndBroadcast runs the execute and state-update work of one
// cycle. First every fired slot's countdown is decremented and newly
// finished instructions join the completed-but-unbroadcast queue in
// (completion cycle, tag) order. Then up to ResultBuses entries drain
// from the front of that queue: each winner updates the register status
// table (stale writers are ignored for readiness but still proceed to
// retirement), releases its functional unit, and is flagged broadcast.
// Losers stay queued for a later cycle.
//
// The returned batch is this cycle's broadcast set, consumed by the
// wakeup phase after selection.
func (p *Processor) executeAndBroadcast() []Completion {
	for _, i := range p.stations.OccupiedByTag() {
		s := p.stations.Slot(i)
		if s.State != SlotFired {
			continue
		}

		s.ExecCyclesLeft--
		if s.ExecCyclesLeft > 0 {
			continue
		}

		s.transition(SlotCompleted)
		s.CompleteCycle = p.cycle
		p.bus.Enqueue(Completion{Slot: i, Tag: s.Inst.Tag, Cycle: p.cycle})
		p.record(EventExecuted, s.Inst.Tag)
	}

	broadcasts := p.bus.Drain()
	for _, b := range broadcasts {
		s := p.stations.Slot(b.Slot)
		if s.State != SlotCompleted || s.Inst.Tag != b.Tag {
			panic(fmt.Sprintf(
				"result bus entry (slot %d, tag %d) does not match station state %v tag %d",
				b.Slot, b.Tag, s.State, s.Inst.Tag))
		}

		if s.Inst.HasDest() {
			p.regStatus.Broadcast(s.Inst.Dest, b.Tag)
		}
		p.units.Release(s.Inst.Class)

		s.transition(SlotBroadcast)
		s.BroadcastCycle = p.cycle
		p.record(EventStateUpdate, b.Tag)
	}

	return broadcasts
}

// retire frees every slot whose result was broadcast in a strictly
// earlier cycle. The one-cycle gap between broadcast and retirement is
// a fixed architectural latency, not a resource constraint, so no
// arbitration happens here.
func (p *Processor) retire() {
	for _, i := range p.stations.OccupiedByTag() {
		s := p.stations.Slot(i)
		if s.State != SlotBroadcast || s.BroadcastCycle >= p.cycle {
			continue
		}

		p.stations.Release(i)
		p.stats.retired++
	}
}
