package proc

// The scheduler has two responsibilities per cycle, in order: select
// (fire ready instructions into functional units, oldest first) and
// wakeup (resolve waiting operands against this cycle's broadcasts).
// Wakeup runs in the second half of the cycle, after selection, so a
// freshly resolved operand is not visible to select until the next
// cycle: an instruction can never fire in the cycle its dependency
// reaches the bus.

// selectReady scans occupied, not-yet-fired slots whose operands are
// both ready, in ascending tag order, and fires each one that can
// reserve a free unit of its class. Older ready instructions get units
// before younger ones; a class with no free unit does not block younger
// candidates of other classes.
func (p *Processor) selectReady() {
	for _, i := range p.stations.OccupiedByTag() {
		s := p.stations.Slot(i)
		if s.State != SlotDispatched || !s.Ready() {
			continue
		}
		if !p.units.TryReserve(s.Inst.Class) {
			continue
		}

		s.transition(SlotFired)
		s.FireCycle = p.cycle
		s.ExecCyclesLeft = execLatency

		p.stats.fired++
		p.record(EventScheduled, s.Inst.Tag)
	}
}

// wakeup matches the unresolved operands of waiting instructions
// against this cycle's broadcast tags. A match flips the operand ready;
// the effect becomes visible at the next cycle's select phase.
func (p *Processor) wakeup(broadcasts []Completion) {
	if len(broadcasts) == 0 {
		return
	}

	for _, i := range p.stations.OccupiedByTag() {
		s := p.stations.Slot(i)
		if s.State != SlotDispatched {
			continue
		}

		for op := range s.SrcReady {
			if s.SrcReady[op] {
				continue
			}
			for _, b := range broadcasts {
				if b.Tag == s.SrcParent[op] {
					s.SrcReady[op] = true
					break
				}
			}
		}
	}
}
