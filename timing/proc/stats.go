package proc

import "github.com/rs/xid"

// Stats holds the final statistics of one simulation run. It is
// returned by value when the run reaches its terminal state.
type Stats struct {
	// RunID uniquely identifies the run.
	RunID string

	// Cycles is the total number of cycles simulated.
	Cycles uint64

	// Fetched is the number of instructions read from the trace.
	Fetched uint64

	// Fired is the number of instructions issued to functional units.
	Fired uint64

	// Retired is the number of instructions retired.
	Retired uint64

	// AvgDispatchQueue is the mean dispatch-queue occupancy, sampled
	// once per cycle including cycles before any instruction exists.
	AvgDispatchQueue float64

	// MaxDispatchQueue is the peak dispatch-queue occupancy.
	MaxDispatchQueue uint64
}

// AvgRetiredPerCycle returns the average retirement rate.
func (s Stats) AvgRetiredPerCycle() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Retired) / float64(s.Cycles)
}

// AvgFiredPerCycle returns the average fire rate.
func (s Stats) AvgFiredPerCycle() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Fired) / float64(s.Cycles)
}

// statsAggregator accumulates counters during the run and produces the
// final Stats value. It is the only statistics mechanism; no counters
// live outside the simulator context.
type statsAggregator struct {
	runID      string
	cycles     uint64
	fetched    uint64
	fired      uint64
	retired    uint64
	queueTotal uint64
	queueMax   uint64
	samples    uint64
}

func newStatsAggregator() *statsAggregator {
	return &statsAggregator{
		runID: xid.New().String(),
	}
}

// sampleQueue records one per-cycle dispatch-queue occupancy sample.
func (a *statsAggregator) sampleQueue(occupancy int) {
	n := uint64(occupancy)
	a.queueTotal += n
	a.samples++
	if n > a.queueMax {
		a.queueMax = n
	}
}

// finalize computes the Stats value for a finished run.
func (a *statsAggregator) finalize() Stats {
	s := Stats{
		RunID:            a.runID,
		Cycles:           a.cycles,
		Fetched:          a.fetched,
		Fired:            a.fired,
		Retired:          a.retired,
		MaxDispatchQueue: a.queueMax,
	}
	if a.samples > 0 {
		s.AvgDispatchQueue = float64(a.queueTotal) / float64(a.samples)
	}
	return s
}
