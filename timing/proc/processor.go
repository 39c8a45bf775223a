// Package proc implements the per-cycle hazard-detection and
// resource-arbitration engine of an out-of-order superscalar processor.
//
// The model is a deterministic discrete-event simulator: one call to
// Tick advances the machine by exactly one cycle, running an ordered
// sequence of phases over a single simulator context. Dependencies are
// tracked by program-order tag against a 128-entry register status
// table; there is no physical register file. All functional units have
// a fixed one-cycle execution latency, and completed results contend
// for a bandwidth-limited result bus.
//
// Phase order within a cycle:
//
//	retire, execute/state-update, select, dispatch-reserve,
//	-- half-cycle boundary --
//	wakeup, dispatch-commit, fetch
//
// The phase ordering is the concurrency discipline: a later phase never
// observes an effect that would let an instruction skip a stage. An
// instruction dispatched this cycle cannot fire this cycle, and an
// instruction broadcasting this cycle cannot retire this cycle.
package proc

import (
	"fmt"

	"github.com/sarchlab/procsim/insts"
)

// execLatency is the fixed execution latency of every functional unit.
const execLatency = 1

// InstructionSource is the pull-based provider of decoded instructions.
// Next returns false once the source is exhausted; the simulator treats
// the first failed read as terminal.
type InstructionSource interface {
	Next() (inst insts.Instruction, ok bool, err error)
}

// State is the cycle driver's termination state.
type State int

const (
	// StateRunning means the instruction source still has instructions.
	StateRunning State = iota
	// StateDraining means the source is exhausted but instructions are
	// still in flight.
	StateDraining
	// StateDone means the source is exhausted, the dispatch queue is
	// empty, and every station slot is free.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option is a functional option for configuring the Processor.
type Option func(*Processor)

// WithEventRecorder attaches a recorder for the per-cycle event trace.
func WithEventRecorder(r EventRecorder) Option {
	return func(p *Processor) {
		p.recorder = r
	}
}

// Processor is the simulator context. It owns every pool, table and
// counter of the modeled machine; phases are methods on it and nothing
// is process-wide.
type Processor struct {
	config Config
	source InstructionSource

	regStatus *RegisterStatusTable
	stations  *StationPool
	units     *UnitPool
	bus       *ResultBus

	dispatchQueue []insts.Instruction

	recorder EventRecorder
	stats    *statsAggregator

	state         State
	cycle         uint64
	nextTag       uint64
	sourceDrained bool
}

// New creates a Processor for the given configuration and instruction
// source. The configuration is validated before any state is built.
func New(config *Config, source InstructionSource, opts ...Option) (*Processor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processor config: %w", err)
	}

	p := &Processor{
		config:    *config,
		source:    source,
		regStatus: NewRegisterStatusTable(),
		stations:  NewStationPool(config.StationCount()),
		units:     NewUnitPool(config),
		bus:       NewResultBus(config.ResultBuses),
		stats:     newStatsAggregator(),
		state:     StateRunning,
		nextTag:   1,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() Config {
	return p.config
}

// State returns the cycle driver's termination state.
func (p *Processor) State() State {
	return p.state
}

// Cycle returns the number of cycles simulated so far.
func (p *Processor) Cycle() uint64 {
	return p.cycle
}

// QueueLen returns the current dispatch-queue occupancy.
func (p *Processor) QueueLen() int {
	return len(p.dispatchQueue)
}

// Run advances the simulation until the terminal state and returns the
// final statistics. Any error aborts the run; there are no partial
// results.
func (p *Processor) Run() (Stats, error) {
	for p.state != StateDone {
		if err := p.Tick(); err != nil {
			return Stats{}, err
		}
	}
	return p.stats.finalize(), nil
}

// Stats returns the statistics accumulated so far. Before the run
// reaches StateDone the value is a snapshot, not a final result.
func (p *Processor) Stats() Stats {
	return p.stats.finalize()
}

// Tick advances the simulation by one cycle. Calling Tick on a done
// processor is a no-op.
func (p *Processor) Tick() error {
	if p.state == StateDone {
		return nil
	}

	p.cycle++
	p.stats.cycles++

	// First half: commit the effects of work started in earlier cycles.
	p.retire()
	broadcasts := p.executeAndBroadcast()
	p.selectReady()
	dispatchCount := p.reserveDispatch()

	// The occupancy sample sees the queue as the previous cycle's fetch
	// left it, before this cycle's dispatch drains it.
	p.stats.sampleQueue(len(p.dispatchQueue))

	// Second half: propagate this cycle's results and bring in new work.
	p.wakeup(broadcasts)
	p.commitDispatch(dispatchCount)
	if err := p.fetch(); err != nil {
		return err
	}

	p.updateState()
	return nil
}

// fetch pulls up to FetchRate instructions from the source, assigns
// tags, and appends them to the dispatch queue. The first failed read
// marks the source as permanently exhausted.
func (p *Processor) fetch() error {
	if p.sourceDrained {
		return nil
	}

	for i := 0; i < p.config.FetchRate; i++ {
		inst, ok, err := p.source.Next()
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		if !ok {
			p.sourceDrained = true
			return nil
		}

		if err := inst.Validate(); err != nil {
			return fmt.Errorf("fetch at 0x%x: %w", inst.Address, err)
		}
		if p.config.UnitCount(inst.Class) == 0 {
			return fmt.Errorf("fetch at 0x%x: no %v functional units configured",
				inst.Address, inst.Class)
		}

		inst.Tag = p.nextTag
		p.nextTag++

		p.dispatchQueue = append(p.dispatchQueue, inst)
		p.stats.fetched++
		p.record(EventFetched, inst.Tag)
	}
	return nil
}

// updateState runs the RUNNING -> DRAINING -> DONE machine at the end
// of each cycle.
func (p *Processor) updateState() {
	switch {
	case !p.sourceDrained:
		p.state = StateRunning
	case len(p.dispatchQueue) == 0 && p.stations.Empty():
		p.state = StateDone
	default:
		p.state = StateDraining
	}
}

func (p *Processor) record(kind EventKind, tag uint64) {
	if p.recorder == nil {
		return
	}
	p.recorder.Record(Event{Cycle: p.cycle, Kind: kind, Tag: tag})
}
