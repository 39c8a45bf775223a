package proc

import "fmt"

// EventKind identifies a pipeline event type.
type EventKind int

const (
	// EventFetched marks an instruction entering the dispatch queue.
	EventFetched EventKind = iota
	// EventDispatched marks allocation of a reservation-station slot.
	EventDispatched
	// EventScheduled marks an instruction firing into a functional unit.
	EventScheduled
	// EventExecuted marks raw execution completion.
	EventExecuted
	// EventStateUpdate marks a result-bus broadcast.
	EventStateUpdate
)

// String returns the event name in trace-log notation.
func (k EventKind) String() string {
	switch k {
	case EventFetched:
		return "FETCHED"
	case EventDispatched:
		return "DISPATCHED"
	case EventScheduled:
		return "SCHEDULED"
	case EventExecuted:
		return "EXECUTED"
	case EventStateUpdate:
		return "STATE UPDATE"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one entry of the per-cycle diagnostic trace.
//
// Within a cycle, events of the same kind are emitted in ascending tag
// order; EventStateUpdate batches are emitted in (completion cycle,
// tag) order, matching result-bus arbitration. Downstream trace
// comparison relies on this ordering.
type Event struct {
	// Cycle is the cycle the event occurred in.
	Cycle uint64

	// Kind is the event type.
	Kind EventKind

	// Tag is the instruction's program-order tag.
	Tag uint64
}

// EventRecorder receives the event stream as the simulation runs.
// Implementations must not assume anything beyond the ordering contract
// documented on Event.
type EventRecorder interface {
	Record(e Event)
}

// EventLog is an EventRecorder that retains every event in emission
// order.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Record appends an event.
func (l *EventLog) Record(e Event) {
	l.events = append(l.events, e)
}

// Events returns the recorded events in emission order.
func (l *EventLog) Events() []Event {
	return l.events
}
