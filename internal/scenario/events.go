package scenario

import "sort"

// Handler processes one fired event's raw params.
type Handler func(params []byte) error

// EventRunner fires each EventSpec once, in time order, as sim time
// crosses its scheduled time. Grounded on the teacher's wave-launch
// bookkeeping (runSimulationLoop's waveLaunched bool slice): a
// monotonically-advancing sim clock compared against per-entry
// scheduled times, each firing exactly once.
type EventRunner struct {
	events  []EventSpec
	fired   []bool
	handlers map[string]Handler
}

// NewEventRunner sorts events by time and prepares per-action dispatch.
func NewEventRunner(events []EventSpec, handlers map[string]Handler) *EventRunner {
	sorted := make([]EventSpec, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &EventRunner{
		events:   sorted,
		fired:    make([]bool, len(sorted)),
		handlers: handlers,
	}
}

// Advance fires every unfired event whose scheduled time has passed,
// in time order. Returns the actions that fired and the first error
// encountered; an erroring handler does not stop later events from
// firing this call, matching the tick loop's skip-and-continue policy.
func (r *EventRunner) Advance(simTime float64) (fired []string, firstErr error) {
	for i, ev := range r.events {
		if r.fired[i] || ev.Time > simTime {
			continue
		}
		r.fired[i] = true
		fired = append(fired, ev.Action)

		h, ok := r.handlers[ev.Action]
		if !ok {
			continue
		}
		if err := h(ev.Params); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return fired, firstErr
}

// Pending reports how many scheduled events have not yet fired.
func (r *EventRunner) Pending() int {
	n := 0
	for _, f := range r.fired {
		if !f {
			n++
		}
	}
	return n
}
