// Package effects is the observable-only event bus of spec.md §6
// ("Effects bus (observable only)") and SPEC_FULL.md §4.12: a bounded,
// non-blocking channel of transient visual/audio events that the
// simulation core pushes to and a renderer drains from, never the
// other way around: a buffered channel whose full sends are dropped
// rather than blocking the producer.
package effects

// Kind names a renderable event category.
type Kind string

const (
	KindExplosion    Kind = "explosion"
	KindMissileTrail Kind = "missile_trail"
	KindExhaustPlume Kind = "exhaust_plume"
	KindReentryGlow  Kind = "reentry_glow"
)

// Event is one observable occurrence, positioned in ECI meters, with
// kind-specific parameters (e.g. intensity, duration) in Params.
type Event struct {
	Kind     Kind
	Position [3]float64
	Params   map[string]float64
}

// Bus is a bounded ring of pending events. Push never blocks: when
// full, the oldest-producer's newest event is simply dropped, matching
// spec.md §6's "renderer is free to drop events when overloaded" —
// here the drop happens on the producer side instead, since this
// engine has no renderer thread to apply backpressure from.
type Bus struct {
	ch chan Event
}

// NewBus creates a Bus with the given buffer capacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 256
	}
	return &Bus{ch: make(chan Event, capacity)}
}

// Push enqueues an event, dropping it silently if the bus is full.
func (b *Bus) Push(e Event) {
	select {
	case b.ch <- e:
	default:
	}
}

// Drain returns every event currently queued, without blocking, for
// whatever observer is attached; no engine stage calls it.
func (b *Bus) Drain() []Event {
	out := make([]Event, 0, len(b.ch))
	for {
		select {
		case e := <-b.ch:
			out = append(out, e)
		default:
			return out
		}
	}
}
