package reactor

import (
	"log/slog"

	"github.com/pthm-cable/chernobyl/vec"
)

// EventType identifies reactor events.
type EventType uint8

const (
	EventNeutronCreated EventType = iota
	EventAtomDecayed
	EventAtomFissioned
	EventAtomEscaped
	EventNeutronAbsorbedByRod
	EventDetonation
	EventMeltdown
)

var eventNames = [...]string{
	EventNeutronCreated:       "neutron_created",
	EventAtomDecayed:          "atom_decayed",
	EventAtomFissioned:        "atom_fissioned",
	EventAtomEscaped:          "atom_escaped",
	EventNeutronAbsorbedByRod: "neutron_absorbed_by_rod",
	EventDetonation:           "detonation",
	EventMeltdown:             "meltdown",
}

// String returns the snake_case event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a discrete occurrence inside a tick, queued for the host.
type Event struct {
	Type     EventType
	Tick     int
	Position vec.Vec

	// Optional fields depending on event type
	Health   int     // initial health of the atom involved
	Neutrons int     // neutrons released
	Power    float64 // power contributed, or tick power for meltdowns
	Capacity float64 // meltdown threshold
	Rod      int     // rod index for rod absorptions
}

// NewNeutronCreatedEvent creates a neutron spawn event.
func NewNeutronCreatedEvent(tick int, pos vec.Vec) Event {
	return Event{Type: EventNeutronCreated, Tick: tick, Position: pos}
}

// NewAtomDecayedEvent creates a spontaneous decay event.
func NewAtomDecayedEvent(tick int, pos vec.Vec, health, neutrons int, power float64) Event {
	return Event{
		Type:     EventAtomDecayed,
		Tick:     tick,
		Position: pos,
		Health:   health,
		Neutrons: neutrons,
		Power:    power,
	}
}

// NewAtomFissionedEvent creates an event for an atom destroyed by neutrons.
func NewAtomFissionedEvent(tick int, pos vec.Vec, health, neutrons int, power float64) Event {
	return Event{
		Type:     EventAtomFissioned,
		Tick:     tick,
		Position: pos,
		Health:   health,
		Neutrons: neutrons,
		Power:    power,
	}
}

// NewAtomEscapedEvent creates an event for an atom leaving the board.
func NewAtomEscapedEvent(tick int, pos vec.Vec, health int) Event {
	return Event{Type: EventAtomEscaped, Tick: tick, Position: pos, Health: health}
}

// NewRodAbsorptionEvent creates an event for a neutron captured by rod i.
func NewRodAbsorptionEvent(tick int, pos vec.Vec, rod int) Event {
	return Event{Type: EventNeutronAbsorbedByRod, Tick: tick, Position: pos, Rod: rod}
}

// NewDetonationEvent creates an event for a player-triggered fission.
func NewDetonationEvent(tick int, pos vec.Vec, health, neutrons int) Event {
	return Event{
		Type:     EventDetonation,
		Tick:     tick,
		Position: pos,
		Health:   health,
		Neutrons: neutrons,
	}
}

// NewMeltdownEvent creates an event for tick power above capacity.
func NewMeltdownEvent(tick int, power, capacity float64) Event {
	return Event{Type: EventMeltdown, Tick: tick, Power: power, Capacity: capacity}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("tick", e.Tick),
	}
	switch e.Type {
	case EventMeltdown:
		attrs = append(attrs,
			slog.Float64("power", e.Power),
			slog.Float64("capacity", e.Capacity),
		)
	case EventAtomDecayed, EventAtomFissioned, EventDetonation:
		attrs = append(attrs,
			slog.Float64("x", e.Position.X),
			slog.Float64("y", e.Position.Y),
			slog.Int("health", e.Health),
			slog.Int("neutrons", e.Neutrons),
			slog.Float64("power", e.Power),
		)
	case EventNeutronAbsorbedByRod:
		attrs = append(attrs, slog.Int("rod", e.Rod))
	default:
		attrs = append(attrs,
			slog.Float64("x", e.Position.X),
			slog.Float64("y", e.Position.Y),
		)
	}
	return slog.GroupValue(attrs...)
}

// MaxQueuedEvents bounds the event queue between drains. Once it is full the
// oldest events are dropped.
const MaxQueuedEvents = 4096

// DrainEvents returns the events queued since the last drain and clears the
// queue. Hosts that never drain keep only the newest MaxQueuedEvents.
func (r *Reactor) DrainEvents() []Event {
	out := r.events
	r.events = nil
	return out
}

// DroppedEvents returns how many events were discarded because the queue
// was full.
func (r *Reactor) DroppedEvents() int { return r.droppedEvents }

func (r *Reactor) emit(e Event) {
	if len(r.events) >= MaxQueuedEvents {
		n := copy(r.events, r.events[1:])
		r.events = r.events[:n]
		r.droppedEvents++
	}
	r.events = append(r.events, e)
}
