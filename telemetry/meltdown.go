package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/chernobyl/reactor"
)

// Meltdown records one tick whose power exceeded capacity.
type Meltdown struct {
	Tick     int     `csv:"tick"`
	SimTime  float64 `csv:"sim_time"`
	Power    float64 `csv:"power"`
	Capacity float64 `csv:"capacity"`
	Overload float64 `csv:"overload"` // power / capacity
	Atoms    int     `csv:"atoms"`
	Neutrons int     `csv:"neutrons"`
}

// NewMeltdown builds a record from a meltdown event and the reactor state
// after the tick.
func NewMeltdown(e reactor.Event, dt float64, r *reactor.Reactor) Meltdown {
	m := Meltdown{
		Tick:     e.Tick,
		SimTime:  float64(e.Tick) * dt,
		Power:    e.Power,
		Capacity: e.Capacity,
		Atoms:    len(r.Atoms()),
		Neutrons: len(r.Neutrons()),
	}
	if e.Capacity > 0 {
		m.Overload = e.Power / e.Capacity
	}
	return m
}

// LogMeltdown logs the meltdown using slog.
func (m Meltdown) LogMeltdown() {
	slog.Warn("meltdown",
		"tick", m.Tick,
		"sim_time", m.SimTime,
		"power", m.Power,
		"capacity", m.Capacity,
		"overload", m.Overload,
		"neutrons", m.Neutrons,
	)
}
