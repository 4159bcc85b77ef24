package telemetry

import "github.com/pthm-cable/chernobyl/reactor"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int
	dt                  float64

	// Current window tracking
	windowStartTick int
	power           []float64

	// Event counters for current window
	neutronsCreated int
	decays          int
	fissions        int
	escapes         int
	rodAbsorptions  int
	detonations     int
	meltdowns       int
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window spans, at least 1
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float64) *Collector {
	ticksPerWindow := max(1, windowTicks)

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		power:               make([]float64, 0, ticksPerWindow),
	}
}

// RecordEvent counts one reactor event.
func (c *Collector) RecordEvent(e reactor.Event) {
	switch e.Type {
	case reactor.EventNeutronCreated:
		c.neutronsCreated++
	case reactor.EventAtomDecayed:
		c.decays++
	case reactor.EventAtomFissioned:
		c.fissions++
	case reactor.EventAtomEscaped:
		c.escapes++
	case reactor.EventNeutronAbsorbedByRod:
		c.rodAbsorptions++
	case reactor.EventDetonation:
		c.detonations++
	case reactor.EventMeltdown:
		c.meltdowns++
	}
}

// RecordPower records one tick's power output, zero included.
func (c *Collector) RecordPower(p float64) {
	c.power = append(c.power, p)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the reactor's current state and resets
// counters for the next window.
func (c *Collector) Flush(currentTick int, r *reactor.Reactor) WindowStats {
	ps := ComputePowerStats(c.power)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Atoms:         len(r.Atoms()),
		Neutrons:      len(r.Neutrons()),
		MeanInsertion: r.MeanInsertion(),

		NeutronsCreated: c.neutronsCreated,
		Decays:          c.decays,
		Fissions:        c.fissions,
		Escapes:         c.escapes,
		RodAbsorptions:  c.rodAbsorptions,
		Detonations:     c.detonations,
		Meltdowns:       c.meltdowns,

		PowerSum:  ps.Sum,
		PowerMean: ps.Mean,
		PowerStd:  ps.Std,
		PowerP50:  ps.P50,
		PowerP90:  ps.P90,
		PowerPeak: ps.Peak,

		TotalPower: r.TotalPower(),
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.power = c.power[:0]
	c.neutronsCreated = 0
	c.decays = 0
	c.fissions = 0
	c.escapes = 0
	c.rodAbsorptions = 0
	c.detonations = 0
	c.meltdowns = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
