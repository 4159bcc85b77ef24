package game

import "github.com/pthm-cable/chernobyl/telemetry"

// Update advances the session by StepsPerUpdate ticks unless it is paused
// or over.
func (g *Game) Update() {
	if g.paused {
		return
	}
	g.UpdateHeadless()
}

// UpdateHeadless advances the session by StepsPerUpdate ticks, ignoring the
// pause flag. It stops early when the session ends.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate && !g.over; i++ {
		g.simulationStep()
	}
}

// simulationStep runs one dt tick with perf timing and telemetry.
func (g *Game) simulationStep() {
	dt := g.cfg.Session.DT

	g.perfCollector.StartTick()

	step := g.reactor.Update(dt)
	g.tick = step.Tick
	g.last = step

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.handleEvents()
	g.collector.RecordPower(step.Power)

	if g.autopilot != nil {
		g.autopilot.Adjust(g.reactor, step.Power)
	}

	g.flushTelemetry()
	g.perfCollector.EndTick()

	if g.cfg.Session.Duration > 0 {
		g.timeLeft = g.cfg.Session.Duration - float64(g.tick)*dt
		if g.tick >= max(1, g.cfg.Derived.DurationTicks) {
			g.over = true
			g.logSessionEnd()
		}
	}
}
