package game

import (
	"github.com/pthm-cable/chernobyl/reactor"
	"github.com/pthm-cable/chernobyl/telemetry"
)

// handleEvents drains the reactor's events into telemetry and the host hook.
func (g *Game) handleEvents() {
	for _, e := range g.reactor.DrainEvents() {
		g.collector.RecordEvent(e)

		if e.Type == reactor.EventMeltdown {
			g.meltdowns++
			m := telemetry.NewMeltdown(e, g.cfg.Session.DT, g.reactor)
			m.LogMeltdown()
			if err := g.outputManager.WriteMeltdown(m); err != nil {
				logError("failed to write meltdown", err)
			}
		}

		if g.onEvent != nil {
			g.onEvent(e)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.reactor)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		logError("failed to write telemetry", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		logError("failed to write perf", err)
	}
}
