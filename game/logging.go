package game

import "log/slog"

func logError(msg string, err error) {
	slog.Error(msg, "error", err)
}

func (g *Game) logSessionStart() {
	b := g.cfg.Derived.Bounds
	slog.Info("session_start",
		"seed", g.rngSeed,
		"board_width", b.Width,
		"board_height", b.Height,
		"duration", g.cfg.Session.Duration,
		"clicks", g.clicksLeft,
		"rods", len(g.reactor.Rods()),
		"autopilot", g.autopilot != nil,
		"output_dir", g.outputManager.Dir(),
	)
}

func (g *Game) logSessionEnd() {
	slog.Info("session_end",
		"tick", g.tick,
		"meltdowns", g.meltdowns,
		"atoms", len(g.reactor.Atoms()),
		"neutrons", len(g.reactor.Neutrons()),
		"scoreboard", g.Scoreboard(),
	)
}
