package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/chernobyl/config"
	"github.com/pthm-cable/chernobyl/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = session length)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call")
	autopilot := flag.Bool("autopilot", false, "Move rods automatically to hold power near capacity")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := game.CheckRunLimit(config.Cfg(), *maxTicks); err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(2)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
		Autopilot:      *autopilot,
	})
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	for !g.Over() {
		g.UpdateHeadless()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	slog.Info("final score", "scoreboard", g.Scoreboard(), "meltdowns", g.Meltdowns())
}
