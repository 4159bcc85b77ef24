// Package game runs a timed reactor session: the reactor, player input,
// an optional rod autopilot and telemetry output.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/chernobyl/camera"
	"github.com/pthm-cable/chernobyl/config"
	"github.com/pthm-cable/chernobyl/reactor"
	"github.com/pthm-cable/chernobyl/telemetry"
)

// ErrEndless is returned by CheckRunLimit when nothing would stop a run.
var ErrEndless = errors.New("session has no end: set session.duration or a tick limit")

// CheckRunLimit rejects a headless run whose session never ends and whose
// tick cap is disabled.
func CheckRunLimit(cfg *config.Config, maxTicks int) error {
	if cfg.Session.Duration <= 0 && maxTicks <= 0 {
		return ErrEndless
	}
	return nil
}

// Options configures a new session.
type Options struct {
	Seed           int64
	Config         *config.Config // nil uses config.Cfg()
	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string
	StepsPerUpdate int // ticks per Update call, at least 1
	Autopilot      bool

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
	// OnEvent receives every reactor event in emission order, e.g. to play
	// a sound when a neutron is created.
	OnEvent func(reactor.Event)
}

// Game holds the complete session state.
type Game struct {
	cfg      *config.Config
	rng      *rand.Rand
	rngSeed  int64
	reactor  *reactor.Reactor
	viewport *camera.Viewport

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	onEvent       func(reactor.Event)
	logStats      bool

	autopilot *Autopilot

	// State
	tick           int
	timeLeft       float64
	clicksLeft     int
	meltdowns      int
	paused         bool
	over           bool
	stepsPerUpdate int
	last           reactor.Step
}

// NewGameWithOptions creates a session from opts.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	params, err := cfg.ReactorParams()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	r, err := reactor.New(params, cfg.Derived.Bounds, rng)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	windowTicks := cfg.Derived.StatsWindowTicks
	if opts.StatsWindowSec > 0 {
		windowTicks = config.WindowTicks(opts.StatsWindowSec, cfg.Session.DT)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("new game: %w", err)
	}

	g := &Game{
		cfg:     cfg,
		rng:     rng,
		rngSeed: opts.Seed,
		reactor: r,
		viewport: camera.New(
			float64(cfg.Board.Width),
			float64(cfg.Board.Height+cfg.Board.HeaderHeight),
			float64(cfg.Board.HeaderHeight),
			float64(cfg.Board.Width),
			float64(cfg.Board.Height),
		),
		collector:      telemetry.NewCollector(windowTicks, cfg.Session.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		outputManager:  om,
		statsCallback:  opts.StatsCallback,
		onEvent:        opts.OnEvent,
		logStats:       opts.LogStats,
		timeLeft:       cfg.Session.Duration,
		clicksLeft:     cfg.Session.Clicks,
		stepsPerUpdate: max(1, opts.StepsPerUpdate),
	}
	r.SetPhaseTimer(g.perfCollector)

	if opts.Autopilot {
		g.autopilot = NewAutopilot(cfg.Autopilot.TargetFraction*params.PowerCapacity, cfg.Autopilot.Window)
	}

	g.logSessionStart()
	return g, nil
}

// Reactor returns the underlying simulation.
func (g *Game) Reactor() *reactor.Reactor { return g.reactor }

// Viewport returns the screen mapping used for clicks.
func (g *Game) Viewport() *camera.Viewport { return g.viewport }

// Tick returns the number of simulated ticks.
func (g *Game) Tick() int { return g.tick }

// TimeLeft returns the remaining session time in seconds, never negative.
func (g *Game) TimeLeft() float64 { return max(0, g.timeLeft) }

// ClicksLeft returns the detonations still available.
func (g *Game) ClicksLeft() int { return g.clicksLeft }

// Meltdowns returns the number of ticks that exceeded capacity so far.
func (g *Game) Meltdowns() int { return g.meltdowns }

// LastStep returns the summary of the most recent tick.
func (g *Game) LastStep() reactor.Step { return g.last }

// Over reports whether the session clock has run out. A zero duration
// never ends.
func (g *Game) Over() bool { return g.over }

// Scoreboard summarizes the session for the header strip.
func (g *Game) Scoreboard() telemetry.Scoreboard {
	return telemetry.NewScoreboard(
		g.reactor.PowerHistory(),
		g.reactor.Config().PowerCapacity,
		g.TimeLeft(),
		g.clicksLeft,
		g.cfg.Telemetry.DisplaySamples,
	)
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		logError("failed to close output", err)
	}
	g.outputManager = nil
}
