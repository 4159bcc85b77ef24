// Package config provides configuration loading and access for the reactor.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/chernobyl/reactor"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix prefixes every environment override, e.g.
// CHERNOBYL_REACTOR_POWER_CAPACITY.
const EnvPrefix = "CHERNOBYL_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Board     BoardConfig     `yaml:"board" envPrefix:"BOARD_"`
	Reactor   ReactorConfig   `yaml:"reactor" envPrefix:"REACTOR_"`
	Neutron   NeutronConfig   `yaml:"neutron" envPrefix:"NEUTRON_"`
	Rods      RodsConfig      `yaml:"rods" envPrefix:"RODS_"`
	Session   SessionConfig   `yaml:"session" envPrefix:"SESSION_"`
	Autopilot AutopilotConfig `yaml:"autopilot" envPrefix:"AUTOPILOT_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// BoardConfig holds the playable area. The scoreboard header sits above it.
type BoardConfig struct {
	Width        int `yaml:"width" env:"WIDTH"`
	Height       int `yaml:"height" env:"HEIGHT"`
	HeaderHeight int `yaml:"header_height" env:"HEADER_HEIGHT"`
}

// ReactorConfig holds atom population and power parameters.
type ReactorConfig struct {
	AtomCapacity         int     `yaml:"atom_capacity" env:"ATOM_CAPACITY"`
	AtomSpawnProbability float64 `yaml:"atom_spawn_probability" env:"ATOM_SPAWN_PROBABILITY"`
	AtomMaxHealth        int     `yaml:"atom_max_health" env:"ATOM_MAX_HEALTH"`
	AtomSpeed            float64 `yaml:"atom_speed" env:"ATOM_SPEED"`
	AtomDecayProbability float64 `yaml:"atom_decay_probability" env:"ATOM_DECAY_PROBABILITY"`
	AtomAbsorptionRatio  float64 `yaml:"atom_absorption_ratio" env:"ATOM_ABSORPTION_RATIO"`
	AtomAttraction       float64 `yaml:"atom_attraction" env:"ATOM_ATTRACTION"`
	HealthRatio          float64 `yaml:"health_ratio" env:"HEALTH_RATIO"`
	NeutronSpeed         float64 `yaml:"neutron_speed" env:"NEUTRON_SPEED"`
	PowerCapacity        float64 `yaml:"power_capacity" env:"POWER_CAPACITY"`
	Yield                string  `yaml:"yield" env:"YIELD"` // linear | squared | half_squared
}

// NeutronConfig holds neutron parameters.
type NeutronConfig struct {
	Lifetime   float64 `yaml:"lifetime" env:"LIFETIME"`
	Attraction float64 `yaml:"attraction" env:"ATTRACTION"`
}

// RodsConfig holds control rod parameters.
type RodsConfig struct {
	Count           int     `yaml:"count" env:"COUNT"`
	InsertionRate   float64 `yaml:"insertion_rate" env:"INSERTION_RATE"`
	AbsorptionRatio float64 `yaml:"absorption_ratio" env:"ABSORPTION_RATIO"`
}

// SessionConfig holds the game round parameters.
type SessionConfig struct {
	DT       float64 `yaml:"dt" env:"DT"`
	Duration float64 `yaml:"duration" env:"DURATION"` // seconds of simulated time
	Clicks   int     `yaml:"clicks" env:"CLICKS"`     // detonations available per round
}

// AutopilotConfig holds the automatic rod controller parameters.
type AutopilotConfig struct {
	TargetFraction float64 `yaml:"target_fraction" env:"TARGET_FRACTION"`
	Window         int     `yaml:"window" env:"WINDOW"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow    float64 `yaml:"stats_window" env:"STATS_WINDOW"` // seconds
	PerfWindow     int     `yaml:"perf_window" env:"PERF_WINDOW"`   // ticks
	DisplaySamples int     `yaml:"display_samples" env:"DISPLAY_SAMPLES"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Bounds           reactor.Bounds
	TicksPerSecond   float64
	DurationTicks    int
	StatsWindowTicks int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded defaults without file or environment overrides.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then applies CHERNOBYL_* environment overrides and validates the result.
// If path is empty, only embedded defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would make the simulation meaningless.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	probability := func(p float64) bool { return p >= 0 && p <= 1 }

	check(c.Board.Width > 0 && c.Board.Height > 0, "board size %dx%d must be positive", c.Board.Width, c.Board.Height)
	check(c.Board.HeaderHeight >= 0, "board.header_height %d must not be negative", c.Board.HeaderHeight)

	r := c.Reactor
	check(r.AtomCapacity >= 0, "reactor.atom_capacity %d must not be negative", r.AtomCapacity)
	check(r.AtomMaxHealth >= 1, "reactor.atom_max_health %d must be at least 1", r.AtomMaxHealth)
	check(probability(r.AtomSpawnProbability), "reactor.atom_spawn_probability %v outside [0, 1]", r.AtomSpawnProbability)
	check(probability(r.AtomDecayProbability), "reactor.atom_decay_probability %v outside [0, 1]", r.AtomDecayProbability)
	check(probability(r.AtomAbsorptionRatio), "reactor.atom_absorption_ratio %v outside [0, 1]", r.AtomAbsorptionRatio)
	check(r.AtomSpeed >= 0, "reactor.atom_speed %v must not be negative", r.AtomSpeed)
	check(r.NeutronSpeed >= 0, "reactor.neutron_speed %v must not be negative", r.NeutronSpeed)
	check(r.HealthRatio > 0 && !math.IsInf(r.HealthRatio, 0), "reactor.health_ratio %v must be positive", r.HealthRatio)
	if _, err := reactor.YieldByName(r.Yield); err != nil {
		check(false, "reactor.yield: %v", err)
	}

	check(c.Neutron.Lifetime > 0, "neutron.lifetime %v must be positive", c.Neutron.Lifetime)
	check(c.Rods.Count >= 0, "rods.count %d must not be negative", c.Rods.Count)
	check(c.Rods.InsertionRate >= 0, "rods.insertion_rate %v must not be negative", c.Rods.InsertionRate)
	check(probability(c.Rods.AbsorptionRatio), "rods.absorption_ratio %v outside [0, 1]", c.Rods.AbsorptionRatio)
	check(c.Session.DT > 0, "session.dt %v must be positive", c.Session.DT)
	check(c.Session.Duration >= 0, "session.duration %v must not be negative", c.Session.Duration)
	check(c.Session.Clicks >= 0, "session.clicks %d must not be negative", c.Session.Clicks)
	check(c.Autopilot.Window >= 1, "autopilot.window %d must be at least 1", c.Autopilot.Window)
	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window %v must be positive", c.Telemetry.StatsWindow)

	return errors.Join(errs...)
}

// Finalize validates c and recomputes derived values. Call it after editing
// a loaded config in place.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Bounds = reactor.Bounds{
		Width:  float64(c.Board.Width),
		Height: float64(c.Board.Height),
	}
	if c.Session.DT > 0 {
		c.Derived.TicksPerSecond = 1 / c.Session.DT
		c.Derived.DurationTicks = int(math.Round(c.Session.Duration / c.Session.DT))
		c.Derived.StatsWindowTicks = WindowTicks(c.Telemetry.StatsWindow, c.Session.DT)
	}
}

// WindowTicks converts a window length in seconds to whole ticks, at least 1.
func WindowTicks(seconds, dt float64) int {
	if dt <= 0 {
		return 1
	}
	return max(1, int(math.Round(seconds/dt)))
}

// ReactorParams converts the loaded values into reactor tuning.
func (c *Config) ReactorParams() (reactor.Config, error) {
	yield, err := reactor.YieldByName(c.Reactor.Yield)
	if err != nil {
		return reactor.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	r := c.Reactor
	return reactor.Config{
		AtomCapacity:         r.AtomCapacity,
		AtomSpawnProbability: r.AtomSpawnProbability,
		AtomMaxHealth:        r.AtomMaxHealth,
		AtomSpeed:            r.AtomSpeed,
		AtomDecayProbability: r.AtomDecayProbability,
		AtomAbsorptionRatio:  r.AtomAbsorptionRatio,
		AtomAttraction:       r.AtomAttraction,
		HealthRatio:          r.HealthRatio,
		NeutronSpeed:         r.NeutronSpeed,
		NeutronLifetime:      c.Neutron.Lifetime,
		NeutronAttraction:    c.Neutron.Attraction,
		PowerCapacity:        r.PowerCapacity,
		RodCount:             c.Rods.Count,
		RodInsertionRate:     c.Rods.InsertionRate,
		RodAbsorptionRatio:   c.Rods.AbsorptionRatio,
		Yield:                yield,
	}, nil
}

// Clone returns a deep copy safe to modify independently.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
