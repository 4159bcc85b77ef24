package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/chernobyl/config"
	"github.com/pthm-cable/chernobyl/game"
	"github.com/pthm-cable/chernobyl/telemetry"
)

// FitnessEvaluator runs headless sessions and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	autopilot   bool

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastPower   float64 // mean generated power from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. maxTicks 0 runs every
// session to the end of its clock.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, autopilot bool) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		autopilot:   autopilot,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastPower returns the mean generated power from the most recent evaluation.
func (fe *FitnessEvaluator) LastPower() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastPower
}

// runResult holds the results from a single session.
type runResult struct {
	generatedPower float64
	meltdowns      int
	windowStats    []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	power   float64
}

// meltdownPenalty is charged per tick over capacity, in units of power.
const meltdownPenalty = 2.0

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "error", err)
		return math.Inf(1)
	}

	// Run all seeds in parallel, each with its own Game
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Error("simulation failed", "seed", s, "error", err)
				results[idx] = seedResult{fitness: math.Inf(1)}
				return
			}
			results[idx] = seedResult{
				fitness: computeFitness(result, cfg.Reactor.PowerCapacity),
				quality: computeQuality(result.windowStats, cfg.Reactor.PowerCapacity),
				power:   result.generatedPower,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalPower float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalPower += r.power
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastPower = totalPower / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes one headless session with cfg. The config is
// only read, so seeds can share it.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (*runResult, error) {
	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Config:         cfg,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Autopilot:      fe.autopilot,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	for !g.Over() {
		g.UpdateHeadless()
		if fe.maxTicks > 0 && g.Tick() >= fe.maxTicks {
			break
		}
	}

	result.generatedPower = g.Reactor().TotalPower()
	result.meltdowns = g.Meltdowns()
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(power × (1 + 0.2 × quality)) + penalty × meltdowns × capacity
// Power dominates; quality adds up to 20% bonus to differentiate configs
// with similar output.
func computeFitness(r *runResult, capacity float64) float64 {
	quality := computeQuality(r.windowStats, capacity)
	return -(r.generatedPower * (1.0 + 0.2*quality)) + meltdownPenalty*float64(r.meltdowns)*capacity
}

// Quality component weights.
const (
	qualityWeightStability   = 0.5
	qualityWeightUtilization = 0.5

	qualityWarmupWindows = 2 // skip first N windows (warmup)
	targetUtilization    = 0.75
)

// computeQuality scores steady output near capacity, in [0, 1].
func computeQuality(windows []telemetry.WindowStats, capacity float64) float64 {
	if len(windows) <= qualityWarmupWindows || capacity <= 0 {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	means := make([]float64, len(valid))
	var utilSum float64
	for i, w := range valid {
		means[i] = w.PowerMean
		d := (w.PowerP90/capacity - targetUtilization) / 0.25
		utilSum += math.Exp(-d * d)
	}

	stabilityScore := 0.0
	if len(means) >= 2 {
		c := cv(means)
		stabilityScore = math.Exp(-c * c)
	}
	utilScore := utilSum / float64(len(valid))

	return clamp01(qualityWeightStability*stabilityScore + qualityWeightUtilization*utilScore)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(1, max(0, x))
}
