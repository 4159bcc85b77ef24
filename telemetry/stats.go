// Package telemetry provides reactor health tracking, performance timing and
// CSV experiment output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Atoms         int     `csv:"atoms"`
	Neutrons      int     `csv:"neutrons"`
	MeanInsertion float64 `csv:"rod_insertion"`

	// Events during window
	NeutronsCreated int `csv:"neutrons_created"`
	Decays          int `csv:"decays"`
	Fissions        int `csv:"fissions"`
	Escapes         int `csv:"escapes"`
	RodAbsorptions  int `csv:"rod_absorptions"`
	Detonations     int `csv:"detonations"`
	Meltdowns       int `csv:"meltdowns"`

	// Power over the window's ticks, zero ticks included
	PowerSum  float64 `csv:"power_sum"`
	PowerMean float64 `csv:"power_mean"`
	PowerStd  float64 `csv:"power_std"`
	PowerP50  float64 `csv:"power_p50"`
	PowerP90  float64 `csv:"power_p90"`
	PowerPeak float64 `csv:"power_peak"`

	TotalPower float64 `csv:"total_power"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// PowerStats summarizes a run of per-tick power values.
type PowerStats struct {
	Sum, Mean, Std, P50, P90, Peak float64
}

// ComputePowerStats calculates the sum, mean, sample standard deviation,
// percentiles and peak of values.
func ComputePowerStats(values []float64) PowerStats {
	n := len(values)
	if n == 0 {
		return PowerStats{}
	}

	var s PowerStats
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}
	s.Sum = floats.Sum(values)
	s.Peak = floats.Max(values)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("atoms", s.Atoms),
		slog.Int("neutrons", s.Neutrons),
		slog.Float64("rod_insertion", s.MeanInsertion),
		slog.Int("neutrons_created", s.NeutronsCreated),
		slog.Int("decays", s.Decays),
		slog.Int("fissions", s.Fissions),
		slog.Int("escapes", s.Escapes),
		slog.Int("rod_absorptions", s.RodAbsorptions),
		slog.Int("detonations", s.Detonations),
		slog.Int("meltdowns", s.Meltdowns),
		slog.Float64("power_sum", s.PowerSum),
		slog.Float64("power_mean", s.PowerMean),
		slog.Float64("power_std", s.PowerStd),
		slog.Float64("power_p50", s.PowerP50),
		slog.Float64("power_p90", s.PowerP90),
		slog.Float64("power_peak", s.PowerPeak),
		slog.Float64("total_power", s.TotalPower),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"atoms", s.Atoms,
		"neutrons", s.Neutrons,
		"rod_insertion", s.MeanInsertion,
		"fissions", s.Fissions,
		"decays", s.Decays,
		"meltdowns", s.Meltdowns,
		"power_mean", s.PowerMean,
		"power_peak", s.PowerPeak,
		"total_power", s.TotalPower,
	)
}
