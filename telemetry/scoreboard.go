package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Downsample reduces values to at most target points by averaging equal
// bins. Short inputs are returned as a copy.
func Downsample(values []float64, target int) []float64 {
	if target <= 0 {
		return nil
	}
	if len(values) <= target {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := make([]float64, target)
	for i := range out {
		lo := i * len(values) / target
		hi := (i + 1) * len(values) / target
		if lo < hi {
			out[i] = stat.Mean(values[lo:hi], nil)
		} else {
			out[i] = values[lo]
		}
	}
	return out
}

// PeakPower returns the largest recorded power and false when nothing has
// been recorded.
func PeakPower(history []float64) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	return floats.Max(history), true
}

// GeneratedPower is the sum of recorded power.
func GeneratedPower(history []float64) float64 {
	return floats.Sum(history)
}

// Scoreboard is the header strip shown above the board.
type Scoreboard struct {
	TimeLeft       float64
	ClicksLeft     int
	GeneratedPower float64
	PeakPower      float64
	HasPeak        bool
	Capacity       float64
	Graph          []float64 // downsampled power history
}

// NewScoreboard summarizes a power history for display.
func NewScoreboard(history []float64, capacity, timeLeft float64, clicksLeft, samples int) Scoreboard {
	peak, ok := PeakPower(history)
	return Scoreboard{
		TimeLeft:       timeLeft,
		ClicksLeft:     clicksLeft,
		GeneratedPower: GeneratedPower(history),
		PeakPower:      peak,
		HasPeak:        ok,
		Capacity:       capacity,
		Graph:          Downsample(history, samples),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Scoreboard) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Float64("time_left", s.TimeLeft),
		slog.Int("clicks_left", s.ClicksLeft),
		slog.Float64("generated_power", s.GeneratedPower),
		slog.Float64("capacity", s.Capacity),
	}
	if s.HasPeak {
		attrs = append(attrs, slog.Float64("peak_power", s.PeakPower))
	}
	return slog.GroupValue(attrs...)
}
