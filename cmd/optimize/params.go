// Package main provides CMA-ES optimization for reactor parameters.
package main

import (
	"github.com/pthm-cable/chernobyl/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "atom_spawn_probability", Path: "reactor.atom_spawn_probability", Min: 0.05, Max: 1.0, Default: 0.75},
			{Name: "neutron_speed", Path: "reactor.neutron_speed", Min: 100, Max: 1000, Default: 500},
			{Name: "atom_absorption_ratio", Path: "reactor.atom_absorption_ratio", Min: 0.05, Max: 1.0, Default: 0.25},
			{Name: "rod_absorption_ratio", Path: "rods.absorption_ratio", Min: 0.0, Max: 1.0, Default: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(spec.Max, max(spec.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig clamps values and writes them into cfg, then refreshes its
// derived values. Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	cfg.Reactor.AtomSpawnProbability = clamped[0]
	cfg.Reactor.NeutronSpeed = clamped[1]
	cfg.Reactor.AtomAbsorptionRatio = clamped[2]
	cfg.Rods.AbsorptionRatio = clamped[3]

	return cfg.Finalize()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Reactor.AtomSpawnProbability,
		cfg.Reactor.NeutronSpeed,
		cfg.Reactor.AtomAbsorptionRatio,
		cfg.Rods.AbsorptionRatio,
	}
}
