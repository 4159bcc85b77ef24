package reactor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/chernobyl/particle"
	"github.com/pthm-cable/chernobyl/vec"
)

// DefaultHealthRatio makes each extra hit point 1.5x as likely as the last.
const DefaultHealthRatio = 1.5

// spawnMargin keeps new atoms off the top and left edges.
const spawnMargin = 10.0

// HealthSampler draws atom health from 1..max with weights ratio^(h-1),
// using inverse-CDF lookup over a normalized cumulative table.
type HealthSampler struct {
	cdf []float64
}

// NewHealthSampler builds the cumulative table for health 1..maxHealth.
func NewHealthSampler(maxHealth int, ratio float64) (*HealthSampler, error) {
	if maxHealth < 1 {
		return nil, fmt.Errorf("health sampler max %d: %w", maxHealth, particle.ErrInvalidHealth)
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, fmt.Errorf("health sampler ratio %v must be positive and finite", ratio)
	}

	// Exponents are taken relative to the heaviest health so every weight
	// stays in (0, 1] whatever the range.
	top := maxHealth - 1
	if ratio < 1 {
		top = 0
	}
	weights := make([]float64, maxHealth)
	for i := range weights {
		weights[i] = math.Pow(ratio, float64(i-top))
	}
	cdf := make([]float64, maxHealth)
	floats.CumSum(cdf, weights)
	floats.Scale(1/cdf[maxHealth-1], cdf)

	return &HealthSampler{cdf: cdf}, nil
}

// Sample returns the first health whose cumulative probability covers the
// roll, falling back to the maximum for rounding at the top end.
func (s *HealthSampler) Sample(src vec.Source) int {
	roll := src.Float64()
	for i, c := range s.cdf {
		if roll <= c {
			return i + 1
		}
	}
	return len(s.cdf)
}

// Probabilities returns the probability of each health value, index h-1.
func (s *HealthSampler) Probabilities() []float64 {
	p := make([]float64, len(s.cdf))
	prev := 0.0
	for i, c := range s.cdf {
		p[i] = c - prev
		prev = c
	}
	return p
}

// trySpawn runs the per-tick spawn roll.
func (r *Reactor) trySpawn() {
	if r.src.Float64() >= r.cfg.AtomSpawnProbability {
		return
	}
	if len(r.atoms) >= r.cfg.AtomCapacity {
		return
	}
	r.spawnAtom()
}

// SpawnAtom places a new atom immediately, ignoring the spawn probability but
// not the capacity. It reports whether an atom was added.
func (r *Reactor) SpawnAtom() bool {
	if len(r.atoms) >= r.cfg.AtomCapacity {
		return false
	}
	r.spawnAtom()
	return true
}

func (r *Reactor) spawnAtom() {
	x := spawnMargin + r.src.Float64()*(r.bounds.Width-spawnMargin)
	y := spawnMargin + r.src.Float64()*(r.bounds.Height-spawnMargin)

	// Health is always in range, so construction cannot fail.
	a, _ := particle.NewAtom(vec.New(x, y), r.sampler.Sample(r.src))
	a.Velocity = vec.Random(r.src, r.cfg.AtomSpeed, vec.FullCircle)
	r.configureAtom(a)
	r.AddAtom(a)
}

// configureAtom applies the reactor tuning to an atom entering the board.
func (r *Reactor) configureAtom(a *particle.Atom) {
	a.DecayProbability = r.cfg.AtomDecayProbability
	a.AbsorptionRatio = r.cfg.AtomAbsorptionRatio
	a.AttractionStrength = r.cfg.AtomAttraction
}

// emitNeutrons releases n neutrons from pos in random directions.
func (r *Reactor) emitNeutrons(pos vec.Vec, n int) {
	for i := 0; i < n; i++ {
		neutron := particle.NewNeutron(pos, vec.Random(r.src, r.cfg.NeutronSpeed, vec.FullCircle))
		if r.cfg.NeutronLifetime > 0 {
			neutron.Lifetime = r.cfg.NeutronLifetime
		}
		neutron.AttractionStrength = r.cfg.NeutronAttraction
		r.AddNeutron(neutron)
	}
}
