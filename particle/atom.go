package particle

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/pthm-cable/chernobyl/vec"
)

// ErrInvalidHealth is returned when an atom is built with no hit points.
var ErrInvalidHealth = errors.New("particle: atom health must be positive")

// Atom defaults.
const (
	AtomRadius              = 20.0
	DefaultDecayProbability = 0.1
	DefaultAbsorptionRatio  = 0.5
)

// Atom is a multi-hit particle that decays or is split by neutrons.
type Atom struct {
	Body

	InitialHealth      int
	DecayProbability   float64 // per unit time
	AbsorptionRatio    float64 // chance of capturing a colliding neutron
	AttractionStrength float64 // unused by the default reactor

	palette []color.RGBA
}

// NewAtom returns an atom at pos with the given hit points.
func NewAtom(pos vec.Vec, health int) (*Atom, error) {
	if health <= 0 {
		return nil, fmt.Errorf("new atom with health %d: %w", health, ErrInvalidHealth)
	}
	a := &Atom{
		Body:             NewBody(pos, vec.Zero, AtomRadius),
		InitialHealth:    health,
		DecayProbability: DefaultDecayProbability,
		AbsorptionRatio:  DefaultAbsorptionRatio,
		palette:          Palette(health),
	}
	a.SetHealth(health)
	return a, nil
}

// Kind implements Particle.
func (a *Atom) Kind() Kind { return KindAtom }

// Color shifts from red toward blue as the atom loses health.
// Atoms built without NewAtom get a palette sized to their initial health.
func (a *Atom) Color() color.RGBA {
	palette := a.palette
	if len(palette) == 0 {
		palette = Palette(max(1, a.InitialHealth, a.Health()))
	}
	i := a.Health() - 1
	if i < 0 {
		i = 0
	} else if i >= len(palette) {
		i = len(palette) - 1
	}
	return palette[i]
}

// Damage removes n hit points, clamped at zero.
func (a *Atom) Damage(n int) {
	a.SetHealth(a.Health() - n)
}

// Decay draws once against the decay probability scaled to dt.
func (a *Atom) Decay(src vec.Source, dt float64) bool {
	return src.Float64() < TimeScaled(a.DecayProbability, dt)
}

// Absorbed draws once against the absorption ratio scaled to dt.
func (a *Atom) Absorbed(src vec.Source, dt float64) bool {
	return src.Float64() < TimeScaled(a.AbsorptionRatio, dt)
}

// Captures draws once against the absorption ratio for a single contact. It
// is not scaled by the timestep.
func (a *Atom) Captures(src vec.Source) bool {
	return src.Float64() < a.AbsorptionRatio
}

// TimeScaled converts a per-unit-time probability p into the probability of
// at least one event over dt: 1 - (1-p)^dt. Splitting a period into more
// ticks leaves the survival probability over the whole period unchanged.
func TimeScaled(p, dt float64) float64 {
	return 1 - math.Pow(1-p, dt)
}
