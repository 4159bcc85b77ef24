package particle

import (
	"image/color"

	"github.com/pthm-cable/chernobyl/vec"
)

// Neutron defaults.
const (
	NeutronRadius   = 5.0
	NeutronLifetime = 1.0
)

var neutronColor = color.RGBA{G: 255, A: 255}

// Neutron is a fast single-hit particle emitted by fission.
type Neutron struct {
	Body

	AttractionStrength float64
}

// NewNeutron returns a neutron at pos moving with vel.
func NewNeutron(pos, vel vec.Vec) *Neutron {
	n := &Neutron{Body: NewBody(pos, vel, NeutronRadius)}
	n.Lifetime = NeutronLifetime
	return n
}

// Kind implements Particle.
func (n *Neutron) Kind() Kind { return KindNeutron }

// Color implements Particle.
func (n *Neutron) Color() color.RGBA { return neutronColor }

// AttractTo adds an inverse-square acceleration toward target.
func (n *Neutron) AttractTo(target *Body) {
	if n.AttractionStrength == 0 {
		return
	}
	delta := target.Position.Sub(n.Position)
	distance := delta.Mag()
	if distance < minBounceDistance {
		return
	}
	direction := delta.Scale(1 / distance)
	n.Acceleration.Accumulate(direction.Scale(n.AttractionStrength / (distance * distance)))
}
