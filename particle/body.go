// Package particle defines the simulated bodies: atoms, neutrons and the
// control rods that absorb them.
package particle

import (
	"image/color"
	"math"

	"github.com/pthm-cable/chernobyl/vec"
)

// Kind tags the closed set of particle variants.
type Kind uint8

const (
	KindAtom Kind = iota
	KindNeutron
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindNeutron:
		return "neutron"
	default:
		return "unknown"
	}
}

// Bounds is the playable area. Particles live in [0, Width) x [0, Height).
type Bounds struct {
	Width, Height float64
}

// Particle is the capability set shared by atoms and neutrons.
type Particle interface {
	Kind() Kind
	Kinematics() *Body
	Move(dt float64)
	Collided(other *Body) bool
	Bounce(other *Body)
	Escaped(b Bounds) bool
	EndOfLife() bool
	IsDead() bool
	DecreaseHealth()
	Color() color.RGBA
}

// minBounceDistance guards the contact normal against coincident centers.
const minBounceDistance = 0.1

// Body is the kinematic record embedded by every particle variant.
type Body struct {
	Position     vec.Vec
	Velocity     vec.Vec
	Acceleration vec.Vec
	Radius       float64
	Age          float64
	Lifetime     float64

	health int
}

// NewBody returns a body at pos with an unbounded lifetime and one hit point.
func NewBody(pos, vel vec.Vec, radius float64) Body {
	return Body{
		Position: pos,
		Velocity: vel,
		Radius:   radius,
		Lifetime: math.Inf(1),
		health:   1,
	}
}

// Kinematics returns the body itself.
func (b *Body) Kinematics() *Body { return b }

// Health returns the remaining hit points.
func (b *Body) Health() int { return b.health }

// SetHealth sets the hit points, clamped at zero.
func (b *Body) SetHealth(h int) {
	if h < 0 {
		h = 0
	}
	b.health = h
}

// DecreaseHealth removes one hit point.
func (b *Body) DecreaseHealth() { b.SetHealth(b.health - 1) }

// IsDead reports whether the body has no hit points left.
func (b *Body) IsDead() bool { return b.health == 0 }

// Move integrates the body forward by dt.
func (b *Body) Move(dt float64) {
	b.Age += dt
	b.Velocity.Accumulate(b.Acceleration.Scale(dt))
	b.Position.Accumulate(b.Velocity.Scale(dt))
}

// Collided reports whether the two bodies overlap.
func (b *Body) Collided(other *Body) bool {
	return b.Position.Dist(other.Position) < b.Radius+other.Radius
}

// Bounce applies an elastic impulse along the contact normal, using radius as
// mass. Both velocities change.
func (b *Body) Bounce(other *Body) {
	if !b.Collided(other) {
		return
	}

	delta := b.Position.Sub(other.Position)
	distance := delta.Mag()
	if distance < minBounceDistance {
		return
	}
	normal := delta.Scale(1 / distance)

	velAlongNormal := b.Velocity.Sub(other.Velocity).Dot(normal)
	if velAlongNormal >= 0 {
		return // separating
	}

	m1, m2 := b.Radius, other.Radius
	impulse := 2 * velAlongNormal / (m1 + m2)

	b.Velocity = b.Velocity.Sub(normal.Scale(impulse * m2))
	other.Velocity = other.Velocity.Add(normal.Scale(impulse * m1))
}

// Escaped reports whether the body has left the bounds by more than its radius.
func (b *Body) Escaped(bounds Bounds) bool {
	x, y, r := b.Position.X, b.Position.Y, b.Radius
	inX := -r <= x && x < bounds.Width+r
	inY := -r <= y && y < bounds.Height+r
	return !(inX && inY)
}

// EndOfLife reports whether the body has reached its lifetime.
func (b *Body) EndOfLife() bool {
	return b.Age >= b.Lifetime
}

var (
	_ Particle = (*Atom)(nil)
	_ Particle = (*Neutron)(nil)
)
