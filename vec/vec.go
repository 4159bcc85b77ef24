// Package vec provides the 2D vector type used for all positional and
// kinematic state in the reactor.
package vec

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tolerance is the default tolerance for approximate comparisons.
const Tolerance = 1e-6

// Defaults for Random.
const (
	DefaultRandomMagnitude = 10.0
	FullCircle             = 360.0
)

var (
	// ErrDivideByZero is returned when dividing a vector by exactly zero.
	ErrDivideByZero = errors.New("vec: divide by zero")
	// ErrZeroVector is returned by direction operations on a zero-length vector.
	ErrZeroVector = errors.New("vec: zero vector")
)

// Source is the uniform [0, 1) random source used across the simulation.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Vec is a 2D vector. It has the same layout as r2.Vec and converts freely.
type Vec struct {
	X, Y float64
}

// Zero is the origin.
var Zero = Vec{}

// New returns the vector (x, y).
func New(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) r2() r2.Vec { return r2.Vec(v) }

// String implements fmt.Stringer.
func (v Vec) String() string {
	return fmt.Sprintf("Vec(x=%g, y=%g)", v.X, v.Y)
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec(r2.Add(v.r2(), o.r2()))
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec(r2.Sub(v.r2(), o.r2()))
}

// Neg returns -v.
func (v Vec) Neg() Vec {
	return Vec(r2.Scale(-1, v.r2()))
}

// Scale returns v * f.
func (v Vec) Scale(f float64) Vec {
	return Vec(r2.Scale(f, v.r2()))
}

// Div returns v / f. Division by exactly zero is an error, never infinity.
func (v Vec) Div(f float64) (Vec, error) {
	if f == 0 {
		return Vec{}, ErrDivideByZero
	}
	return Vec(r2.Scale(1/f, v.r2())), nil
}

// Accumulate adds o into v in place. Used for integrating velocity and
// acceleration.
func (v *Vec) Accumulate(o Vec) {
	v.X += o.X
	v.Y += o.Y
}

// Mag returns the Euclidean norm, which is also the distance to the origin.
func (v Vec) Mag() float64 {
	return r2.Norm(v.r2())
}

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return r2.Norm(r2.Sub(v.r2(), o.r2()))
}

// Unit returns the unit vector in the direction of v.
func (v Vec) Unit() (Vec, error) {
	if v.Mag() == 0 {
		return Vec{}, ErrZeroVector
	}
	return Vec(r2.Unit(v.r2())), nil
}

// Dot returns the dot product.
func (v Vec) Dot(o Vec) float64 {
	return r2.Dot(v.r2(), o.r2())
}

// Cross returns the z component of the 3D cross product.
func (v Vec) Cross(o Vec) float64 {
	return r2.Cross(v.r2(), o.r2())
}

// AngleBetween returns the angle between v and o in degrees, in [0, 180].
func (v Vec) AngleBetween(o Vec) (float64, error) {
	if v.Mag() == 0 || o.Mag() == 0 {
		return 0, ErrZeroVector
	}
	return radToDeg(math.Atan2(math.Abs(v.Cross(o)), v.Dot(o))), nil
}

// Rotate returns v rotated counter-clockwise about the origin by deg degrees.
func (v Vec) Rotate(deg float64) Vec {
	return Vec(r2.Rotate(v.r2(), degToRad(deg), r2.Vec{}))
}

// IsParallel reports whether v and o are parallel within Tolerance.
func (v Vec) IsParallel(o Vec) bool {
	return math.Abs(v.Cross(o)) < Tolerance
}

// IsPerpendicular reports whether v and o are perpendicular within Tolerance.
func (v Vec) IsPerpendicular(o Vec) bool {
	return math.Abs(v.Dot(o)) < Tolerance
}

// IsNonParallel reports whether v is neither parallel nor perpendicular to o.
func (v Vec) IsNonParallel(o Vec) bool {
	return !v.IsParallel(o) && !v.IsPerpendicular(o)
}

// Equal reports whether v and o are within Tolerance of each other.
func (v Vec) Equal(o Vec) bool {
	return v.Dist(o) < Tolerance
}

// Tuple returns the components, truncated toward zero when whole is set.
func (v Vec) Tuple(whole bool) (float64, float64) {
	if whole {
		return math.Trunc(v.X), math.Trunc(v.Y)
	}
	return v.X, v.Y
}

// FromPolar builds a vector from a magnitude and an angle in degrees measured
// from the x axis.
func FromPolar(magnitude, deg float64) Vec {
	rad := degToRad(deg)
	return Vec{X: magnitude * math.Cos(rad), Y: magnitude * math.Sin(rad)}
}

// FromPolarJitter is FromPolar with the angle perturbed uniformly by up to
// ±jitter degrees. A zero jitter draws nothing from src.
func FromPolarJitter(src Source, magnitude, deg, jitter float64) Vec {
	if jitter != 0 {
		deg += (src.Float64()*2 - 1) * jitter
	}
	return FromPolar(magnitude, deg)
}

// Random returns a vector of the given magnitude pointing at an angle drawn
// uniformly from [0, angleRange) degrees.
func Random(src Source, magnitude, angleRange float64) Vec {
	return FromPolar(magnitude, src.Float64()*angleRange)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
