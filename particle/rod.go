package particle

import (
	"image/color"
	"math"

	"github.com/pthm-cable/chernobyl/vec"
)

// Rod defaults.
const (
	DefaultInsertionRate      = 0.1
	DefaultRodAbsorptionRatio = 1.0
	RodWidth                  = 4
)

var rodColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Rod is a vertical control rod hanging from the top of the board. Only the
// inserted part of its segment absorbs neutrons.
type Rod struct {
	X               int
	Insertion       float64 // 0 = fully lifted, 1 = fully inserted
	InsertionRate   float64 // change per Lift/Lower
	AbsorptionRatio float64
	BoardHeight     float64
}

// NewRod returns a fully lifted rod at x.
func NewRod(x int, boardHeight float64) *Rod {
	return &Rod{
		X:               x,
		InsertionRate:   DefaultInsertionRate,
		AbsorptionRatio: DefaultRodAbsorptionRatio,
		BoardHeight:     boardHeight,
	}
}

// Depth is how far the rod reaches into the board.
func (r *Rod) Depth() float64 {
	return r.Insertion * r.BoardHeight
}

// Start is the top end of the rod.
func (r *Rod) Start() vec.Vec {
	return vec.New(float64(r.X), 0)
}

// End is the inserted tip of the rod.
func (r *Rod) End() vec.Vec {
	return vec.New(float64(r.X), r.Depth())
}

// Color returns the draw color.
func (r *Rod) Color() color.RGBA { return rodColor }

// Lower inserts the rod by one step.
func (r *Rod) Lower() {
	r.setInsertion(r.Insertion + r.InsertionRate)
}

// Lift withdraws the rod by one step.
func (r *Rod) Lift() {
	r.setInsertion(r.Insertion - r.InsertionRate)
}

// SetInsertion sets the insertion fraction, clamped to [0, 1].
func (r *Rod) SetInsertion(f float64) {
	r.setInsertion(f)
}

func (r *Rod) setInsertion(f float64) {
	r.Insertion = math.Max(0, math.Min(1, f))
}

// Collided reports whether b touches the live part of the rod.
func (r *Rod) Collided(b *Body) bool {
	if math.Abs(b.Position.X-float64(r.X)) > b.Radius {
		return false
	}
	y0, y1 := r.Start().Y, r.End().Y
	py := b.Position.Y
	return py >= math.Min(y0, y1) && py <= math.Max(y0, y1)
}

// Absorbed is a single draw per contact; it is not scaled by the timestep.
func (r *Rod) Absorbed(src vec.Source) bool {
	return src.Float64() < r.AbsorptionRatio
}
