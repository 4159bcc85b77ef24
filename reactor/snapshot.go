package reactor

import (
	"image/color"

	"github.com/pthm-cable/chernobyl/particle"
	"github.com/pthm-cable/chernobyl/vec"
)

// BodyView is the drawable state of one particle.
type BodyView struct {
	Kind     particle.Kind
	Position vec.Vec
	Radius   float64
	Color    color.RGBA
	Health   int
}

// RodView is the drawable state of one control rod.
type RodView struct {
	Start     vec.Vec
	End       vec.Vec
	Width     float64
	Insertion float64
	Color     color.RGBA
}

// Snapshot is a copy of the board for a renderer. It shares no memory with
// the reactor.
type Snapshot struct {
	Tick       int
	Bounds     Bounds
	Atoms      []BodyView
	Neutrons   []BodyView
	Rods       []RodView
	TotalPower float64
	LastPower  float64
	Capacity   float64
}

// Snapshot copies the current drawable state.
func (r *Reactor) Snapshot() Snapshot {
	s := Snapshot{
		Tick:       r.tick,
		Bounds:     r.bounds,
		Atoms:      make([]BodyView, 0, len(r.atoms)),
		Neutrons:   make([]BodyView, 0, len(r.neutrons)),
		Rods:       make([]RodView, 0, len(r.rods)),
		TotalPower: r.totalPower,
		Capacity:   r.cfg.PowerCapacity,
	}
	if n := len(r.history); n > 0 {
		s.LastPower = r.history[n-1]
	}

	for _, a := range r.atoms {
		s.Atoms = append(s.Atoms, view(a))
	}
	for _, n := range r.neutrons {
		s.Neutrons = append(s.Neutrons, view(n))
	}
	for _, rod := range r.rods {
		s.Rods = append(s.Rods, RodView{
			Start:     rod.Start(),
			End:       rod.End(),
			Width:     particle.RodWidth,
			Insertion: rod.Insertion,
			Color:     rod.Color(),
		})
	}
	return s
}

func view(p particle.Particle) BodyView {
	b := p.Kinematics()
	return BodyView{
		Kind:     p.Kind(),
		Position: b.Position,
		Radius:   b.Radius,
		Color:    p.Color(),
		Health:   b.Health(),
	}
}
