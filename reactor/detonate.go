package reactor

import (
	"slices"

	"github.com/pthm-cable/chernobyl/vec"
)

// Detonate force-splits the atom under point, given in board coordinates.
// The atom releases its fission yield but contributes no power. When atoms
// overlap, the one added last wins. It reports whether an atom was hit.
func (r *Reactor) Detonate(point vec.Vec) bool {
	for i := len(r.atoms) - 1; i >= 0; i-- {
		a := r.atoms[i]
		if a.Position.Dist(point) >= a.Radius {
			continue
		}

		y := r.yield(a.InitialHealth)
		r.emit(NewDetonationEvent(r.tick, a.Position, a.InitialHealth, y))
		r.emitNeutrons(a.Position, y)
		r.atoms = slices.Delete(r.atoms, i, i+1)
		return true
	}
	return false
}
