package reactor

import (
	"math"

	"github.com/pthm-cable/chernobyl/particle"
	"github.com/pthm-cable/chernobyl/vec"
)

// Step summarizes one call to Update.
type Step struct {
	Tick     int
	Power    float64
	Meltdown bool

	Decayed     int // atoms that decayed spontaneously
	Fissioned   int // atoms destroyed by neutrons
	Escaped     int // atoms that left the board
	Captured    int // neutrons absorbed by atoms
	Deflected   int // neutrons that bounced off atoms
	RodAbsorbed int // neutrons absorbed by rods
	Expired     int // neutrons that escaped or ran out of lifetime

	// NeutronsCreated counts neutrons added since the previous step,
	// including detonations between ticks.
	NeutronsCreated int
}

// Update advances the reactor by dt. Passes run in a fixed order: rods,
// atoms, neutrons, power accounting, spawning. Collections are walked from
// the highest index down and compacted after each pass, so removal never
// skips or revisits a member. Neutrons released during the neutron pass
// first move on the next tick.
func (r *Reactor) Update(dt float64) Step {
	r.tick++
	r.cur.Tick = r.tick

	r.startPhase(PhaseRods)
	r.rodPass()

	r.startPhase(PhaseAtoms)
	power := r.atomPass(dt)

	r.startPhase(PhaseNeutrons)
	power += r.neutronPass(dt)

	r.cur.Power = power
	if power > r.cfg.PowerCapacity {
		r.cur.Meltdown = true
		r.emit(NewMeltdownEvent(r.tick, power, r.cfg.PowerCapacity))
	}
	r.totalPower += power
	if power > 0 {
		r.history = append(r.history, power)
	}

	r.startPhase(PhaseSpawn)
	r.trySpawn()

	step := r.cur
	r.cur = Step{}
	return step
}

func (r *Reactor) rodPass() {
	for ri, rod := range r.rods {
		for i := len(r.neutrons) - 1; i >= 0; i-- {
			n := r.neutrons[i]
			if n == nil || !rod.Collided(&n.Body) {
				continue
			}
			if rod.Absorbed(r.src) {
				r.emit(NewRodAbsorptionEvent(r.tick, n.Position, ri))
				r.neutrons[i] = nil
				r.cur.RodAbsorbed++
			}
		}
	}
	r.neutrons = compact(r.neutrons)
}

func (r *Reactor) atomPass(dt float64) float64 {
	var power float64
	for i := len(r.atoms) - 1; i >= 0; i-- {
		a := r.atoms[i]

		if a.Escaped(r.bounds) {
			r.emit(NewAtomEscapedEvent(r.tick, a.Position, a.InitialHealth))
			r.atoms[i] = nil
			r.cur.Escaped++
			continue
		}

		a.Move(dt)
		if !a.Decay(r.src, dt) {
			continue
		}

		p := float64(a.Health()) / 2
		n := r.yield(a.InitialHealth)
		r.emit(NewAtomDecayedEvent(r.tick, a.Position, a.InitialHealth, n, p))
		r.emitNeutrons(a.Position, n)
		power += p
		r.atoms[i] = nil
		r.cur.Decayed++
	}
	r.atoms = compact(r.atoms)
	return power
}

func (r *Reactor) neutronPass(dt float64) float64 {
	r.indexAtoms()

	var power float64
	for i := len(r.neutrons) - 1; i >= 0; i-- {
		n := r.neutrons[i]

		if n.Escaped(r.bounds) || n.EndOfLife() {
			r.neutrons[i] = nil
			r.cur.Expired++
			continue
		}

		r.steer(n)
		n.Move(dt)

		j := r.firstCollision(n)
		if j < 0 {
			continue
		}
		a := r.atoms[j]

		if !a.Captures(r.src) {
			n.Bounce(&a.Body)
			r.cur.Deflected++
			continue
		}

		a.Damage(impactDamage(n))
		r.neutrons[i] = nil
		r.cur.Captured++

		if !a.IsDead() {
			a.Bounce(&n.Body)
			continue
		}

		p := float64(a.InitialHealth)
		y := r.yield(a.InitialHealth)
		r.emit(NewAtomFissionedEvent(r.tick, a.Position, a.InitialHealth, y, p))
		r.emitNeutrons(a.Position, y)
		power += p
		r.atoms[j] = nil
		r.cur.Fissioned++
	}
	r.neutrons = compact(r.neutrons)
	r.atoms = compact(r.atoms)
	return power
}

// indexAtoms rebuilds the collision grid from the current atom positions.
// Atoms do not move during the neutron pass, so the grid stays valid for it.
func (r *Reactor) indexAtoms() {
	r.grid.Clear()
	r.maxAtomRadius = 0
	for i, a := range r.atoms {
		r.grid.Insert(i, a.Position.X, a.Position.Y)
		r.maxAtomRadius = math.Max(r.maxAtomRadius, a.Radius)
	}
}

// firstCollision returns the highest-index live atom touching n, or -1.
func (r *Reactor) firstCollision(n *particle.Neutron) int {
	r.candidates = r.grid.QueryInto(r.candidates[:0], n.Position.X, n.Position.Y, n.Radius+r.maxAtomRadius)

	best := -1
	for _, j := range r.candidates {
		if j <= best {
			continue
		}
		a := r.atoms[j]
		if a != nil && n.Collided(&a.Body) {
			best = j
		}
	}
	return best
}

// steer points an attracted neutron at every live atom.
func (r *Reactor) steer(n *particle.Neutron) {
	if n.AttractionStrength == 0 {
		return
	}
	n.Acceleration = vec.Zero
	for _, a := range r.atoms {
		if a != nil {
			n.AttractTo(&a.Body)
		}
	}
}

// impactDamage is the neutron's hit points plus a bonus of floor(ln(speed)).
// The bonus never goes below zero, so slow neutrons cannot heal an atom.
func impactDamage(n *particle.Neutron) int {
	bonus := math.Floor(math.Log(n.Velocity.Mag()))
	if !(bonus > 0) {
		bonus = 0
	}
	return n.Health() + int(bonus)
}
