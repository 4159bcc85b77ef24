// Package reactor runs the chain reaction. A Reactor owns the atoms, neutrons
// and control rods of one session and advances them one tick at a time.
package reactor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pthm-cable/chernobyl/particle"
	"github.com/pthm-cable/chernobyl/vec"
)

var (
	// ErrInvalidBounds is returned for a board with no area.
	ErrInvalidBounds = errors.New("reactor: bounds must be positive")
	// ErrNoSuchRod is returned for a rod index outside the rod set.
	ErrNoSuchRod = errors.New("reactor: no such rod")
)

// Bounds is the playable board.
type Bounds = particle.Bounds

// gridCellSize covers one atom diameter per cell.
const gridCellSize = 2 * particle.AtomRadius

// Phase names reported to a PhaseTimer.
const (
	PhaseRods     = "rods"
	PhaseAtoms    = "atoms"
	PhaseNeutrons = "neutrons"
	PhaseSpawn    = "spawn"
)

// PhaseTimer receives the start of each update phase.
type PhaseTimer interface {
	StartPhase(name string)
}

// Reactor is the simulation state of one session. It is not safe for
// concurrent use.
type Reactor struct {
	cfg     Config
	bounds  Bounds
	src     vec.Source
	yield   YieldFunc
	sampler *HealthSampler
	grid    *Grid
	timer   PhaseTimer

	atoms    []*particle.Atom
	neutrons []*particle.Neutron
	rods     []*particle.Rod

	tick       int
	totalPower float64
	history    []float64
	events     []Event
	cur        Step

	droppedEvents int

	candidates    []int
	maxAtomRadius float64
}

// New creates a reactor with cfg.RodCount rods spread evenly across the board.
func New(cfg Config, bounds Bounds, src vec.Source) (*Reactor, error) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil, fmt.Errorf("new reactor %vx%v: %w", bounds.Width, bounds.Height, ErrInvalidBounds)
	}
	sampler, err := NewHealthSampler(cfg.AtomMaxHealth, cfg.HealthRatio)
	if err != nil {
		return nil, fmt.Errorf("new reactor: %w", err)
	}
	if cfg.Yield == nil {
		cfg.Yield = LinearYield
	}

	r := &Reactor{
		cfg:     cfg,
		bounds:  bounds,
		src:     src,
		yield:   cfg.Yield,
		sampler: sampler,
		grid:    NewGrid(bounds.Width, bounds.Height, gridCellSize),
	}

	for i := 0; i < cfg.RodCount; i++ {
		x := int(float64(i+1) * bounds.Width / float64(cfg.RodCount+1))
		rod := particle.NewRod(x, bounds.Height)
		rod.InsertionRate = cfg.RodInsertionRate
		rod.AbsorptionRatio = cfg.RodAbsorptionRatio
		r.rods = append(r.rods, rod)
	}

	return r, nil
}

// SetPhaseTimer installs a timer notified at each update phase. Nil disables it.
func (r *Reactor) SetPhaseTimer(t PhaseTimer) {
	r.timer = t
}

func (r *Reactor) startPhase(name string) {
	if r.timer != nil {
		r.timer.StartPhase(name)
	}
}

// Config returns the reactor tuning.
func (r *Reactor) Config() Config { return r.cfg }

// Bounds returns the board size.
func (r *Reactor) Bounds() Bounds { return r.bounds }

// TickCount returns the number of completed updates.
func (r *Reactor) TickCount() int { return r.tick }

// AddAtom places an atom on the board as-is.
func (r *Reactor) AddAtom(a *particle.Atom) {
	r.atoms = append(r.atoms, a)
}

// AddNeutron places a neutron on the board as-is.
func (r *Reactor) AddNeutron(n *particle.Neutron) {
	r.neutrons = append(r.neutrons, n)
	r.cur.NeutronsCreated++
	r.emit(NewNeutronCreatedEvent(r.tick, n.Position))
}

// Add places a particle in the collection matching its kind.
func (r *Reactor) Add(p particle.Particle) {
	switch v := p.(type) {
	case *particle.Atom:
		r.AddAtom(v)
	case *particle.Neutron:
		r.AddNeutron(v)
	}
}

// Atoms returns the live atoms. The slice must not be modified.
func (r *Reactor) Atoms() []*particle.Atom { return r.atoms }

// Neutrons returns the live neutrons. The slice must not be modified.
func (r *Reactor) Neutrons() []*particle.Neutron { return r.neutrons }

// Rods returns the control rods in left-to-right order.
func (r *Reactor) Rods() []*particle.Rod { return r.rods }

// TotalPower is the sum of all tick power so far.
func (r *Reactor) TotalPower() float64 { return r.totalPower }

// PowerHistory returns every non-zero tick power in order. The slice must not
// be modified.
func (r *Reactor) PowerHistory() []float64 { return r.history }

// LiftRod withdraws rod i by one step.
func (r *Reactor) LiftRod(i int) error {
	rod, err := r.rod(i)
	if err != nil {
		return err
	}
	rod.Lift()
	return nil
}

// LowerRod inserts rod i by one step.
func (r *Reactor) LowerRod(i int) error {
	rod, err := r.rod(i)
	if err != nil {
		return err
	}
	rod.Lower()
	return nil
}

// LiftAll withdraws every rod by one step.
func (r *Reactor) LiftAll() {
	for _, rod := range r.rods {
		rod.Lift()
	}
}

// LowerAll inserts every rod by one step.
func (r *Reactor) LowerAll() {
	for _, rod := range r.rods {
		rod.Lower()
	}
}

// MeanInsertion is the average insertion across all rods, 0 with no rods.
func (r *Reactor) MeanInsertion() float64 {
	if len(r.rods) == 0 {
		return 0
	}
	var sum float64
	for _, rod := range r.rods {
		sum += rod.Insertion
	}
	return sum / float64(len(r.rods))
}

func (r *Reactor) rod(i int) (*particle.Rod, error) {
	if i < 0 || i >= len(r.rods) {
		return nil, fmt.Errorf("rod %d of %d: %w", i, len(r.rods), ErrNoSuchRod)
	}
	return r.rods[i], nil
}

// compact drops the entries removed during a pass, keeping order.
func compact[T any](s []*T) []*T {
	return slices.DeleteFunc(s, func(p *T) bool { return p == nil })
}
