package game

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/chernobyl/reactor"
)

// Autopilot is a bang-bang rod controller. It watches the mean power over
// a rolling window of ticks and lowers every rod one step while the mean is
// above target, lifting them while it is below.
type Autopilot struct {
	target float64
	window []float64
	next   int
	filled int
}

// NewAutopilot creates a controller holding mean power near target.
func NewAutopilot(target float64, window int) *Autopilot {
	return &Autopilot{
		target: target,
		window: make([]float64, max(1, window)),
	}
}

// Mean returns the mean power over the filled part of the window.
func (a *Autopilot) Mean() float64 {
	if a.filled == 0 {
		return 0
	}
	return stat.Mean(a.window[:a.filled], nil)
}

// Adjust records one tick of power and moves the rods. Nothing moves until
// the window is full.
func (a *Autopilot) Adjust(r *reactor.Reactor, power float64) {
	a.window[a.next] = power
	a.next = (a.next + 1) % len(a.window)
	a.filled = min(a.filled+1, len(a.window))
	if a.filled < len(a.window) {
		return
	}

	switch mean := a.Mean(); {
	case mean > a.target:
		r.LowerAll()
	case mean < a.target:
		r.LiftAll()
	}
}
