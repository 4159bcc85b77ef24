package game

import (
	"log/slog"

	"github.com/pthm-cable/chernobyl/vec"
)

// Click detonates the atom under a screen position, given in pixels with the
// scoreboard header at the top. Clicks on the header, after the session
// ends, or with none left are ignored. A click is spent only when it hits an
// atom. It reports whether an atom was detonated.
func (g *Game) Click(screenX, screenY float64) bool {
	if g.over || g.clicksLeft <= 0 {
		return false
	}
	s := vec.New(screenX, screenY)
	if !g.viewport.InBoardArea(s) {
		return false
	}

	p := g.viewport.ScreenToBoard(s)
	if !g.reactor.Detonate(p) {
		return false
	}
	g.clicksLeft--

	// Detonation events are recorded with the next tick's events.
	slog.Debug("detonate", "tick", g.tick, "x", p.X, "y", p.Y, "clicks_left", g.clicksLeft)
	return true
}

// LiftRod withdraws rod i by one insertion step.
func (g *Game) LiftRod(i int) error { return g.reactor.LiftRod(i) }

// LowerRod inserts rod i by one insertion step.
func (g *Game) LowerRod(i int) error { return g.reactor.LowerRod(i) }

// LiftAll withdraws every rod by one step.
func (g *Game) LiftAll() { g.reactor.LiftAll() }

// LowerAll inserts every rod by one step.
func (g *Game) LowerAll() { g.reactor.LowerAll() }

// TogglePause pauses or resumes Update.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Paused reports whether Update is paused.
func (g *Game) Paused() bool { return g.paused }

// SetStepsPerUpdate sets the ticks run per Update call, clamped to [1, 10].
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(10, max(1, n))
}
