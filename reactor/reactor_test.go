package reactor

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/chernobyl/particle"
	"github.com/pthm-cable/chernobyl/vec"
)

var testBounds = Bounds{Width: 800, Height: 600}

// quietConfig spawns nothing and has no rods.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.AtomSpawnProbability = 0
	cfg.RodCount = 0
	return cfg
}

func newTestReactor(t *testing.T, cfg Config, seed int64) *Reactor {
	t.Helper()
	r, err := New(cfg, testBounds, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func newTestAtom(t *testing.T, x, y float64, health int) *particle.Atom {
	t.Helper()
	a, err := particle.NewAtom(vec.New(x, y), health)
	if err != nil {
		t.Fatalf("NewAtom: %v", err)
	}
	a.DecayProbability = 0
	return a
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestNewRejectsBadInput(t *testing.T) {
	src := rand.New(rand.NewSource(1))

	cfg := DefaultConfig()
	cfg.AtomMaxHealth = 0
	if _, err := New(cfg, testBounds, src); !errors.Is(err, particle.ErrInvalidHealth) {
		t.Errorf("max health 0: expected ErrInvalidHealth, got %v", err)
	}

	if _, err := New(DefaultConfig(), Bounds{Width: 0, Height: 10}, src); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("zero width: expected ErrInvalidBounds, got %v", err)
	}
}

func TestDecayTick(t *testing.T) {
	cfg := quietConfig()
	cfg.AtomCapacity = 1
	r := newTestReactor(t, cfg, 1)

	a := newTestAtom(t, 400, 300, 1)
	a.DecayProbability = 1
	r.AddAtom(a)

	step := r.Update(1.0)

	if len(r.Atoms()) != 0 {
		t.Errorf("atoms = %d, want 0", len(r.Atoms()))
	}
	if len(r.Neutrons()) != 1 {
		t.Errorf("neutrons = %d, want 1", len(r.Neutrons()))
	}
	history := r.PowerHistory()
	if len(history) != 1 || history[0] != 0.5 {
		t.Errorf("history = %v, want [0.5]", history)
	}
	if r.TotalPower() != 0.5 {
		t.Errorf("total power = %v, want 0.5", r.TotalPower())
	}
	if step.Decayed != 1 || step.Power != 0.5 || step.Meltdown {
		t.Errorf("unexpected step: %+v", step)
	}

	events := r.DrainEvents()
	if countEvents(events, EventAtomDecayed) != 1 {
		t.Errorf("expected one decay event, got %v", events)
	}
	if countEvents(events, EventNeutronCreated) != 1 {
		t.Errorf("expected one neutron event, got %v", events)
	}
	if len(r.DrainEvents()) != 0 {
		t.Error("DrainEvents did not clear the queue")
	}
}

func TestEventQueueBounded(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 1)

	const extra = 10
	for i := 0; i < MaxQueuedEvents+extra; i++ {
		r.AddNeutron(particle.NewNeutron(vec.New(float64(i), 0), vec.Zero))
	}
	if r.DroppedEvents() != extra {
		t.Errorf("dropped = %d, want %d", r.DroppedEvents(), extra)
	}

	events := r.DrainEvents()
	if len(events) != MaxQueuedEvents {
		t.Fatalf("queued = %d, want %d", len(events), MaxQueuedEvents)
	}
	if got := events[0].Position.X; got != extra {
		t.Errorf("oldest kept event at x=%v, want %d", got, extra)
	}
	if got := events[len(events)-1].Position.X; got != MaxQueuedEvents+extra-1 {
		t.Errorf("newest event at x=%v", got)
	}
}

func TestZeroPowerTicksNotRecorded(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 1)
	r.AddAtom(newTestAtom(t, 400, 300, 1))

	for i := 0; i < 10; i++ {
		r.Update(0.01)
	}
	if len(r.PowerHistory()) != 0 || r.TotalPower() != 0 {
		t.Errorf("history = %v, total = %v", r.PowerHistory(), r.TotalPower())
	}
	if r.TickCount() != 10 {
		t.Errorf("TickCount = %d, want 10", r.TickCount())
	}
}

func TestForcedAbsorptionAlwaysDamages(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		r := newTestReactor(t, quietConfig(), seed)

		a := newTestAtom(t, 400, 300, 10)
		a.AbsorptionRatio = 1
		r.AddAtom(a)
		r.AddNeutron(particle.NewNeutron(vec.New(380, 300), vec.New(100, 0)))

		step := r.Update(0.01)

		// 1 hit point plus floor(ln(100)) = 4.
		if a.Health() != 5 {
			t.Fatalf("seed %d: health = %d, want 5", seed, a.Health())
		}
		if len(r.Neutrons()) != 0 {
			t.Fatalf("seed %d: absorbed neutron still in play", seed)
		}
		if step.Captured != 1 || step.Deflected != 0 {
			t.Fatalf("seed %d: unexpected step %+v", seed, step)
		}
	}
}

func TestSlowNeutronDamageFloor(t *testing.T) {
	tests := []struct {
		speed float64
		want  int
	}{
		{0, 1},
		{0.5, 1},
		{1, 1},
		{3, 2},
		{500, 7},
	}
	for _, tc := range tests {
		n := particle.NewNeutron(vec.Zero, vec.New(tc.speed, 0))
		if got := impactDamage(n); got != tc.want {
			t.Errorf("impactDamage(speed=%v) = %d, want %d", tc.speed, got, tc.want)
		}
	}
}

func TestZeroAbsorptionNeverDamages(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 3)

	a := newTestAtom(t, 400, 300, 2)
	a.AbsorptionRatio = 0
	r.AddAtom(a)
	r.AddNeutron(particle.NewNeutron(vec.New(300, 300), vec.New(500, 0)))

	deflected := 0
	for i := 0; i < 100; i++ {
		step := r.Update(0.01)
		deflected += step.Deflected
		if a.Health() != 2 {
			t.Fatalf("tick %d: health = %d, want 2", i, a.Health())
		}
	}
	if deflected == 0 {
		t.Error("neutron never bounced off the atom")
	}
}

func TestFissionYieldPolicies(t *testing.T) {
	tests := []struct {
		name  string
		yield YieldFunc
		want  int
	}{
		{"linear", LinearYield, 2},
		{"squared", SquaredYield, 9},
		{"half squared", HalfSquaredYield, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := quietConfig()
			cfg.Yield = tc.yield
			r := newTestReactor(t, cfg, 7)

			a := newTestAtom(t, 400, 300, 2)
			a.AbsorptionRatio = 1
			r.AddAtom(a)
			r.AddNeutron(particle.NewNeutron(vec.New(380, 300), vec.New(100, 0)))

			step := r.Update(0.01)

			if len(r.Atoms()) != 0 {
				t.Fatalf("atom survived with health %d", a.Health())
			}
			if got := len(r.Neutrons()); got != tc.want {
				t.Errorf("neutrons = %d, want %d", got, tc.want)
			}
			if step.Fissioned != 1 || step.Power != 2 {
				t.Errorf("unexpected step %+v", step)
			}
			// Released neutrons wait for the next tick.
			for _, n := range r.Neutrons() {
				if n.Age != 0 {
					t.Errorf("released neutron already moved: age %v", n.Age)
				}
			}
		})
	}
}

func TestYieldByName(t *testing.T) {
	for _, name := range []string{"", YieldLinear, YieldSquared, YieldHalfSquared} {
		if _, err := YieldByName(name); err != nil {
			t.Errorf("YieldByName(%q): %v", name, err)
		}
	}
	if _, err := YieldByName("cubic"); err == nil {
		t.Error("expected error for unknown policy")
	}
	f, _ := YieldByName(YieldSquared)
	if f(3) != 16 {
		t.Errorf("squared yield of 3 = %d, want 16", f(3))
	}
}

func TestOnlyHighestIndexAtomResolved(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 2)

	first := newTestAtom(t, 400, 300, 10)
	first.AbsorptionRatio = 1
	second := newTestAtom(t, 405, 300, 10)
	second.AbsorptionRatio = 1
	r.AddAtom(first)
	r.AddAtom(second)
	r.AddNeutron(particle.NewNeutron(vec.New(402, 300), vec.New(1, 0)))

	r.Update(0.001)

	if first.Health() != 10 {
		t.Errorf("first atom health = %d, want 10", first.Health())
	}
	if second.Health() != 9 {
		t.Errorf("second atom health = %d, want 9", second.Health())
	}
}

func TestMeltdownEvent(t *testing.T) {
	tests := []struct {
		capacity float64
		want     bool
	}{
		{0.1, true},
		{0.5, false},
		{4, false},
	}
	for _, tc := range tests {
		cfg := quietConfig()
		cfg.PowerCapacity = tc.capacity
		r := newTestReactor(t, cfg, 1)

		a := newTestAtom(t, 400, 300, 1)
		a.DecayProbability = 1
		r.AddAtom(a)

		step := r.Update(1)
		if step.Meltdown != tc.want {
			t.Errorf("capacity %v: meltdown = %v, want %v", tc.capacity, step.Meltdown, tc.want)
		}
		events := r.DrainEvents()
		got := countEvents(events, EventMeltdown)
		if (got == 1) != tc.want {
			t.Errorf("capacity %v: %d meltdown events", tc.capacity, got)
		}

		// The simulation keeps running after a meltdown.
		r.Update(1)
	}
}

func TestEscapedAtomRemoved(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 1)
	r.AddAtom(newTestAtom(t, -30, 300, 1))
	r.AddAtom(newTestAtom(t, 400, 300, 1))

	step := r.Update(0.01)

	if len(r.Atoms()) != 1 || step.Escaped != 1 {
		t.Errorf("atoms = %d, escaped = %d", len(r.Atoms()), step.Escaped)
	}
	if r.TotalPower() != 0 {
		t.Errorf("escape produced power %v", r.TotalPower())
	}
	if countEvents(r.DrainEvents(), EventAtomEscaped) != 1 {
		t.Error("missing escape event")
	}
}

func TestNeutronExpires(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 1)
	r.AddNeutron(particle.NewNeutron(vec.New(400, 300), vec.Zero))

	r.Update(0.6)
	r.Update(0.6)
	if len(r.Neutrons()) != 1 {
		t.Fatalf("neutron removed early")
	}
	step := r.Update(0.6)
	if len(r.Neutrons()) != 0 || step.Expired != 1 {
		t.Errorf("neutrons = %d, expired = %d", len(r.Neutrons()), step.Expired)
	}
}

func TestRodAbsorption(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		insertion float64
		survives  bool
	}{
		{"full ratio inserted", 1, 1, false},
		{"zero ratio inserted", 0, 1, true},
		{"full ratio lifted", 1, 0, true},
		{"full ratio above neutron", 1, 0.25, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				cfg := quietConfig()
				cfg.RodCount = 1
				cfg.RodAbsorptionRatio = tc.ratio
				r := newTestReactor(t, cfg, seed)
				r.Rods()[0].SetInsertion(tc.insertion)

				r.AddNeutron(particle.NewNeutron(vec.New(400, 300), vec.Zero))
				step := r.Update(0.01)

				if got := len(r.Neutrons()) == 1; got != tc.survives {
					t.Fatalf("seed %d: survives = %v, want %v", seed, got, tc.survives)
				}
				if !tc.survives && step.RodAbsorbed != 1 {
					t.Fatalf("seed %d: RodAbsorbed = %d", seed, step.RodAbsorbed)
				}
			}
		})
	}
}

func TestRodLayoutAndControls(t *testing.T) {
	cfg := quietConfig()
	cfg.RodCount = 3
	r := newTestReactor(t, cfg, 1)

	rods := r.Rods()
	want := []int{200, 400, 600}
	for i, rod := range rods {
		if rod.X != want[i] {
			t.Errorf("rod %d x = %d, want %d", i, rod.X, want[i])
		}
		if rod.BoardHeight != testBounds.Height {
			t.Errorf("rod %d board height = %v", i, rod.BoardHeight)
		}
	}

	if err := r.LowerRod(1); err != nil {
		t.Fatalf("LowerRod: %v", err)
	}
	if math.Abs(rods[1].Insertion-0.1) > 1e-9 {
		t.Errorf("insertion = %v, want 0.1", rods[1].Insertion)
	}
	if err := r.LiftRod(1); err != nil {
		t.Fatalf("LiftRod: %v", err)
	}
	if rods[1].Insertion != 0 {
		t.Errorf("insertion = %v, want 0", rods[1].Insertion)
	}

	for _, i := range []int{-1, 3} {
		if err := r.LowerRod(i); !errors.Is(err, ErrNoSuchRod) {
			t.Errorf("LowerRod(%d): expected ErrNoSuchRod, got %v", i, err)
		}
	}

	r.LowerAll()
	r.LowerAll()
	if math.Abs(r.MeanInsertion()-0.2) > 1e-9 {
		t.Errorf("MeanInsertion = %v, want 0.2", r.MeanInsertion())
	}
	r.LiftAll()
	if math.Abs(r.MeanInsertion()-0.1) > 1e-9 {
		t.Errorf("MeanInsertion = %v, want 0.1", r.MeanInsertion())
	}
}

func TestSpawn(t *testing.T) {
	cfg := quietConfig()
	cfg.AtomSpawnProbability = 1
	cfg.AtomCapacity = 3
	cfg.AtomMaxHealth = 4
	cfg.AtomDecayProbability = 0
	cfg.AtomAbsorptionRatio = 0.4
	r := newTestReactor(t, cfg, 9)

	for i := 0; i < 5; i++ {
		r.Update(0.001)
	}

	atoms := r.Atoms()
	if len(atoms) != 3 {
		t.Fatalf("atoms = %d, want capacity 3", len(atoms))
	}
	for _, a := range atoms {
		if a.Health() < 1 || a.Health() > 4 {
			t.Errorf("health %d out of range", a.Health())
		}
		if a.AbsorptionRatio != 0.4 {
			t.Errorf("absorption ratio %v not applied", a.AbsorptionRatio)
		}
		if math.Abs(a.Velocity.Mag()-cfg.AtomSpeed) > 1e-6 {
			t.Errorf("speed %v, want %v", a.Velocity.Mag(), cfg.AtomSpeed)
		}
	}

	if r.SpawnAtom() {
		t.Error("SpawnAtom ignored capacity")
	}
}

func TestSpawnPosition(t *testing.T) {
	cfg := quietConfig()
	cfg.AtomSpeed = 0
	r := newTestReactor(t, cfg, 4)

	for i := 0; i < 100; i++ {
		if !r.SpawnAtom() {
			t.Fatalf("SpawnAtom failed at %d", i)
		}
	}
	for _, a := range r.Atoms() {
		p := a.Position
		if p.X < spawnMargin || p.X >= testBounds.Width || p.Y < spawnMargin || p.Y >= testBounds.Height {
			t.Errorf("spawned outside board: %v", p)
		}
	}
}

func TestHealthSamplerFrequencies(t *testing.T) {
	s, err := NewHealthSampler(3, 1.5)
	if err != nil {
		t.Fatalf("NewHealthSampler: %v", err)
	}
	src := rand.New(rand.NewSource(42))

	const n = 100000
	counts := make([]int, 4)
	for i := 0; i < n; i++ {
		counts[s.Sample(src)]++
	}
	if counts[0] != 0 {
		t.Fatalf("sampled health 0")
	}

	want := []float64{1 / 4.75, 1.5 / 4.75, 2.25 / 4.75}
	for h := 1; h <= 3; h++ {
		got := float64(counts[h]) / n
		if math.Abs(got-want[h-1]) > 0.01 {
			t.Errorf("health %d frequency %v, want %v", h, got, want[h-1])
		}
	}

	for i, p := range s.Probabilities() {
		if math.Abs(p-want[i]) > 1e-12 {
			t.Errorf("Probabilities()[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestHealthSamplerLargeRange(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		index int // health-1 of the heaviest value
		want  float64
	}{
		{"growing", 1.5, 1999, 0.5 / 1.5},
		{"shrinking", 0.5, 0, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewHealthSampler(2000, tc.ratio)
			if err != nil {
				t.Fatalf("NewHealthSampler: %v", err)
			}
			probs := s.Probabilities()
			for i, p := range probs {
				if math.IsNaN(p) || p < 0 {
					t.Fatalf("Probabilities()[%d] = %v", i, p)
				}
			}
			if math.Abs(probs[tc.index]-tc.want) > 1e-9 {
				t.Errorf("P(health %d) = %v, want %v", tc.index+1, probs[tc.index], tc.want)
			}

			src := rand.New(rand.NewSource(7))
			const n = 20000
			hits := 0
			for i := 0; i < n; i++ {
				if s.Sample(src) == tc.index+1 {
					hits++
				}
			}
			if got := float64(hits) / n; math.Abs(got-tc.want) > 0.02 {
				t.Errorf("sampled frequency %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHealthSamplerEdges(t *testing.T) {
	if _, err := NewHealthSampler(0, 1.5); !errors.Is(err, particle.ErrInvalidHealth) {
		t.Errorf("expected ErrInvalidHealth, got %v", err)
	}
	if _, err := NewHealthSampler(3, 0); err == nil {
		t.Error("expected error for zero ratio")
	}

	s, err := NewHealthSampler(1, 1.5)
	if err != nil {
		t.Fatalf("NewHealthSampler: %v", err)
	}
	src := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if h := s.Sample(src); h != 1 {
			t.Fatalf("single-value sampler returned %d", h)
		}
	}
}

func TestDetonate(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 5)
	r.AddAtom(newTestAtom(t, 100, 100, 3))
	r.AddAtom(newTestAtom(t, 500, 500, 1))

	if r.Detonate(vec.New(300, 300)) {
		t.Error("detonated empty space")
	}
	if !r.Detonate(vec.New(105, 100)) {
		t.Fatal("missed atom under point")
	}

	if len(r.Atoms()) != 1 || r.Atoms()[0].Position.X != 500 {
		t.Errorf("wrong atom removed: %v", r.Atoms())
	}
	if len(r.Neutrons()) != 3 {
		t.Errorf("neutrons = %d, want 3", len(r.Neutrons()))
	}
	if r.TotalPower() != 0 || len(r.PowerHistory()) != 0 {
		t.Error("detonation produced power")
	}
	if countEvents(r.DrainEvents(), EventDetonation) != 1 {
		t.Error("missing detonation event")
	}
}

func TestNeutronAttraction(t *testing.T) {
	cfg := quietConfig()
	cfg.NeutronAttraction = 1e4
	r := newTestReactor(t, cfg, 1)

	r.AddAtom(newTestAtom(t, 500, 300, 1))
	r.emitNeutrons(vec.New(300, 300), 1)
	n := r.Neutrons()[0]
	n.Velocity = vec.Zero

	r.Update(0.001)

	if n.Acceleration.X <= 0 || math.Abs(n.Acceleration.Y) > 1e-9 {
		t.Errorf("acceleration %v does not point at the atom", n.Acceleration)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	cfg := quietConfig()
	cfg.RodCount = 2
	r := newTestReactor(t, cfg, 1)
	r.AddAtom(newTestAtom(t, 100, 100, 2))
	r.AddNeutron(particle.NewNeutron(vec.New(200, 200), vec.Zero))

	s := r.Snapshot()
	if len(s.Atoms) != 1 || len(s.Neutrons) != 1 || len(s.Rods) != 2 {
		t.Fatalf("snapshot sizes %d/%d/%d", len(s.Atoms), len(s.Neutrons), len(s.Rods))
	}
	if s.Atoms[0].Kind != particle.KindAtom || s.Neutrons[0].Kind != particle.KindNeutron {
		t.Error("wrong kinds in snapshot")
	}
	if s.Atoms[0].Health != 2 || s.Atoms[0].Radius != particle.AtomRadius {
		t.Errorf("atom view %+v", s.Atoms[0])
	}

	s.Atoms[0].Position = vec.New(-1, -1)
	if r.Atoms()[0].Position.X != 100 {
		t.Error("snapshot aliases reactor state")
	}
}

func TestSnapshotLiteralAtom(t *testing.T) {
	r := newTestReactor(t, quietConfig(), 1)
	a := &particle.Atom{InitialHealth: 3}
	a.Position = vec.New(50, 50)
	a.SetHealth(3)
	r.AddAtom(a)

	s := r.Snapshot()
	if len(s.Atoms) != 1 {
		t.Fatalf("snapshot atoms = %d", len(s.Atoms))
	}
	if c := s.Atoms[0].Color; c.R != 255 || c.A != 255 {
		t.Errorf("literal atom color = %v, want opaque red", c)
	}
}

func TestGridMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	g := NewGrid(testBounds.Width, testBounds.Height, gridCellSize)

	points := make([]vec.Vec, 300)
	for i := range points {
		// Some points fall off the board to exercise edge clamping.
		points[i] = vec.New(rng.Float64()*900-50, rng.Float64()*700-50)
		g.Insert(i, points[i].X, points[i].Y)
	}

	var buf []int
	for q := 0; q < 200; q++ {
		center := vec.New(rng.Float64()*900-50, rng.Float64()*700-50)
		radius := 25.0
		buf = g.QueryInto(buf[:0], center.X, center.Y, radius)

		found := make(map[int]bool, len(buf))
		for _, i := range buf {
			found[i] = true
		}
		for i, p := range points {
			if p.Dist(center) < radius && !found[i] {
				t.Fatalf("query at %v missed point %d at %v", center, i, p)
			}
		}
	}

	g.Clear()
	if got := g.QueryInto(nil, 400, 300, 1000); len(got) != 0 {
		t.Errorf("cleared grid returned %v", got)
	}
}
