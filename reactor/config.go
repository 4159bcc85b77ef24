package reactor

import "github.com/pthm-cable/chernobyl/particle"

// Config holds the scalar tuning of a reactor session.
type Config struct {
	AtomCapacity         int
	AtomSpawnProbability float64
	AtomMaxHealth        int
	AtomSpeed            float64
	AtomDecayProbability float64
	AtomAbsorptionRatio  float64
	AtomAttraction       float64
	HealthRatio          float64 // weight ratio between consecutive health values

	NeutronSpeed      float64
	NeutronLifetime   float64
	NeutronAttraction float64

	PowerCapacity float64

	RodCount           int
	RodInsertionRate   float64
	RodAbsorptionRatio float64

	// Yield decides how many neutrons a destroyed atom releases.
	// Nil means LinearYield.
	Yield YieldFunc
}

// DefaultConfig returns the stock game tuning.
func DefaultConfig() Config {
	return Config{
		AtomCapacity:         150,
		AtomSpawnProbability: 0.75,
		AtomMaxHealth:        1,
		AtomSpeed:            100,
		AtomDecayProbability: 0.0,
		AtomAbsorptionRatio:  0.25,
		HealthRatio:          DefaultHealthRatio,

		NeutronSpeed:    500,
		NeutronLifetime: particle.NeutronLifetime,

		PowerCapacity: 4,

		RodCount:           5,
		RodInsertionRate:   particle.DefaultInsertionRate,
		RodAbsorptionRatio: particle.DefaultRodAbsorptionRatio,

		Yield: LinearYield,
	}
}
