package reactor

import "fmt"

// YieldFunc returns the number of neutrons released by an atom that started
// with initialHealth hit points.
type YieldFunc func(initialHealth int) int

// LinearYield releases one neutron per initial hit point.
func LinearYield(initialHealth int) int {
	return initialHealth
}

// SquaredYield releases (h+1)^2 neutrons.
func SquaredYield(initialHealth int) int {
	return (initialHealth + 1) * (initialHealth + 1)
}

// HalfSquaredYield releases (h+1)^2 / 2 neutrons, rounded down.
func HalfSquaredYield(initialHealth int) int {
	return SquaredYield(initialHealth) / 2
}

// Yield policy names accepted by YieldByName.
const (
	YieldLinear      = "linear"
	YieldSquared     = "squared"
	YieldHalfSquared = "half_squared"
)

// YieldByName resolves a policy name from configuration.
func YieldByName(name string) (YieldFunc, error) {
	switch name {
	case "", YieldLinear:
		return LinearYield, nil
	case YieldSquared:
		return SquaredYield, nil
	case YieldHalfSquared:
		return HalfSquaredYield, nil
	default:
		return nil, fmt.Errorf("unknown yield policy %q", name)
	}
}
