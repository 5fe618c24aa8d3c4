package condensation

import "math/rand/v2"

// NewSource returns seeded source of randomness. Components sharing the same
// seeded source reproduce the same sequence of samples.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
