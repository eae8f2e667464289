package generator

import "math/rand/v2"

// Source is the randomness the generator consumes. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// NewSeededSource returns a deterministic PCG source for reproducible reports.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// EntropySeed draws a fresh seed from the runtime's entropy-seeded generator.
func EntropySeed() uint64 {
	return rand.Uint64()
}

// NewEntropySource is a source seeded from process entropy, along with the seed it used.
func NewEntropySource() (*rand.Rand, uint64) {
	seed := EntropySeed()
	return NewSeededSource(seed), seed
}
