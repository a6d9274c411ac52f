package wheel

import "math/rand/v2"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// DefaultRNG delegates to math/rand/v2 (auto-seeded, safe for concurrent use).
type DefaultRNG struct{}

func (DefaultRNG) Intn(n int) int { return rand.IntN(n) }

func (DefaultRNG) Float64() float64 { return rand.Float64() }
