package wheel_test

import "math/rand/v2"

// scriptedRNG returns values from pre-set sequences, cycling when exhausted.
type scriptedRNG struct {
	ints   []int
	floats []float64
	ii, fi int
}

func (r *scriptedRNG) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii%len(r.ints)] % n
	r.ii++
	return v
}

func (r *scriptedRNG) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

// seededRNG is a reproducible pseudo-random source for property tests.
type seededRNG struct{ r *rand.Rand }

func newSeededRNG(seed uint64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (s *seededRNG) Intn(n int) int { return s.r.IntN(n) }

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
