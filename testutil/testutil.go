package testutil

import (
	"math/rand"
	"sync"
)

// RNG is a seeded, mutex-protected random source.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates an RNG with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset rewinds the RNG to its seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns a number in [0,1).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Uniform returns a number in [lo,hi).
func (r *RNG) Uniform(lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float32()
}

// Normal returns a normally distributed number with the given sigma.
func (r *RNG) Normal(sigma float32) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float32(r.rand.NormFloat64()) * sigma
}

// Shuffle permutes n elements through swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}
