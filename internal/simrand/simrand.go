// Package simrand provides the single seeded PRNG each simulation
// replication threads through its random draws: packet-loss rolls,
// IADS radar track noise and intercept rolls, wind gusts, and cloud
// cover. Jammer effects, turbulence and cyber attacks draw nothing
// from it. Nothing in this module reaches for the
// math/rand package-level functions; every draw goes through a Source
// owned by the world it affects, so two replications seeded alike
// reproduce bit-for-bit.
package simrand

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a concurrency-safe, seeded random source. A Source is
// created once per simulation replication and passed down to every
// subsystem that needs randomness.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Derive creates a child Source seeded from this Source plus a salt,
// so independent subsystems (e.g. comms jitter vs turbulence) don't
// perturb each other's draw sequence when one consumes more entropy
// than another across a tick.
func (s *Source) Derive(salt int64) *Source {
	s.mu.Lock()
	seed := s.rng.Int63() ^ salt
	s.mu.Unlock()
	return New(seed)
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NormFloat64 returns a normally distributed float with mean 0, stddev 1.
func (s *Source) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.NormFloat64()
}

// Intn returns a pseudo-random number in [0, n).
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Bernoulli returns true with probability p (clamped to [0, 1]).
func (s *Source) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float64() < p
}

// gonumSource adapts *rand.Rand to the Uint64-only source interface
// gonum's stat/distuv draws from, so Gauss still threads through this
// Source's seed instead of an unseeded package-global generator.
type gonumSource struct{ r *rand.Rand }

func (g gonumSource) Uint64() uint64 { return g.r.Uint64() }

// Gauss returns a sample from N(mean, stddev).
func (s *Source) Gauss(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := distuv.Normal{Mu: mean, Sigma: stddev, Src: gonumSource{s.rng}}
	return n.Rand()
}

// Range returns a uniform sample in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.Float64()*(hi-lo)
}
