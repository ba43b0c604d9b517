package shuffle

import (
	"math/rand/v2"
	"sync"
)

// DefaultTestSeed is the seed used by reproducible tests.
const DefaultTestSeed int64 = 123456789

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Source yields floats in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a small linear congruential generator. It is reproducible and
// not suitable for anything security related.
type Seeded struct {
	mu    sync.Mutex
	state int64
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{state: seed}
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	if s.state < 0 {
		s.state += lcgModulus
	}
	return float64(s.state) / lcgModulus
}

// State returns the current generator state so a session can be snapshotted.
func (s *Seeded) State() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Platform draws from math/rand/v2.
type Platform struct{}

func NewPlatform() Platform {
	return Platform{}
}

func (Platform) Float64() float64 {
	return rand.Float64()
}

// NewSource returns a seeded source for a non-zero seed and the platform source otherwise.
func NewSource(seed int64) Source {
	if seed == 0 {
		return NewPlatform()
	}
	return NewSeeded(seed)
}
