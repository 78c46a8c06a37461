package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: values are uniformly distributed in [0, 1) with 53 bits of precision.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Float64 returns a cryptographically secure value in [0, 1).
// Falls back to math/rand/v2 if crypto/rand fails.
func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return mrand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// seededSource is a reproducible Source for simulations.
type seededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed.
//
// Postcondition: two sources built with the same seed yield the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, 0))}
}

// Float64 returns the next value of the seeded stream.
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Sequence is a scripted Source that replays a fixed list of values.
// When the list is exhausted it wraps around to the beginning.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	draws  int
}

// NewSequence returns a Sequence replaying values in order.
//
// Precondition: len(values) > 0.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		panic("dice: NewSequence requires at least one value")
	}
	return &Sequence{values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	s.draws++
	return v
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
