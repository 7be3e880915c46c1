package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [low, high].
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is the default
// when no seed or replay sequence is configured.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Draw returns a cryptographically secure random int in [low, high].
//
// Postcondition: returns an error, never a panic, on crypto/rand failure or
// when low > high.
func (c *cryptoSource) Draw(low, high int) (int, error) {
	if low > high {
		return 0, fmt.Errorf("dice: Draw called with low %d > high %d", low, high)
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(high-low)+1))
	if err != nil {
		return 0, fmt.Errorf("dice: crypto/rand failure: %w", err)
	}
	return low + int(val.Int64()), nil
}

// seededSource is a deterministic PCG-backed Source guarded by a mutex.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source: two sources built from the
// same seed produce the same sequence of draws.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

func (s *seededSource) Draw(low, high int) (int, error) {
	if low > high {
		return 0, fmt.Errorf("dice: Draw called with low %d > high %d", low, high)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.IntN(high-low+1), nil
}

// sequenceSource replays a fixed list of values regardless of the requested
// range. Out-of-range values are passed through so the evaluator can detect
// them.
type sequenceSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequenceSource returns a Source that yields values in order and then
// fails with ErrSourceExhausted. It is meant for tests and for replaying a
// recorded roll.
func NewSequenceSource(values ...int) Source {
	v := make([]int, len(values))
	copy(v, values)
	return &sequenceSource{values: v}
}

func (s *sequenceSource) Draw(low, high int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0, ErrSourceExhausted
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}
