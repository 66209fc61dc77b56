/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// Source supplies uniformly distributed integers in [0, n).
// Implementations must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.r.IntN(n)
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewCryptoSource returns a ChaCha8 source seeded from crypto/rand.
func NewCryptoSource() Source {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return &lockedSource{r: rand.New(rand.NewChaCha8(seed))}
}
