package server

import (
	"math/rand"
	"sync"

	"github.com/lox/cardroom/internal/engine"
)

// RandomDealer is the default deal source for standalone servers: each seat
// draws an opaque integer strength and the oracle compares them. Hosts with a
// real card game plug in their own provider and oracle instead.
type RandomDealer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomDealer creates a dealer seeded for reproducible runs.
func NewRandomDealer(seed int64) *RandomDealer {
	return &RandomDealer{rng: rand.New(rand.NewSource(seed))}
}

// ShowdownHand implements engine.HandProvider.
func (d *RandomDealer) ShowdownHand(seat int) (engine.Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(1 << 30), nil
}

// Oracle returns the strength comparator matching this dealer's hands.
func (d *RandomDealer) Oracle() engine.Oracle {
	return engine.OracleFunc(func(a, b engine.Hand) int {
		return a.(int) - b.(int)
	})
}
