// Package captions offers canned caption ideas for new posts.
package captions

import (
	"math/rand"
	"sync"
	"time"
)

// Defaults is the built-in caption pool.
var Defaults = []string{
	"Embracing the moment and living life to the fullest! ✨",
	"Adventure awaits around every corner. 🌍",
	"Finding beauty in the everyday moments. 💫",
	"Creating memories that will last a lifetime. 🌟",
	"Sharing a piece of my world with you all. 💖",
}

// Suggester picks captions from a fixed pool.
type Suggester struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pool []string
}

// NewSuggester returns a suggester over Defaults. src may be nil for a
// time-seeded source.
func NewSuggester(src rand.Source) *Suggester {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Suggester{rng: rand.New(src), pool: Defaults}
}

// Suggest returns one caption from the pool.
func (s *Suggester) Suggest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool[s.rng.Intn(len(s.pool))]
}

// All returns a copy of the pool.
func (s *Suggester) All() []string {
	out := make([]string, len(s.pool))
	copy(out, s.pool)
	return out
}
