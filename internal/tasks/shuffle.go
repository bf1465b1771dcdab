package tasks

import (
	"math/rand/v2"
)

// Shuffler produces uniformly random permutations of track URIs.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler creates a Shuffler seeded from the runtime's random source.
func NewShuffler() *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededShuffler creates a deterministic Shuffler for reproducible runs.
func NewSeededShuffler(seed uint64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Shuffle returns a new slice holding a random permutation of uris.
// The input slice is left untouched.
func (s *Shuffler) Shuffle(uris []string) []string {
	shuffled := make([]string, len(uris))
	copy(shuffled, uris)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
