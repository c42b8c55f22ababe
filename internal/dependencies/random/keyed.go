package random

import (
	"hash/fnv"
	"math/rand/v2"
)

// Seeder hands out a random source fixed by a key. The same key always
// yields the same sequence.
type Seeder interface {
	ForKey(key string) Random
}

// KeyedSeeder derives a PCG source from a hash of the key
type KeyedSeeder struct {
	salt uint64
}

// NewKeyedSeeder creates a KeyedSeeder. Servers sharing a salt agree on
// every key's sequence.
func NewKeyedSeeder(salt uint64) *KeyedSeeder {
	return &KeyedSeeder{salt: salt}
}

// ForKey returns a fresh deterministic source for key
func (s *KeyedSeeder) ForKey(key string) Random {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return &seededRandom{rng: rand.New(rand.NewPCG(h.Sum64(), s.salt))}
}

// seededRandom is not safe for concurrent use; ForKey hands each caller its own
type seededRandom struct {
	rng *rand.Rand
}

func (r *seededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

func (r *seededRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
