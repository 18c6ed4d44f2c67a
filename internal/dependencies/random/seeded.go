package random

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// SeededRandom implements Random with a deterministic PCG stream. Shoes are
// shuffled from a seeded source so a round can be replayed from its seed.
type SeededRandom struct {
	rng *rand.Rand
}

// NewSeeded creates a SeededRandom whose sequence is fully determined by seed
func NewSeeded(seed int64) *SeededRandom {
	u := uint64(seed)
	return &SeededRandom{rng: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

// Intn returns a pseudo-random int in [0, n)
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// String generates a pseudo-random string of the given length from the given alphabet
func (r *SeededRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
