package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source of randomness for codes, tokens, bot choices and shoe
// seeds. Tests substitute a queue-backed mock.
type Random interface {
	// Intn returns a random int in [0, n); non-positive n yields 0
	Intn(n int) int

	// String returns length characters drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand. Lock tokens and session-adjacent
// values always come from here, even in tests.
type CryptoRandom struct{}

var _ Random = (*CryptoRandom)(nil)

// New creates a CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly distributed int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// String reads random bytes in bulk and maps them onto alphabet, rejecting
// bytes from the uneven tail of the 0..255 range so every character is
// equally likely. Alphabets longer than 256 characters fall back to Intn.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	n := len(alphabet)
	out := make([]byte, 0, length)
	if n > 256 {
		for len(out) < length {
			out = append(out, alphabet[r.Intn(n)])
		}
		return string(out)
	}

	limit := 256 - 256%n
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}
