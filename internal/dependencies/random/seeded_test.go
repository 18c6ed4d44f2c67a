package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRandom_SameSeedSameSequence(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
	assert.Equal(t, a.String(8, "ABCDEF"), b.String(8, "ABCDEF"))
}

func TestSeededRandom_IntnBounds(t *testing.T) {
	r := NewSeeded(7)
	for i := 0; i < 1000; i++ {
		v := r.Intn(13)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 13)
	}
	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, 0, r.Intn(-5))
}

func TestSeededRandom_StringUsesAlphabet(t *testing.T) {
	r := NewSeeded(1)
	s := r.String(32, "XY")
	assert.Len(t, s, 32)
	for _, c := range s {
		assert.Contains(t, "XY", string(c))
	}
	assert.Empty(t, r.String(0, "XY"))
	assert.Empty(t, r.String(4, ""))
}
