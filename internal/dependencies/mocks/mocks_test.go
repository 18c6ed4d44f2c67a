package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockRandomReplaysQueue(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(3, 9, -1)
	r.QueueString("KQ7Z")

	assert.Equal(t, 3, r.Intn(5))
	assert.Equal(t, 1, r.Intn(4), "reduced into range")
	assert.Equal(t, 4, r.Intn(5), "negative values wrap")
	assert.Equal(t, 0, r.Intn(5), "exhausted")

	assert.Equal(t, "KQ7Z", r.String(4, "ABC"))
	assert.Empty(t, r.String(4, "ABC"))

	r.QueueIntn(2)
	r.Reset()
	assert.Equal(t, 0, r.Intn(5))
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
