package httpmiddleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsCapacityThenRejects(t *testing.T) {
	l := NewSimpleTokenBucket(3, 60)
	base := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("10.0.0.1"), "request %d within capacity", i+1)
	}
	assert.False(t, l.allow("10.0.0.1"))
}

func TestAllowRefillsOverTime(t *testing.T) {
	l := NewSimpleTokenBucket(2, 60)
	clock := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))

	// 60/min refills one token per second.
	clock = clock.Add(2 * time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestAllowRefillCapsAtCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(2, 60)
	clock := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))

	clock = clock.Add(time.Hour)
	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestAllowTracksClientsIndependently(t *testing.T) {
	l := NewSimpleTokenBucket(1, 60)
	base := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
}
