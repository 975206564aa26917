package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(1, 2, WithLimiterClock(clock.Now))

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)

	ok, wait := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)

	// Other keys have their own bucket.
	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok)

	clock.Advance(time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestLimiter_CleanupRemovesIdleEntries(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	l := NewLimiter(10, 1, WithIdleTTL(time.Minute), WithCleanupEvery(0), WithLimiterClock(clock.Now))

	l.Allow("a")
	clock.Advance(30 * time.Second)
	l.Allow("b")
	clock.Advance(45 * time.Second)

	l.Cleanup()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_JanitorDisabled(t *testing.T) {
	l := NewLimiter(10, 1, WithCleanupEvery(0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NotPanics(t, func() { l.StartJanitor(ctx) })
}
