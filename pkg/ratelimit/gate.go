// Package ratelimit tracks upstream cooldowns and limits inbound clients.
package ratelimit

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxRetryAfterSeconds is the longest cooldown a time.Duration can hold.
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// Gate remembers the cooldown announced by the upstream's Retry-After header.
// The zero deadline means no cooldown is active. Concurrent observers race;
// the last one to report wins.
type Gate struct {
	mu         sync.Mutex
	retryAfter time.Time
	now        func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate creates a Gate with no cooldown.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckCooldown reports whether callers must stay away from the upstream.
func (g *Gate) CheckCooldown() bool {
	return g.RetryAfter() > 0
}

// RetryAfter returns the remaining cooldown, or zero when none is active.
func (g *Gate) RetryAfter() time.Duration {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.retryAfter.IsZero() {
		return 0
	}
	remaining := g.retryAfter.Sub(g.now())
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// Observe updates the cooldown from resp. A numeric Retry-After of N seconds
// starts a cooldown of N seconds, capped at maxRetryAfterSeconds; anything
// else, including a nil response from a failed round trip, clears it.
func (g *Gate) Observe(resp *http.Response) {
	if g == nil {
		return
	}
	seconds, ok := retryAfterSeconds(resp)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !ok {
		g.retryAfter = time.Time{}
		return
	}
	g.retryAfter = g.now().Add(time.Duration(seconds) * time.Second)
}

func retryAfterSeconds(resp *http.Response) (int64, bool) {
	if resp == nil || resp.Header == nil {
		return 0, false
	}
	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	// ParseInt saturates on ErrRange, which the cap below absorbs.
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || seconds < 0 {
		return 0, false
	}
	return min(seconds, maxRetryAfterSeconds), true
}
