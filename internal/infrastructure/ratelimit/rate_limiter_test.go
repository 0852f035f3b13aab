package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstThenWait(t *testing.T) {
	rl := NewRateLimiter(6, 2)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return start }

	ok, _ := rl.Allow("u1", ActionComment)
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionComment)
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", ActionComment)
	assert.False(t, ok)
	assert.InDelta(t, (10 * time.Second).Seconds(), wait.Seconds(), 0.01)

	rl.now = func() time.Time { return start.Add(10 * time.Second) }
	ok, _ = rl.Allow("u1", ActionComment)
	assert.True(t, ok)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	ok, _ := rl.Allow("u1", ActionComment)
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionLike)
	assert.True(t, ok)
	ok, _ = rl.Allow("u2", ActionComment)
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionComment)
	assert.False(t, ok)
}

func TestCleanup(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	start := time.Now()
	rl.now = func() time.Time { return start }
	rl.Allow("u1", ActionComment)

	rl.now = func() time.Time { return start.Add(2 * time.Hour) }
	rl.Cleanup(time.Hour)

	assert.Empty(t, rl.buckets)
}
