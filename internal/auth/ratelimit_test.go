package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookcatalog/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T) (*LoginLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(config.Auth{
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  10 * time.Minute,
	})
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLoginLimiter_LocksAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 2; i++ {
		locked, _ := l.RecordFailure("1.2.3.4", "admin")
		assert.False(t, locked)
		allowed, _ := l.Allow("1.2.3.4", "admin")
		assert.True(t, allowed)
	}

	locked, retry := l.RecordFailure("1.2.3.4", "admin")
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, retry)

	allowed, retry := l.Allow("1.2.3.4", "admin")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retry)

	t.Run("other keys are unaffected", func(t *testing.T) {
		allowed, _ := l.Allow("1.2.3.4", "someone-else")
		assert.True(t, allowed)
		allowed, _ = l.Allow("5.6.7.8", "admin")
		assert.True(t, allowed)
	})
}

func TestLoginLimiter_LockoutExpires(t *testing.T) {
	l, clock := newTestLimiter(t)
	for i := 0; i < 3; i++ {
		l.RecordFailure("ip", "user")
	}

	clock.Advance(9 * time.Minute)
	allowed, retry := l.Allow("ip", "user")
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retry)

	clock.Advance(time.Minute)
	allowed, _ = l.Allow("ip", "user")
	assert.True(t, allowed)
}

func TestLoginLimiter_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(t)
	l.RecordFailure("ip", "user")
	l.RecordFailure("ip", "user")

	clock.Advance(2 * time.Minute)
	locked, _ := l.RecordFailure("ip", "user")
	assert.False(t, locked, "failures outside the window start a new count")
}

func TestLoginLimiter_SuccessClears(t *testing.T) {
	l, _ := newTestLimiter(t)
	l.RecordFailure("ip", "user")
	l.RecordFailure("ip", "user")
	l.RecordSuccess("ip", "user")

	locked, _ := l.RecordFailure("ip", "user")
	assert.False(t, locked)
}

func TestLoginLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t)
	l.RecordFailure("ip", "stale")
	for i := 0; i < 3; i++ {
		l.RecordFailure("ip", "locked")
	}

	clock.Advance(2 * time.Minute)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.attempts, key("ip", "stale"))
	assert.Contains(t, l.attempts, key("ip", "locked"))
}

func TestLoginLimiter_StopIsIdempotent(t *testing.T) {
	l, _ := newTestLimiter(t)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}
