package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/bookcatalog/internal/config"
)

// LoginLimiter throttles failed logins per client IP and login.
// A key that fails MaxLoginAttempts times inside the window is locked
// out for LockoutDuration.
type LoginLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	window          time.Duration
	lockout         time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// NewLoginLimiter creates a limiter and starts its cleanup loop.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxLoginAttempts,
		window:          cfg.RateLimitWindow,
		lockout:         cfg.LockoutDuration,
		cleanupInterval: 5 * time.Minute,
		stop:            make(chan struct{}),
		now:             time.Now,
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.cleanupLoop()
	return l
}

// Stop ends the background cleanup goroutine.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func key(ip, login string) string {
	return ip + ":" + login
}

// Allow reports whether a login attempt may proceed and, if not, how long
// the caller should wait.
func (l *LoginLimiter) Allow(ip, login string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[key(ip, login)]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether the key is now
// locked out.
func (l *LoginLimiter) RecordFailure(ip, login string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(ip, login)
	record, ok := l.attempts[k]
	if !ok || now.Sub(record.firstAttempt) > l.window {
		record = &attemptRecord{firstAttempt: now}
		l.attempts[k] = record
	}

	record.count++
	if record.count >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockout)
		return true, l.lockout
	}
	return false, 0
}

// RecordSuccess clears the failure record after a successful login.
func (l *LoginLimiter) RecordSuccess(ip, login string) {
	l.mu.Lock()
	delete(l.attempts, key(ip, login))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, record := range l.attempts {
		windowExpired := now.Sub(record.firstAttempt) > l.window
		lockoutExpired := !now.Before(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(l.attempts, k)
		}
	}
}
