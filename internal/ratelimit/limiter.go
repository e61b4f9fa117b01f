// Package ratelimit throttles repeated failed login attempts per email.
//
// State is process-local and volatile: a restart clears all lockouts.
// That is an accepted limitation, not something callers should work around.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultLockout     = 30 * time.Minute
)

type record struct {
	attempts     int
	lastAttempt  time.Time
	blockedUntil time.Time
}

// Status is the result of a rate-limit check.
type Status struct {
	Allowed           bool
	BlockedMinutes    int // whole minutes until unblock, rounded up
	RemainingAttempts int
}

type Limiter struct {
	mu          sync.Mutex
	records     map[string]*record
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

func New(maxAttempts int, lockout time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &Limiter{
		records:     make(map[string]*record),
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// Check reports whether a login attempt for the email may proceed.
func (l *Limiter) Check(email string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := normalize(email)
	rec, ok := l.records[key]
	if !ok {
		return Status{Allowed: true, RemainingAttempts: l.maxAttempts}
	}

	now := l.now()
	if !rec.blockedUntil.IsZero() {
		if now.Before(rec.blockedUntil) {
			remaining := rec.blockedUntil.Sub(now)
			return Status{
				Allowed:        false,
				BlockedMinutes: int((remaining + time.Minute - 1) / time.Minute),
			}
		}
		// Lockout expired: the counter starts over.
		delete(l.records, key)
		return Status{Allowed: true, RemainingAttempts: l.maxAttempts}
	}

	return Status{Allowed: true, RemainingAttempts: l.maxAttempts - rec.attempts}
}

// RecordFailure counts a failed login attempt. The attempt that reaches
// the limit starts the lockout window.
func (l *Limiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := normalize(email)
	now := l.now()

	rec, ok := l.records[key]
	if !ok {
		rec = &record{}
		l.records[key] = rec
	}

	rec.attempts++
	rec.lastAttempt = now
	if rec.attempts >= l.maxAttempts {
		rec.blockedUntil = now.Add(l.lockout)
	}
}

// Reset clears the record entirely. Called after a successful password
// check; the threat model is password guessing, so the second factor
// does not participate.
func (l *Limiter) Reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, normalize(email))
}

// SetNow overrides the clock. Tests only.
func (l *Limiter) SetNow(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
