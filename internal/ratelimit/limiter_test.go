package ratelimit_test

import (
	"testing"
	"time"

	"github.com/mediremind/api/internal/ratelimit"
)

const testEmail = "alice@example.com"

func newLimiter(now *time.Time) *ratelimit.Limiter {
	l := ratelimit.New(5, 30*time.Minute)
	l.SetNow(func() time.Time { return *now })
	return l
}

func TestCheck_NoRecord_Allowed(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	s := l.Check(testEmail)
	if !s.Allowed {
		t.Fatal("expected allowed with no record")
	}
	if s.RemainingAttempts != 5 {
		t.Errorf("remaining = %d, want 5", s.RemainingAttempts)
	}
}

func TestRecordFailure_CountsDown(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	l.RecordFailure(testEmail)
	l.RecordFailure(testEmail)

	s := l.Check(testEmail)
	if !s.Allowed {
		t.Fatal("expected allowed below the limit")
	}
	if s.RemainingAttempts != 3 {
		t.Errorf("remaining = %d, want 3", s.RemainingAttempts)
	}
}

func TestFiveFailures_Blocks30Minutes(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 5; i++ {
		l.RecordFailure(testEmail)
	}

	s := l.Check(testEmail)
	if s.Allowed {
		t.Fatal("expected blocked after 5 failures")
	}
	if s.BlockedMinutes != 30 {
		t.Errorf("blocked minutes = %d, want 30", s.BlockedMinutes)
	}
}

func TestBlockedMinutes_RoundsUp(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 5; i++ {
		l.RecordFailure(testEmail)
	}

	now = now.Add(29*time.Minute + 30*time.Second)
	s := l.Check(testEmail)
	if s.Allowed {
		t.Fatal("expected still blocked")
	}
	if s.BlockedMinutes != 1 {
		t.Errorf("blocked minutes = %d, want 1 (rounded up)", s.BlockedMinutes)
	}
}

func TestLockout_ExpiresAndResetsCounter(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 5; i++ {
		l.RecordFailure(testEmail)
	}

	now = now.Add(31 * time.Minute)
	s := l.Check(testEmail)
	if !s.Allowed {
		t.Fatal("expected allowed after lockout expiry")
	}
	if s.RemainingAttempts != 5 {
		t.Errorf("remaining = %d, want 5 after expiry", s.RemainingAttempts)
	}
}

func TestReset_ClearsRecord(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	l.RecordFailure(testEmail)
	l.RecordFailure(testEmail)
	l.Reset(testEmail)

	s := l.Check(testEmail)
	if !s.Allowed || s.RemainingAttempts != 5 {
		t.Errorf("after reset: allowed=%v remaining=%d, want allowed with 5", s.Allowed, s.RemainingAttempts)
	}
}

func TestKeys_CaseInsensitive(t *testing.T) {
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 5; i++ {
		l.RecordFailure("Alice@Example.COM")
	}

	if s := l.Check("alice@example.com"); s.Allowed {
		t.Error("expected block to apply to normalized email")
	}
}
