package repository

import (
	"context"
	"time"

	"github.com/mediremind/api/internal/domain"
)

type VerificationRepository interface {
	// Upsert stores the session, replacing any existing session for the
	// same email.
	Upsert(ctx context.Context, session *domain.VerificationSession) error
	// Find returns domain.ErrCodeNotFound when no session exists.
	Find(ctx context.Context, email string) (*domain.VerificationSession, error)
	Delete(ctx context.Context, email string) error
	// IncrementAttempts bumps the wrong-code counter and returns the new value.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	// DeleteExpired removes sessions whose expiry is before the cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
