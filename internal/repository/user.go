package repository

import (
	"context"
	"time"

	"github.com/mediremind/api/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. Returns domain.ErrEmailTaken when the
	// normalized email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// MarkVerified flips the verified flag. Idempotent; returns
	// domain.ErrUserNotFound when no user has that email.
	MarkVerified(ctx context.Context, email string) error
	UpdatePlan(ctx context.Context, userID string, plan domain.Plan, expiry *time.Time) (*domain.User, error)
}
