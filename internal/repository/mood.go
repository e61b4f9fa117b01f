package repository

import (
	"context"
	"time"

	"github.com/mediremind/api/internal/domain"
)

type MoodRepository interface {
	// Upsert replaces any existing entry for the same (user, date).
	Upsert(ctx context.Context, entry *domain.MoodEntry) (*domain.MoodEntry, error)
	// FindByDate returns nil, nil when no entry exists for that day.
	FindByDate(ctx context.Context, userID string, date time.Time) (*domain.MoodEntry, error)
}
