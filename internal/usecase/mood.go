package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/repository"
)

type MoodUsecase struct {
	moods repository.MoodRepository
	now   func() time.Time
}

func NewMoodUsecase(moods repository.MoodRepository) *MoodUsecase {
	return &MoodUsecase{moods: moods, now: time.Now}
}

// SetNow overrides the clock. Tests only.
func (u *MoodUsecase) SetNow(now func() time.Time) { u.now = now }

// Log records the user's mood for today, replacing any earlier entry
// for the same day.
func (u *MoodUsecase) Log(ctx context.Context, userID string, mood domain.Mood, note string) (*domain.MoodEntry, error) {
	entry, err := u.moods.Upsert(ctx, &domain.MoodEntry{
		ID:     uuid.NewString(),
		UserID: userID,
		Mood:   mood,
		Note:   note,
		Date:   dateOnly(u.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("log mood: %w", err)
	}
	return entry, nil
}

// Today returns today's mood entry, or nil when none was logged.
func (u *MoodUsecase) Today(ctx context.Context, userID string) (*domain.MoodEntry, error) {
	entry, err := u.moods.FindByDate(ctx, userID, dateOnly(u.now()))
	if err != nil {
		return nil, fmt.Errorf("today's mood: %w", err)
	}
	return entry, nil
}
