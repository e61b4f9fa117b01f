package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mediremind/api/internal/domain"
)

type MoodRepository struct {
	pool *pgxpool.Pool
}

func NewMoodRepository(pool *pgxpool.Pool) *MoodRepository {
	return &MoodRepository{pool: pool}
}

func (r *MoodRepository) Upsert(ctx context.Context, e *domain.MoodEntry) (*domain.MoodEntry, error) {
	query := `
		INSERT INTO moods (id, user_id, mood, note, date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			mood = EXCLUDED.mood,
			note = EXCLUDED.note
		RETURNING id, user_id, mood, note, date, created_at`

	row := r.pool.QueryRow(ctx, query, e.ID, e.UserID, e.Mood, e.Note, e.Date)
	return scanMood(row)
}

func (r *MoodRepository) FindByDate(ctx context.Context, userID string, date time.Time) (*domain.MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, note, date, created_at
		FROM moods
		WHERE user_id = $1 AND date = $2`

	e, err := scanMood(r.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanMood(row pgx.Row) (*domain.MoodEntry, error) {
	var e domain.MoodEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Mood, &e.Note, &e.Date, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan mood: %w", err)
	}
	return &e, nil
}
