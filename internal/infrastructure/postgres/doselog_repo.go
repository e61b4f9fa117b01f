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

const doseLogColumns = `id, user_id, medication_id, date, scheduled_time, status, taken_at, created_at`

type DoseLogRepository struct {
	pool *pgxpool.Pool
}

func NewDoseLogRepository(pool *pgxpool.Pool) *DoseLogRepository {
	return &DoseLogRepository{pool: pool}
}

func (r *DoseLogRepository) Upsert(ctx context.Context, l *domain.DoseLog) (*domain.DoseLog, error) {
	// A taken dose always wins; a missed marker never downgrades one.
	query := `
		INSERT INTO dose_logs (id, user_id, medication_id, date, scheduled_time, status, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, medication_id, date, scheduled_time) DO UPDATE SET
			status   = EXCLUDED.status,
			taken_at = EXCLUDED.taken_at
		WHERE dose_logs.status <> 'taken'
		RETURNING ` + doseLogColumns

	row := r.pool.QueryRow(ctx, query,
		l.ID, l.UserID, l.MedicationID, l.Date, l.ScheduledTime, l.Status, l.TakenAt,
	)
	logged, err := scanDoseLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDoseAlreadyLogged
		}
		return nil, err
	}
	return logged, nil
}

func (r *DoseLogRepository) ListByUserDate(ctx context.Context, userID string, date time.Time) ([]*domain.DoseLog, error) {
	query := `SELECT ` + doseLogColumns + ` FROM dose_logs WHERE user_id = $1 AND date = $2`

	rows, err := r.pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}
	defer rows.Close()

	return collectDoseLogs(rows)
}

func (r *DoseLogRepository) ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DoseLog, error) {
	query := `
		SELECT ` + doseLogColumns + `
		FROM dose_logs
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, scheduled_time DESC`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list dose logs by range: %w", err)
	}
	defer rows.Close()

	return collectDoseLogs(rows)
}

func (r *DoseLogRepository) Find(ctx context.Context, userID, medicationID string, date time.Time, scheduledTime string) (*domain.DoseLog, error) {
	query := `
		SELECT ` + doseLogColumns + `
		FROM dose_logs
		WHERE user_id = $1 AND medication_id = $2 AND date = $3 AND scheduled_time = $4`

	l, err := scanDoseLog(r.pool.QueryRow(ctx, query, userID, medicationID, date, scheduledTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func collectDoseLogs(rows pgx.Rows) ([]*domain.DoseLog, error) {
	var logs []*domain.DoseLog
	for rows.Next() {
		l, err := scanDoseLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanDoseLog(row pgx.Row) (*domain.DoseLog, error) {
	var l domain.DoseLog
	err := row.Scan(
		&l.ID, &l.UserID, &l.MedicationID, &l.Date, &l.ScheduledTime,
		&l.Status, &l.TakenAt, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan dose log: %w", err)
	}
	return &l, nil
}
