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

type VerificationRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Upsert(ctx context.Context, s *domain.VerificationSession) error {
	query := `
		INSERT INTO verification_sessions (email, code, purpose, expires_at, attempts)
		VALUES (lower($1), $2, $3, $4, 0)
		ON CONFLICT (email) DO UPDATE SET
			code       = EXCLUDED.code,
			purpose    = EXCLUDED.purpose,
			expires_at = EXCLUDED.expires_at,
			attempts   = 0,
			created_at = NOW()`

	_, err := r.pool.Exec(ctx, query, s.Email, s.Code, s.Purpose, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert verification session: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Find(ctx context.Context, email string) (*domain.VerificationSession, error) {
	query := `
		SELECT email, code, purpose, expires_at, attempts, created_at
		FROM verification_sessions
		WHERE email = lower($1)`

	var s domain.VerificationSession
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.Email, &s.Code, &s.Purpose, &s.ExpiresAt, &s.Attempts, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find verification session: %w", err)
	}
	return &s, nil
}

func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM verification_sessions WHERE email = lower($1)`, email)
	if err != nil {
		return fmt.Errorf("delete verification session: %w", err)
	}
	return nil
}

func (r *VerificationRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	query := `
		UPDATE verification_sessions
		SET    attempts = attempts + 1
		WHERE  email = lower($1)
		RETURNING attempts`

	var attempts int
	err := r.pool.QueryRow(ctx, query, email).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrCodeNotFound
		}
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *VerificationRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM verification_sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
