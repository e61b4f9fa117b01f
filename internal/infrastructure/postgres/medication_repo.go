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

const medicationColumns = `id, user_id, name, dosage, form, times, color, icon,
	start_date, end_date, reminders, refill_reminder, refill_days_left,
	notes, completed_at, created_at, updated_at`

type MedicationRepository struct {
	pool *pgxpool.Pool
}

func NewMedicationRepository(pool *pgxpool.Pool) *MedicationRepository {
	return &MedicationRepository{pool: pool}
}

func (r *MedicationRepository) Create(ctx context.Context, m *domain.Medication) (*domain.Medication, error) {
	query := `
		INSERT INTO medications (
			id, user_id, name, dosage, form, times, color, icon,
			start_date, end_date, reminders, refill_reminder, refill_days_left, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + medicationColumns

	row := r.pool.QueryRow(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, m.Form, m.Times, m.Color, m.Icon,
		m.StartDate, m.EndDate, m.Reminders, m.RefillReminder, m.RefillDaysLeft, m.Notes,
	)
	return scanMedication(row)
}

func (r *MedicationRepository) GetByID(ctx context.Context, id, userID string) (*domain.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1 AND user_id = $2`
	return scanMedication(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *MedicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationRepository) Update(ctx context.Context, m *domain.Medication) (*domain.Medication, error) {
	query := `
		UPDATE medications
		SET    name = $3, dosage = $4, form = $5, times = $6, color = $7,
		       icon = $8, start_date = $9, end_date = $10, reminders = $11,
		       refill_reminder = $12, refill_days_left = $13, notes = $14,
		       updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + medicationColumns

	row := r.pool.QueryRow(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, m.Form, m.Times, m.Color, m.Icon,
		m.StartDate, m.EndDate, m.Reminders, m.RefillReminder, m.RefillDaysLeft, m.Notes,
	)
	return scanMedication(row)
}

func (r *MedicationRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM medications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMedicationNotFound
	}
	return nil
}

func (r *MedicationRepository) ListActive(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
	query := `
		SELECT ` + medicationColumns + `
		FROM medications
		WHERE start_date <= $1 AND (end_date IS NULL OR end_date >= $1)`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list active medications: %w", err)
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationRepository) ListEnded(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
	query := `
		SELECT ` + medicationColumns + `
		FROM medications
		WHERE end_date IS NOT NULL AND end_date < $1 AND completed_at IS NULL`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list ended medications: %w", err)
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE medications SET completed_at = $2, updated_at = NOW()
		 WHERE id = $1 AND completed_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("mark medication completed: %w", err)
	}
	return nil
}

func collectMedications(rows pgx.Rows) ([]*domain.Medication, error) {
	var meds []*domain.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func scanMedication(row pgx.Row) (*domain.Medication, error) {
	var m domain.Medication
	err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Form, &m.Times, &m.Color,
		&m.Icon, &m.StartDate, &m.EndDate, &m.Reminders, &m.RefillReminder,
		&m.RefillDaysLeft, &m.Notes, &m.CompletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("scan medication: %w", err)
	}
	return &m, nil
}
