package repository

import (
	"context"
	"time"

	"github.com/mediremind/api/internal/domain"
)

type MedicationRepository interface {
	Create(ctx context.Context, med *domain.Medication) (*domain.Medication, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Medication, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error)
	Update(ctx context.Context, med *domain.Medication) (*domain.Medication, error)
	Delete(ctx context.Context, id, userID string) error
	// ListActive returns every medication, across all users, whose date
	// range covers the given day. Used by the reminder worker.
	ListActive(ctx context.Context, day time.Time) ([]*domain.Medication, error)
	// ListEnded returns medications whose end date passed before the
	// given day and that are not yet marked completed.
	ListEnded(ctx context.Context, day time.Time) ([]*domain.Medication, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) error
}

type DoseLogRepository interface {
	// Upsert writes a dose log. An existing log for the same
	// (user, medication, date, time) is only overwritten when the new
	// status is "taken"; a missed marker never clobbers a taken dose.
	Upsert(ctx context.Context, log *domain.DoseLog) (*domain.DoseLog, error)
	ListByUserDate(ctx context.Context, userID string, date time.Time) ([]*domain.DoseLog, error)
	ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DoseLog, error)
	Find(ctx context.Context, userID, medicationID string, date time.Time, scheduledTime string) (*domain.DoseLog, error)
}
