package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/repository"
)

type MedicationUsecase struct {
	meds  repository.MedicationRepository
	doses repository.DoseLogRepository
	now   func() time.Time
}

func NewMedicationUsecase(meds repository.MedicationRepository, doses repository.DoseLogRepository) *MedicationUsecase {
	return &MedicationUsecase{meds: meds, doses: doses, now: time.Now}
}

// SetNow overrides the clock. Tests only.
func (u *MedicationUsecase) SetNow(now func() time.Time) { u.now = now }

type MedicationInput struct {
	UserID         string
	Name           string
	Dosage         string
	Form           string
	Times          []string
	Color          string
	Icon           string
	StartDate      time.Time
	EndDate        *time.Time
	Reminders      bool
	RefillReminder bool
	RefillDaysLeft int
	Notes          string
}

func (u *MedicationUsecase) Create(ctx context.Context, input MedicationInput) (*domain.Medication, error) {
	if input.StartDate.IsZero() {
		input.StartDate = dateOnly(u.now())
	}

	med, err := u.meds.Create(ctx, &domain.Medication{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		Name:           input.Name,
		Dosage:         input.Dosage,
		Form:           input.Form,
		Times:          input.Times,
		Color:          input.Color,
		Icon:           input.Icon,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Reminders:      input.Reminders,
		RefillReminder: input.RefillReminder,
		RefillDaysLeft: input.RefillDaysLeft,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create medication: %w", err)
	}
	return med, nil
}

func (u *MedicationUsecase) List(ctx context.Context, userID string) ([]*domain.Medication, error) {
	meds, err := u.meds.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return meds, nil
}

func (u *MedicationUsecase) Update(ctx context.Context, id string, input MedicationInput) (*domain.Medication, error) {
	med, err := u.meds.GetByID(ctx, id, input.UserID)
	if err != nil {
		return nil, err
	}

	med.Name = input.Name
	med.Dosage = input.Dosage
	med.Form = input.Form
	med.Times = input.Times
	med.Color = input.Color
	med.Icon = input.Icon
	if !input.StartDate.IsZero() {
		med.StartDate = input.StartDate
	}
	med.EndDate = input.EndDate
	med.Reminders = input.Reminders
	med.RefillReminder = input.RefillReminder
	med.RefillDaysLeft = input.RefillDaysLeft
	med.Notes = input.Notes

	updated, err := u.meds.Update(ctx, med)
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}
	return updated, nil
}

func (u *MedicationUsecase) Delete(ctx context.Context, id, userID string) error {
	return u.meds.Delete(ctx, id, userID)
}

// Today builds the user's dose schedule for the current day: one entry
// per (medication, time), joined with any log written for it.
func (u *MedicationUsecase) Today(ctx context.Context, userID string) ([]domain.DoseView, error) {
	now := u.now()
	today := dateOnly(now)

	meds, err := u.meds.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}

	logs, err := u.doses.ListByUserDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}
	byDose := make(map[string]*domain.DoseLog, len(logs))
	for _, l := range logs {
		byDose[l.MedicationID+"@"+l.ScheduledTime] = l
	}

	nowClock := now.Format("15:04")
	views := make([]domain.DoseView, 0)
	for _, med := range meds {
		if !med.ActiveOn(today) {
			continue
		}
		for _, t := range med.Times {
			v := domain.DoseView{
				MedicationID: med.ID,
				Name:         med.Name,
				Dosage:       med.Dosage,
				Time:         t,
				Color:        med.Color,
				Icon:         med.Icon,
			}
			if l, ok := byDose[med.ID+"@"+t]; ok {
				v.Status = l.Status
				v.TakenAt = l.TakenAt
			} else if t > nowClock {
				v.Status = domain.DoseUpcoming
			} else {
				v.Status = domain.DosePending
			}
			views = append(views, v)
		}
	}
	return views, nil
}

// MarkTaken logs a dose as taken. The time must be one of the
// medication's scheduled times. Marking the same dose twice is a
// no-op, not an error.
func (u *MedicationUsecase) MarkTaken(ctx context.Context, userID, medicationID, scheduledTime string) error {
	med, err := u.meds.GetByID(ctx, medicationID, userID)
	if err != nil {
		return err
	}
	if !slices.Contains(med.Times, scheduledTime) {
		return domain.ErrInvalidDoseTime
	}

	now := u.now()
	_, err = u.doses.Upsert(ctx, &domain.DoseLog{
		ID:            uuid.NewString(),
		UserID:        userID,
		MedicationID:  medicationID,
		Date:          dateOnly(now),
		ScheduledTime: scheduledTime,
		Status:        domain.DoseTaken,
		TakenAt:       &now,
	})
	if err != nil && !errors.Is(err, domain.ErrDoseAlreadyLogged) {
		return fmt.Errorf("log dose: %w", err)
	}
	return nil
}

// History returns the user's dose logs over the given range; a zero
// range defaults to the last 30 days.
func (u *MedicationUsecase) History(ctx context.Context, userID string, from, to time.Time) ([]*domain.DoseLog, error) {
	if to.IsZero() {
		to = dateOnly(u.now())
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	logs, err := u.doses.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("dose history: %w", err)
	}
	return logs, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
