package domain

import (
	"errors"
	"time"
)

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrDoseAlreadyLogged  = errors.New("dose already logged")
	ErrInvalidDoseTime    = errors.New("time not in medication schedule")
)

type Medication struct {
	ID             string
	UserID         string
	Name           string
	Dosage         string
	Form           string
	Times          []string // "HH:MM", local clock times of each daily dose
	Color          string
	Icon           string
	StartDate      time.Time
	EndDate        *time.Time
	Reminders      bool
	RefillReminder bool
	RefillDaysLeft int
	Notes          string
	CompletedAt    *time.Time // set once the treatment course has ended
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ActiveOn reports whether the medication is scheduled on the given day.
func (m *Medication) ActiveOn(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	if m.StartDate.After(d) {
		return false
	}
	if m.EndDate != nil && m.EndDate.Before(d) {
		return false
	}
	return true
}

type DoseStatus string

const (
	DoseTaken    DoseStatus = "taken"
	DoseMissed   DoseStatus = "missed"
	DoseUpcoming DoseStatus = "upcoming"
	DosePending  DoseStatus = "pending"
)

// DoseLog records the outcome of one scheduled dose.
// Keyed by (user, medication, date, scheduled time).
type DoseLog struct {
	ID            string
	UserID        string
	MedicationID  string
	Date          time.Time // calendar day, midnight
	ScheduledTime string    // "HH:MM"
	Status        DoseStatus
	TakenAt       *time.Time
	CreatedAt     time.Time
}

// DoseView is one entry of a user's daily schedule: a medication time
// joined with its log (if any).
type DoseView struct {
	MedicationID string
	Name         string
	Dosage       string
	Time         string
	Status       DoseStatus
	Color        string
	Icon         string
	TakenAt      *time.Time
}
