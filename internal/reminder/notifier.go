package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/metrics"
	"github.com/mediremind/api/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	// A dose this long past its scheduled time without a log is marked missed.
	missedAfter = time.Hour

	refillThresholdDays = 5
)

// Notifier scans medications on a fixed interval and writes due
// reminder, missed-dose, refill and course-completion notifications.
// Dedupe keys make every cycle idempotent, so a restart never
// double-notifies.
type Notifier struct {
	meds     repository.MedicationRepository
	doses    repository.DoseLogRepository
	notifs   repository.NotificationRepository
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewNotifier(meds repository.MedicationRepository, doses repository.DoseLogRepository, notifs repository.NotificationRepository, logger *slog.Logger, interval time.Duration) *Notifier {
	return &Notifier{
		meds:     meds,
		doses:    doses,
		notifs:   notifs,
		logger:   logger.With("component", "reminder_notifier"),
		interval: interval,
		now:      time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (n *Notifier) SetNow(now func() time.Time) { n.now = now }

func (n *Notifier) Start(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	n.logger.Info("reminder notifier started", "interval", n.interval)

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("reminder notifier shut down")
			return
		case <-ticker.C:
			n.RunCycle(ctx)
		}
	}
}

// RunCycle performs one scan of all active medications.
func (n *Notifier) RunCycle(ctx context.Context) {
	start := n.now()
	defer func() {
		metrics.ReminderCycleDuration.Observe(time.Since(start).Seconds())
	}()

	now := n.now()
	day := now.Truncate(24 * time.Hour)

	meds, err := n.meds.ListActive(ctx, day)
	if err != nil {
		n.logger.Error("list active medications", "error", err)
		return
	}

	var sent int
	for _, med := range meds {
		sent += n.processMedication(ctx, med, now, day)
	}
	sent += n.sweepCompleted(ctx, now, day)
	if sent > 0 {
		n.logger.Info("reminder cycle complete", "medications", len(meds), "notifications", sent)
	}
}

// sweepCompleted finds medications whose treatment course has ended,
// marks them completed and congratulates the user. The completed_at
// marker keeps each course out of the next sweep.
func (n *Notifier) sweepCompleted(ctx context.Context, now, day time.Time) int {
	ended, err := n.meds.ListEnded(ctx, day)
	if err != nil {
		n.logger.Error("list ended medications", "error", err)
		return 0
	}

	var sent int
	for _, med := range ended {
		created, err := n.notifs.Create(ctx, &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    med.UserID,
			Type:      domain.NotificationStreak,
			Message:   fmt.Sprintf("🎉 Congratulations! You've completed your %q treatment course.", med.Name),
			ActionURL: "/medications",
			DedupeKey: "completed:" + med.ID,
		})
		if err != nil {
			n.logger.Error("create completion notification", "medication_id", med.ID, "error", err)
			continue
		}
		if err := n.meds.MarkCompleted(ctx, med.ID, now); err != nil {
			n.logger.Error("mark medication completed", "medication_id", med.ID, "error", err)
			continue
		}
		if created != nil {
			metrics.RemindersSentTotal.WithLabelValues("completed").Inc()
			sent++
		}
	}
	return sent
}

func (n *Notifier) processMedication(ctx context.Context, med *domain.Medication, now, day time.Time) int {
	var sent int

	for _, doseTime := range med.Times {
		occurrence, err := occurrenceOn(doseTime, day)
		if err != nil {
			n.logger.Error("invalid dose time on medication", "medication_id", med.ID, "time", doseTime, "error", err)
			continue
		}

		switch {
		case occurrence.After(now):
			// Not due yet.
		case now.Sub(occurrence) < missedAfter:
			if med.Reminders && n.sendReminder(ctx, med, day, doseTime) {
				sent++
			}
		default:
			if n.markMissed(ctx, med, day, doseTime, now) {
				sent++
			}
		}
	}

	if med.RefillReminder && med.RefillDaysLeft > 0 && med.RefillDaysLeft <= refillThresholdDays {
		if n.sendRefill(ctx, med, day) {
			sent++
		}
	}
	return sent
}

// sendReminder writes a take-your-medication notification for a dose that
// just came due. Returns true when a new notification was inserted.
func (n *Notifier) sendReminder(ctx context.Context, med *domain.Medication, day time.Time, doseTime string) bool {
	created, err := n.notifs.Create(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    med.UserID,
		Type:      domain.NotificationReminder,
		Message:   fmt.Sprintf("Time to take %s (%s)", med.Name, med.Dosage),
		ActionURL: "/medications/today",
		DedupeKey: dedupeKey("reminder", med.ID, day, doseTime),
	})
	if err != nil {
		n.logger.Error("create reminder notification", "medication_id", med.ID, "error", err)
		return false
	}
	if created == nil {
		return false
	}
	metrics.RemindersSentTotal.WithLabelValues("reminder").Inc()
	return true
}

// markMissed logs the dose as missed and notifies the user. The log upsert
// never overwrites a taken dose, so a dose taken late stays taken.
func (n *Notifier) markMissed(ctx context.Context, med *domain.Medication, day time.Time, doseTime string, now time.Time) bool {
	existing, err := n.doses.Find(ctx, med.UserID, med.ID, day, doseTime)
	if err != nil {
		n.logger.Error("find dose log", "medication_id", med.ID, "error", err)
		return false
	}
	if existing != nil {
		return false
	}

	_, err = n.doses.Upsert(ctx, &domain.DoseLog{
		ID:            uuid.NewString(),
		UserID:        med.UserID,
		MedicationID:  med.ID,
		Date:          day,
		ScheduledTime: doseTime,
		Status:        domain.DoseMissed,
	})
	if err != nil {
		n.logger.Error("mark dose missed", "medication_id", med.ID, "error", err)
		return false
	}

	created, err := n.notifs.Create(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    med.UserID,
		Type:      domain.NotificationMissed,
		Message:   fmt.Sprintf("You missed your %s dose of %s", doseTime, med.Name),
		ActionURL: "/medications/today",
		DedupeKey: dedupeKey("missed", med.ID, day, doseTime),
	})
	if err != nil {
		n.logger.Error("create missed notification", "medication_id", med.ID, "error", err)
		return false
	}
	if created == nil {
		return false
	}
	metrics.RemindersSentTotal.WithLabelValues("missed").Inc()
	return true
}

// sendRefill notifies at most once per day while the supply is low.
func (n *Notifier) sendRefill(ctx context.Context, med *domain.Medication, day time.Time) bool {
	created, err := n.notifs.Create(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    med.UserID,
		Type:      domain.NotificationRefill,
		Message:   fmt.Sprintf("%s is running low: about %d days of supply left", med.Name, med.RefillDaysLeft),
		ActionURL: "/medications",
		DedupeKey: dedupeKey("refill", med.ID, day, ""),
	})
	if err != nil {
		n.logger.Error("create refill notification", "medication_id", med.ID, "error", err)
		return false
	}
	if created == nil {
		return false
	}
	metrics.RemindersSentTotal.WithLabelValues("refill").Inc()
	return true
}

// occurrenceOn resolves an "HH:MM" dose time to its wall-clock occurrence
// on the given day.
func occurrenceOn(doseTime string, day time.Time) (time.Time, error) {
	hhmm := strings.SplitN(doseTime, ":", 2)
	if len(hhmm) != 2 {
		return time.Time{}, fmt.Errorf("malformed time %q", doseTime)
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("%s %s * * *", hhmm[1], hhmm[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", doseTime, err)
	}
	return sched.Next(day.Add(-time.Second)), nil
}

func dedupeKey(kind, medicationID string, day time.Time, doseTime string) string {
	key := fmt.Sprintf("%s:%s:%s", kind, medicationID, day.Format("2006-01-02"))
	if doseTime != "" {
		key += ":" + doseTime
	}
	return key
}
