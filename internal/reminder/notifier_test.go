package reminder

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mediremind/api/internal/domain"
)

type fakeMedicationRepo struct {
	listActive func(ctx context.Context, day time.Time) ([]*domain.Medication, error)
	ended      []*domain.Medication
	completed  []string
}

func (f *fakeMedicationRepo) Create(ctx context.Context, med *domain.Medication) (*domain.Medication, error) {
	panic("not implemented")
}

func (f *fakeMedicationRepo) GetByID(ctx context.Context, id, userID string) (*domain.Medication, error) {
	panic("not implemented")
}

func (f *fakeMedicationRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error) {
	panic("not implemented")
}

func (f *fakeMedicationRepo) Update(ctx context.Context, med *domain.Medication) (*domain.Medication, error) {
	panic("not implemented")
}

func (f *fakeMedicationRepo) Delete(ctx context.Context, id, userID string) error {
	panic("not implemented")
}

func (f *fakeMedicationRepo) ListActive(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
	return f.listActive(ctx, day)
}

func (f *fakeMedicationRepo) ListEnded(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
	var out []*domain.Medication
	for _, m := range f.ended {
		if m.CompletedAt == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	f.completed = append(f.completed, id)
	for _, m := range f.ended {
		if m.ID == id {
			m.CompletedAt = &at
		}
	}
	return nil
}

type fakeDoseLogRepo struct {
	upserted []*domain.DoseLog
	existing map[string]*domain.DoseLog // keyed by medicationID + scheduledTime
}

func (f *fakeDoseLogRepo) Upsert(ctx context.Context, l *domain.DoseLog) (*domain.DoseLog, error) {
	f.upserted = append(f.upserted, l)
	return l, nil
}

func (f *fakeDoseLogRepo) ListByUserDate(ctx context.Context, userID string, date time.Time) ([]*domain.DoseLog, error) {
	panic("not implemented")
}

func (f *fakeDoseLogRepo) ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DoseLog, error) {
	panic("not implemented")
}

func (f *fakeDoseLogRepo) Find(ctx context.Context, userID, medicationID string, date time.Time, scheduledTime string) (*domain.DoseLog, error) {
	return f.existing[medicationID+scheduledTime], nil
}

type fakeNotificationRepo struct {
	created []*domain.Notification
	seen    map[string]bool
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if n.DedupeKey != "" && f.seen[n.DedupeKey] {
		return nil, nil
	}
	f.seen[n.DedupeKey] = true
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	panic("not implemented")
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	panic("not implemented")
}

func testMedication(times ...string) *domain.Medication {
	return &domain.Medication{
		ID:        "med-1",
		UserID:    "user-1",
		Name:      "Lisinopril",
		Dosage:    "10mg",
		Times:     times,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Reminders: true,
	}
}

func newTestNotifier(meds []*domain.Medication, doses *fakeDoseLogRepo, notifs *fakeNotificationRepo, now time.Time) *Notifier {
	medRepo := &fakeMedicationRepo{
		listActive: func(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
			return meds, nil
		},
	}
	n := NewNotifier(medRepo, doses, notifs, slog.New(slog.NewTextHandler(os.Stderr, nil)), time.Minute)
	n.SetNow(func() time.Time { return now })
	return n
}

func TestNotifierSendsReminderForDueDose(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 30, 0, time.UTC)
	doses := &fakeDoseLogRepo{}
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, doses, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs.created))
	}
	got := notifs.created[0]
	if got.Type != domain.NotificationReminder {
		t.Errorf("expected reminder type, got %q", got.Type)
	}
	if got.DedupeKey != "reminder:med-1:2026-03-10:09:00" {
		t.Errorf("unexpected dedupe key %q", got.DedupeKey)
	}
	if len(doses.upserted) != 0 {
		t.Errorf("due dose should not be marked missed, got %d upserts", len(doses.upserted))
	}
}

func TestNotifierSkipsFutureDose(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, &fakeDoseLogRepo{}, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 0 {
		t.Fatalf("expected no notifications for a future dose, got %d", len(notifs.created))
	}
}

func TestNotifierRespectsRemindersFlag(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 30, 0, time.UTC)
	med := testMedication("09:00")
	med.Reminders = false
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{med}, &fakeDoseLogRepo{}, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 0 {
		t.Fatalf("expected no notifications with reminders off, got %d", len(notifs.created))
	}
}

func TestNotifierDoesNotDoubleNotify(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 30, 0, time.UTC)
	doses := &fakeDoseLogRepo{}
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, doses, notifs, now)
	n.RunCycle(context.Background())
	n.RunCycle(context.Background())

	if len(notifs.created) != 1 {
		t.Fatalf("expected dedupe to keep 1 notification across cycles, got %d", len(notifs.created))
	}
}

func TestNotifierMarksOldDoseMissed(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	doses := &fakeDoseLogRepo{}
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, doses, notifs, now)
	n.RunCycle(context.Background())

	if len(doses.upserted) != 1 {
		t.Fatalf("expected 1 missed dose log, got %d", len(doses.upserted))
	}
	log := doses.upserted[0]
	if log.Status != domain.DoseMissed {
		t.Errorf("expected missed status, got %q", log.Status)
	}
	if log.ScheduledTime != "09:00" {
		t.Errorf("expected scheduled time 09:00, got %q", log.ScheduledTime)
	}
	if len(notifs.created) != 1 || notifs.created[0].Type != domain.NotificationMissed {
		t.Fatalf("expected a single missed notification, got %+v", notifs.created)
	}
}

func TestNotifierLeavesLoggedDoseAlone(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	doses := &fakeDoseLogRepo{
		existing: map[string]*domain.DoseLog{
			"med-109:00": {Status: domain.DoseTaken},
		},
	}
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, doses, notifs, now)
	n.RunCycle(context.Background())

	if len(doses.upserted) != 0 {
		t.Fatalf("taken dose must not be overwritten, got %d upserts", len(doses.upserted))
	}
	if len(notifs.created) != 0 {
		t.Fatalf("taken dose must not be notified, got %d", len(notifs.created))
	}
}

func TestNotifierSendsRefillWarning(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	med := testMedication()
	med.RefillReminder = true
	med.RefillDaysLeft = 3
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{med}, &fakeDoseLogRepo{}, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 refill notification, got %d", len(notifs.created))
	}
	if notifs.created[0].Type != domain.NotificationRefill {
		t.Errorf("expected refill type, got %q", notifs.created[0].Type)
	}
}

func TestNotifierSkipsRefillWithPlentyLeft(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	med := testMedication()
	med.RefillReminder = true
	med.RefillDaysLeft = 14
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{med}, &fakeDoseLogRepo{}, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 0 {
		t.Fatalf("expected no refill notification, got %d", len(notifs.created))
	}
}

func TestNotifierCompletesEndedCourse(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	med := testMedication("09:00")
	endDate := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	med.EndDate = &endDate

	medRepo := &fakeMedicationRepo{
		listActive: func(ctx context.Context, day time.Time) ([]*domain.Medication, error) {
			return nil, nil
		},
		ended: []*domain.Medication{med},
	}
	notifs := &fakeNotificationRepo{}
	n := NewNotifier(medRepo, &fakeDoseLogRepo{}, notifs, slog.New(slog.NewTextHandler(os.Stderr, nil)), time.Minute)
	n.SetNow(func() time.Time { return now })

	n.RunCycle(context.Background())

	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 completion notification, got %d", len(notifs.created))
	}
	got := notifs.created[0]
	if got.Type != domain.NotificationStreak {
		t.Errorf("expected streak type, got %q", got.Type)
	}
	if got.DedupeKey != "completed:med-1" {
		t.Errorf("unexpected dedupe key %q", got.DedupeKey)
	}
	if len(medRepo.completed) != 1 || medRepo.completed[0] != "med-1" {
		t.Errorf("expected med-1 marked completed, got %v", medRepo.completed)
	}

	// A later cycle must not congratulate again.
	n.RunCycle(context.Background())
	if len(notifs.created) != 1 {
		t.Fatalf("expected completion to stay deduped, got %d", len(notifs.created))
	}
}

func TestNotifierLeavesActiveCourseUncompleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	notifs := &fakeNotificationRepo{}

	n := newTestNotifier([]*domain.Medication{testMedication("09:00")}, &fakeDoseLogRepo{}, notifs, now)
	n.RunCycle(context.Background())

	if len(notifs.created) != 0 {
		t.Fatalf("expected no notifications for an ongoing course, got %d", len(notifs.created))
	}
}

func TestOccurrenceOn(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := occurrenceOn("14:30", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := occurrenceOn("1430", day); err == nil {
		t.Error("expected error for malformed time")
	}
}
