package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/repository"
)

type UserUsecase struct {
	users  repository.UserRepository
	doses  repository.DoseLogRepository
	notifs repository.NotificationRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewUserUsecase(
	users repository.UserRepository,
	doses repository.DoseLogRepository,
	notifs repository.NotificationRepository,
	logger *slog.Logger,
) *UserUsecase {
	return &UserUsecase{
		users:  users,
		doses:  doses,
		notifs: notifs,
		logger: logger.With("component", "user_usecase"),
		now:    time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (u *UserUsecase) SetNow(now func() time.Time) { u.now = now }

func (u *UserUsecase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return u.users.FindByID(ctx, userID)
}

// Upgrade moves the user onto a paid plan. Yearly billing buys 365
// days, monthly 30. A welcome notification is written on success.
func (u *UserUsecase) Upgrade(ctx context.Context, userID string, plan domain.Plan, billingCycle string) (*domain.User, error) {
	days := 30
	if billingCycle == "yearly" {
		days = 365
	}
	expiry := u.now().AddDate(0, 0, days)

	user, err := u.users.UpdatePlan(ctx, userID, plan, &expiry)
	if err != nil {
		return nil, err
	}

	label := "Premium"
	if plan == domain.PlanFamily {
		label = "Family"
	}
	_, err = u.notifs.Create(ctx, &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.NotificationStreak,
		Message:   fmt.Sprintf("Welcome to the %s plan! All features are now unlocked.", label),
		ActionURL: "/dashboard",
	})
	if err != nil {
		// The upgrade itself succeeded; a missing notification is not
		// worth failing the request over.
		u.logger.ErrorContext(ctx, "create upgrade notification", "user_id", userID, "error", err)
	}
	return user, nil
}

// Streak derives adherence stats from the last 60 days of dose logs.
func (u *UserUsecase) Streak(ctx context.Context, userID string) (*domain.Streak, error) {
	today := dateOnly(u.now())
	from := today.AddDate(0, 0, -59)

	logs, err := u.doses.ListByUserRange(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("load dose logs: %w", err)
	}

	takenByDay := make(map[string]int)
	totalTaken := 0
	var weekTaken, weekScheduled int
	weekStart := today.AddDate(0, 0, -6)

	for _, l := range logs {
		day := l.Date.Format("2006-01-02")
		if l.Status == domain.DoseTaken {
			takenByDay[day]++
			totalTaken++
		}
		if !l.Date.Before(weekStart) {
			weekScheduled++
			if l.Status == domain.DoseTaken {
				weekTaken++
			}
		}
	}

	streak := &domain.Streak{TotalTaken: totalTaken}
	if weekScheduled > 0 {
		streak.WeeklyAdherence = weekTaken * 100 / weekScheduled
	}

	// Current streak: consecutive days ending today (or yesterday, if
	// today has no doses taken yet) with at least one taken dose.
	day := today
	if takenByDay[day.Format("2006-01-02")] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	for takenByDay[day.Format("2006-01-02")] > 0 {
		streak.Current++
		day = day.AddDate(0, 0, -1)
	}

	// Longest streak within the window.
	run := 0
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		if takenByDay[d.Format("2006-01-02")] > 0 {
			run++
			if run > streak.Longest {
				streak.Longest = run
			}
		} else {
			run = 0
		}
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}

	return streak, nil
}
