package usecase

import (
	"context"
	"fmt"

	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/repository"
)

const (
	defaultNotificationLimit = 10
	maxNotificationLimit     = 50
)

type NotificationUsecase struct {
	notifs repository.NotificationRepository
}

func NewNotificationUsecase(notifs repository.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifs: notifs}
}

func (u *NotificationUsecase) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	notifs, err := u.notifs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, id, userID string) error {
	return u.notifs.MarkRead(ctx, id, userID)
}
