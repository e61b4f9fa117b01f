package repository

import (
	"context"

	"github.com/mediremind/api/internal/domain"
)

type NotificationRepository interface {
	// Create inserts the notification. When a DedupeKey is set and a row
	// with the same key already exists, the insert is a no-op and
	// (nil, nil) is returned.
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	// MarkRead returns domain.ErrNotificationNotFound when the id does
	// not belong to the user.
	MarkRead(ctx context.Context, id, userID string) error
}
