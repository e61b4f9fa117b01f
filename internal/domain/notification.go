package domain

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationStreak   NotificationType = "streak"
	NotificationSession  NotificationType = "session"
	NotificationRefill   NotificationType = "refill"
	NotificationMissed   NotificationType = "missed"
)

type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Message   string
	ActionURL string
	Read      bool
	// DedupeKey prevents the reminder worker from inserting the same
	// notification twice. Empty for user-triggered notifications.
	DedupeKey string
	CreatedAt time.Time
}
