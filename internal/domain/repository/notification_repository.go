package repository

import (
	"context"
	"errors"
	"time"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification id does not resolve
// to a row owned by the given user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the operations for notification persistence.
type NotificationRepository interface {
	// ListByUser retrieves the user's most recent notifications descending by
	// creation time, at most limit rows.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error)

	// MarkRead stamps the notification's read time, scoped to its owner.
	// Returns ErrNotificationNotFound when no matching row exists.
	MarkRead(ctx context.Context, id int64, userID uuid.UUID, readAt time.Time) error

	// Create persists a new notification for its recipient.
	Create(ctx context.Context, notification *entity.Notification) error
}
