package usecase

import (
	"context"

	"fitlog/internal/domain/entity"
)

// NotificationUsecase serves the viewer's in-app notifications.
type NotificationUsecase interface {
	// ListNotifications returns the most recent notifications, newest first.
	ListNotifications(ctx context.Context) ([]*entity.Notification, error)

	// MarkNotificationRead stamps one of the viewer's notifications as read.
	MarkNotificationRead(ctx context.Context, id int64) error
}
