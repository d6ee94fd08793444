package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/domain/entity"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the viewer's in-app notifications.
type NotificationHandler struct {
	notifications usecase.NotificationUsecase
	logger        *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler, injected by Fx.
func NewNotificationHandler(notifications usecase.NotificationUsecase, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

type notificationView struct {
	ID        int64                   `json:"id"`
	Type      string                  `json:"type"`
	Data      entity.NotificationData `json:"data"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

func toNotificationViews(notifications []*entity.Notification) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, notification := range notifications {
		views = append(views, notificationView{
			ID:        notification.ID,
			Type:      string(notification.Type),
			Data:      notification.Data,
			Read:      notification.Read(),
			CreatedAt: notification.CreatedAt,
		})
	}

	return views
}

// ListNotifications returns the most recent notifications, newest first.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	notifications, err := h.notifications.ListNotifications(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toNotificationViews(notifications), "")
}

// MarkRead stamps one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkNotificationRead(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification read")
}
