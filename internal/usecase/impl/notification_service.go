package impl

import (
	"context"
	"log/slog"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/usecase"

	"github.com/pkg/errors"
)

// notificationFeedLimit caps how many rows the feed serves; older entries age
// out of view without being deleted.
const notificationFeedLimit = 30

type notificationService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	notificationsStale time.Duration
}

// NewNotificationService is the constructor for notificationService.
func NewNotificationService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.NotificationUsecase {
	return &notificationService{
		txManager:          txManager,
		cacheStore:         cacheStore,
		viewer:             viewer,
		logger:             logger,
		notificationsStale: cfg.Cache.NotificationsStale,
	}
}

// ListNotifications returns the viewer's feed, newest first.
func (s *notificationService) ListNotifications(ctx context.Context) ([]*entity.Notification, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	return cache.Fetch(ctx, s.cacheStore, notificationsKey(viewerID), s.notificationsStale,
		func(ctx context.Context) ([]*entity.Notification, error) {
			var notifications []*entity.Notification

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				notifications, err = repoFactory.NotificationRepo().ListByUser(ctx, viewerID, notificationFeedLimit)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to list notifications")
			}

			return notifications, nil
		})
}

// MarkNotificationRead stamps one of the viewer's notifications as read.
func (s *notificationService) MarkNotificationRead(ctx context.Context, id int64) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			err := repoFactory.NotificationRepo().MarkRead(ctx, id, viewerID, time.Now())
			if err != nil {
				if errors.Is(err, repository.ErrNotificationNotFound) {
					return domainerrors.ErrNotFound.WithDetails("notification does not exist")
				}

				return errors.Wrap(err, "failed to mark notification read")
			}

			return nil
		})
	}

	return s.cacheStore.Mutate(ctx, op, notificationsKey(viewerID))
}
