package impl

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	deliverycontext "fitlog/internal/delivery/context"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/domain/service"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type weeklyLogService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	media      service.MediaStorage
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	logsStale       time.Duration
	logBucket       string
	signedURLExpiry time.Duration
}

// NewWeeklyLogService is the constructor for weeklyLogService.
func NewWeeklyLogService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	media service.MediaStorage,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.WeeklyLogUsecase {
	s := &weeklyLogService{
		txManager:  txManager,
		cacheStore: cacheStore,
		media:      media,
		viewer:     viewer,
		logger:     logger,
		logsStale:  cfg.Cache.WeeklyLogsStale,
	}
	if cfg.Storage != nil {
		s.logBucket = cfg.Storage.WeeklyLogBucket
		s.signedURLExpiry = cfg.Storage.SignedURLExpiry
	}

	return s
}

func (s *weeklyLogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// ListLogs returns the viewer's history, newest week first.
func (s *weeklyLogService) ListLogs(ctx context.Context) ([]*entity.WeeklyLog, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	return cache.Fetch(ctx, s.cacheStore, weeklyLogsKey(viewerID), s.logsStale,
		func(ctx context.Context) ([]*entity.WeeklyLog, error) {
			var logs []*entity.WeeklyLog

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				logs, err = repoFactory.WeeklyLogRepo().ListByUser(ctx, viewerID)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to list weekly logs")
			}

			for _, log := range logs {
				if err := s.resolvePhoto(ctx, log); err != nil {
					return nil, err
				}
			}

			return logs, nil
		})
}

// SubmitLog records one week's measurements. The duplicate-week conflict is
// surfaced as-is so the UI can tell the user this week is already logged.
func (s *weeklyLogService) SubmitLog(ctx context.Context, input usecase.SubmitWeeklyLogInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	if input.WeekStart.IsZero() {
		return domainerrors.ErrValidationFailed.WithDetails("week start is required")
	}
	if input.WeightKg == nil && input.BodyFatPercentage == nil {
		return domainerrors.ErrValidationFailed.WithDetails("at least one measurement is required")
	}
	if input.Photo != nil && s.media == nil {
		return domainerrors.ErrInternalError.WithDetails("media storage is not configured")
	}

	s.log(ctx).Info("submitting weekly log",
		slog.Time("week_start", input.WeekStart), slog.Any("user_id", viewerID))

	var photoPath *string
	if input.Photo != nil {
		objectName := viewerID.String() + "/" + uuid.NewString() + strings.ToLower(path.Ext(input.Photo.FileName))
		if err := s.media.Upload(ctx, s.logBucket, objectName, input.Photo.Body, input.Photo.Size, input.Photo.ContentType); err != nil {
			return errors.Wrap(err, "failed to upload log photo")
		}
		photoPath = &objectName
	}

	log := &entity.WeeklyLog{
		UserID:            viewerID,
		WeekStart:         input.WeekStart,
		WeightKg:          input.WeightKg,
		BodyFatPercentage: input.BodyFatPercentage,
		Notes:             input.Notes,
		PhotoPath:         photoPath,
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			err := repoFactory.WeeklyLogRepo().Create(ctx, log)
			if err != nil {
				if errors.Is(err, repository.ErrDuplicateWeekStart) {
					return domainerrors.ErrDuplicateWeeklyLog
				}

				return errors.Wrap(err, "failed to create weekly log")
			}

			return nil
		})
	}

	return s.cacheStore.Mutate(ctx, op, weeklyLogsKey(viewerID), weeklyLogsAllKey(), progressKey())
}

func (s *weeklyLogService) resolvePhoto(ctx context.Context, log *entity.WeeklyLog) error {
	if log.PhotoPath == nil || s.media == nil {
		return nil
	}

	url, err := s.media.SignedURL(ctx, s.logBucket, *log.PhotoPath, s.signedURLExpiry)
	if err != nil {
		return errors.Wrap(err, "failed to sign photo url")
	}
	log.PhotoURL = &url

	return nil
}
