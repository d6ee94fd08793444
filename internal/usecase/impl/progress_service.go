package impl

import (
	"context"
	"log/slog"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	deliverycontext "fitlog/internal/delivery/context"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type progressService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	overviewStale time.Duration
	adminUserID   uuid.UUID
}

// NewProgressService is the constructor for progressService.
func NewProgressService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.ProgressUsecase {
	// A malformed or absent admin id leaves uuid.Nil, which matches no
	// signed-in viewer and keeps the overview locked.
	adminUserID, err := uuid.Parse(cfg.Admin.UserID)
	if err != nil {
		adminUserID = uuid.Nil
	}

	return &progressService{
		txManager:     txManager,
		cacheStore:    cacheStore,
		viewer:        viewer,
		logger:        logger,
		overviewStale: cfg.Cache.WeeklyLogsStale,
		adminUserID:   adminUserID,
	}
}

func (s *progressService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// Overview returns every onboarded participant with their logs grouped and
// reductions against the onboarding baseline computed. Organizer only.
func (s *progressService) Overview(ctx context.Context) ([]*usecase.ParticipantProgress, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}
	if viewerID != s.adminUserID {
		return nil, domainerrors.ErrForbidden
	}

	s.log(ctx).Debug("building progress overview")

	return cache.Fetch(ctx, s.cacheStore, progressKey(), s.overviewStale,
		func(ctx context.Context) ([]*usecase.ParticipantProgress, error) {
			var (
				profiles []*entity.Profile
				logs     []*entity.WeeklyLog
			)

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				if profiles, err = repoFactory.ProfileRepo().ListOnboarded(ctx); err != nil {
					return errors.Wrap(err, "failed to list profiles")
				}
				if logs, err = repoFactory.WeeklyLogRepo().ListAll(ctx); err != nil {
					return errors.Wrap(err, "failed to list weekly logs")
				}

				return nil
			})
			if err != nil {
				return nil, err
			}

			return buildOverview(profiles, logs), nil
		})
}

// buildOverview groups logs per participant and computes the reduction of the
// latest measurement versus the onboarding baseline. Logs arrive ascending by
// week, so the last seen log per user is the latest.
func buildOverview(profiles []*entity.Profile, logs []*entity.WeeklyLog) []*usecase.ParticipantProgress {
	byUser := make(map[uuid.UUID][]*entity.WeeklyLog)
	for _, log := range logs {
		byUser[log.UserID] = append(byUser[log.UserID], log)
	}

	out := make([]*usecase.ParticipantProgress, 0, len(profiles))
	for _, profile := range profiles {
		userLogs := byUser[profile.ID]

		p := &usecase.ParticipantProgress{
			Profile: profile,
			Logs:    userLogs,
		}
		if len(userLogs) > 0 {
			p.LatestLog = userLogs[len(userLogs)-1]
			p.WeightReduction = reduction(profile.WeightKg, p.LatestLog.WeightKg)
			p.BodyFatReduction = reduction(profile.BodyFatPercentage, p.LatestLog.BodyFatPercentage)
		}
		out = append(out, p)
	}

	return out
}

// reduction returns baseline-current, or nil when either side is missing.
func reduction(baseline, current *float64) *float64 {
	if baseline == nil || current == nil {
		return nil
	}

	d := *baseline - *current

	return &d
}
