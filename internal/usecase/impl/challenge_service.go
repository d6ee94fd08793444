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

	"github.com/pkg/errors"
)

type challengeService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	challengeStale time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewChallengeService is the constructor for challengeService.
func NewChallengeService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.ChallengeUsecase {
	return &challengeService{
		txManager:      txManager,
		cacheStore:     cacheStore,
		viewer:         viewer,
		logger:         logger,
		challengeStale: cfg.Cache.ChallengeStale,
		now:            time.Now,
	}
}

func (s *challengeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// GetSettings returns the viewer's window, or nil when none is configured.
// "No window yet" is a normal state for new participants, not an error.
func (s *challengeService) GetSettings(ctx context.Context) (*entity.ChallengeSettings, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	return cache.Fetch(ctx, s.cacheStore, challengeKey(viewerID), s.challengeStale,
		func(ctx context.Context) (*entity.ChallengeSettings, error) {
			var settings *entity.ChallengeSettings

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				found, err := repoFactory.ChallengeRepo().FindByUser(ctx, viewerID)
				if err != nil {
					if errors.Is(err, repository.ErrChallengeSettingsNotFound) {
						return nil
					}

					return err
				}
				settings = found

				return nil
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to find challenge settings")
			}

			return settings, nil
		})
}

// UpsertSettings creates or replaces the viewer's window.
func (s *challengeService) UpsertSettings(ctx context.Context, input usecase.UpsertChallengeInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	if input.StartAt.IsZero() || input.EndAt.IsZero() {
		return domainerrors.ErrValidationFailed.WithDetails("start and end are required")
	}
	if !input.EndAt.After(input.StartAt) {
		return domainerrors.ErrValidationFailed.WithDetails("end must be after start")
	}

	s.log(ctx).Info("upserting challenge settings",
		slog.Time("start_at", input.StartAt), slog.Time("end_at", input.EndAt), slog.Any("user_id", viewerID))

	settings := &entity.ChallengeSettings{
		UserID:  viewerID,
		StartAt: input.StartAt,
		EndAt:   input.EndAt,
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			return errors.Wrap(repoFactory.ChallengeRepo().Upsert(ctx, settings), "failed to upsert challenge settings")
		})
	}

	return s.cacheStore.Mutate(ctx, op, challengeKey(viewerID))
}

// Progress summarizes the window relative to now. Nil when no window exists.
func (s *challengeService) Progress(ctx context.Context) (*entity.ChallengeProgress, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, nil
	}

	progress := settings.Progress(s.now())

	return &progress, nil
}
