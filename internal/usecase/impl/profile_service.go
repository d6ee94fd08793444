package impl

import (
	"context"
	"log/slog"
	"path"
	"strings"

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

type profileService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	media      service.MediaStorage
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	avatarBucket string
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	media service.MediaStorage,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	s := &profileService{
		txManager:  txManager,
		cacheStore: cacheStore,
		media:      media,
		viewer:     viewer,
		logger:     logger,
	}
	if cfg.Storage != nil {
		s.avatarBucket = cfg.Storage.AvatarBucket
	}

	return s
}

func (s *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// UpdateProfile updates the display name and, when provided, the avatar.
// The author name is denormalized into post and comment reads, so both
// prefixes are declared for invalidation.
func (s *profileService) UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name must not be empty")
	}
	if input.Avatar != nil && s.media == nil {
		return domainerrors.ErrInternalError.WithDetails("media storage is not configured")
	}

	s.log(ctx).Info("updating profile", slog.Any("user_id", viewerID))

	var avatarURL *string
	if input.Avatar != nil {
		objectName := viewerID.String() + "/" + uuid.NewString() + strings.ToLower(path.Ext(input.Avatar.FileName))
		if err := s.media.Upload(ctx, s.avatarBucket, objectName, input.Avatar.Body, input.Avatar.Size, input.Avatar.ContentType); err != nil {
			return errors.Wrap(err, "failed to upload avatar")
		}
		url := s.media.PublicURL(s.avatarBucket, objectName)
		avatarURL = &url
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			profileRepo := repoFactory.ProfileRepo()

			profile, err := profileRepo.FindByID(ctx, viewerID)
			if err != nil {
				return errors.Wrap(err, "failed to find profile")
			}

			profile.FullName = &fullName
			if avatarURL != nil {
				profile.AvatarURL = avatarURL
			}

			return errors.Wrap(profileRepo.Update(ctx, profile), "failed to update profile")
		})
	}

	return s.cacheStore.Mutate(ctx, op, postsKey(), commentsAllKey(), progressKey())
}

// CompleteOnboarding records the baseline measurements and marks the profile
// onboarded. The baselines feed the organizer's reduction overview.
func (s *profileService) CompleteOnboarding(ctx context.Context, input usecase.CompleteOnboardingInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name must not be empty")
	}
	if input.Gender != "" && input.Gender != entity.GenderMale && input.Gender != entity.GenderFemale {
		return domainerrors.ErrValidationFailed.WithDetails("unknown gender")
	}
	if input.HeightCm <= 0 || input.WeightKg <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails("height and weight must be positive")
	}

	s.log(ctx).Info("completing onboarding", slog.Any("user_id", viewerID))

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			profileRepo := repoFactory.ProfileRepo()

			profile, err := profileRepo.FindByID(ctx, viewerID)
			if err != nil {
				return errors.Wrap(err, "failed to find profile")
			}

			profile.FullName = &fullName
			if input.Gender != "" {
				gender := input.Gender
				profile.Gender = &gender
			}
			height := input.HeightCm
			weight := input.WeightKg
			profile.HeightCm = &height
			profile.WeightKg = &weight
			profile.BodyFatPercentage = input.BodyFatPercentage
			profile.OnboardingCompleted = true

			return errors.Wrap(profileRepo.Update(ctx, profile), "failed to update profile")
		})
	}

	return s.cacheStore.Mutate(ctx, op, progressKey())
}
