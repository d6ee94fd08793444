package postgres

import (
	"context"

	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// profileRepository implements the domain.ProfileRepository interface using GORM.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profileM model.ProfileModel

	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profileM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by id")
	}

	return toProfileDomain(&profileM), nil
}

func (repo *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// A concurrent bootstrap already provisioned the row.
			return domainerrors.ErrConflict.WrapMessage("profile already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}

	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

func (repo *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Save(profileM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update profile")
	}

	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

func (repo *profileRepository) ListOnboarded(ctx context.Context) ([]*entity.Profile, error) {
	var models []*model.ProfileModel

	err := repo.db.WithContext(ctx).
		Where("onboarding_completed = ?", true).
		Order("full_name ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list onboarded profiles")
	}

	profiles := make([]*entity.Profile, 0, len(models))
	for _, m := range models {
		profiles = append(profiles, toProfileDomain(m))
	}

	return profiles, nil
}

// --- Mapper Functions ---

func toProfileDomain(data *model.ProfileModel) *entity.Profile {
	if data == nil {
		return nil
	}

	var gender *entity.Gender
	if data.Gender != nil {
		g := entity.Gender(*data.Gender)
		gender = &g
	}

	return &entity.Profile{
		ID:                  data.ID,
		FullName:            data.FullName,
		AvatarURL:           data.AvatarURL,
		Gender:              gender,
		HeightCm:            data.HeightCm,
		WeightKg:            data.WeightKg,
		BodyFatPercentage:   data.BodyFatPercentage,
		OnboardingCompleted: data.OnboardingCompleted,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

func fromProfileDomain(data *entity.Profile) *model.ProfileModel {
	if data == nil {
		return nil
	}

	var gender *string
	if data.Gender != nil {
		g := string(*data.Gender)
		gender = &g
	}

	return &model.ProfileModel{
		ID:                  data.ID,
		FullName:            data.FullName,
		AvatarURL:           data.AvatarURL,
		Gender:              gender,
		HeightCm:            data.HeightCm,
		WeightKg:            data.WeightKg,
		BodyFatPercentage:   data.BodyFatPercentage,
		OnboardingCompleted: data.OnboardingCompleted,
		CreatedAt:           data.CreatedAt,
	}
}
