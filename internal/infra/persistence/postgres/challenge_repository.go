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
	"gorm.io/gorm/clause"
)

// challengeRepository implements the domain.ChallengeRepository interface using GORM.
type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository is the constructor for challengeRepository.
func NewChallengeRepository(db *gorm.DB) repository.ChallengeRepository {
	return &challengeRepository{db: db}
}

func (repo *challengeRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.ChallengeSettings, error) {
	var settingsM model.ChallengeSettingsModel

	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&settingsM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrChallengeSettingsNotFound
		}

		return nil, errors.Wrap(err, "failed to find challenge settings")
	}

	return &entity.ChallengeSettings{
		UserID:    settingsM.UserID,
		StartAt:   settingsM.StartAt,
		EndAt:     settingsM.EndAt,
		UpdatedAt: settingsM.UpdatedAt,
	}, nil
}

func (repo *challengeRepository) Upsert(ctx context.Context, settings *entity.ChallengeSettings) error {
	settingsM := &model.ChallengeSettingsModel{
		UserID:  settings.UserID,
		StartAt: settings.StartAt,
		EndAt:   settings.EndAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_at", "end_at", "updated_at"}),
		}).
		Create(settingsM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert challenge settings")
	}

	settings.UpdatedAt = settingsM.UpdatedAt

	return nil
}
