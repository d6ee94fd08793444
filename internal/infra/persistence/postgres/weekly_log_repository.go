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

// weeklyLogRepository implements the domain.WeeklyLogRepository interface using GORM.
type weeklyLogRepository struct {
	db *gorm.DB
}

// NewWeeklyLogRepository is the constructor for weeklyLogRepository.
func NewWeeklyLogRepository(db *gorm.DB) repository.WeeklyLogRepository {
	return &weeklyLogRepository{db: db}
}

func (repo *weeklyLogRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WeeklyLog, error) {
	var models []*model.WeeklyLogModel

	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_start DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list weekly logs by user")
	}

	return toWeeklyLogDomains(models), nil
}

func (repo *weeklyLogRepository) ListAll(ctx context.Context) ([]*entity.WeeklyLog, error) {
	var models []*model.WeeklyLogModel

	err := repo.db.WithContext(ctx).
		Order("week_start ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list all weekly logs")
	}

	return toWeeklyLogDomains(models), nil
}

func (repo *weeklyLogRepository) Create(ctx context.Context, log *entity.WeeklyLog) error {
	logM := &model.WeeklyLogModel{
		UserID:            log.UserID,
		WeekStart:         log.WeekStart,
		WeightKg:          log.WeightKg,
		BodyFatPercentage: log.BodyFatPercentage,
		PhotoPath:         log.PhotoPath,
		Notes:             log.Notes,
	}

	if err := repo.db.WithContext(ctx).Create(logM).Error; err != nil {
		// One log per (user, week start); the unique index is the source of
		// truth, the service layer only relays the conflict.
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateWeekStart
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create weekly log")
	}

	log.ID = logM.ID
	log.SubmittedAt = logM.CreatedAt
	log.UpdatedAt = logM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

func toWeeklyLogDomains(models []*model.WeeklyLogModel) []*entity.WeeklyLog {
	logs := make([]*entity.WeeklyLog, 0, len(models))
	for _, m := range models {
		logs = append(logs, &entity.WeeklyLog{
			ID:                m.ID,
			UserID:            m.UserID,
			WeekStart:         m.WeekStart,
			WeightKg:          m.WeightKg,
			BodyFatPercentage: m.BodyFatPercentage,
			PhotoPath:         m.PhotoPath,
			Notes:             m.Notes,
			SubmittedAt:       m.CreatedAt,
			UpdatedAt:         m.UpdatedAt,
		})
	}

	return logs
}
