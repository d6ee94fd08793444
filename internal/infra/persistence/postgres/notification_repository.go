package postgres

import (
	"context"
	"encoding/json"
	"time"

	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// notificationRepository implements the domain.NotificationRepository interface using GORM.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error) {
	var models []*model.NotificationModel

	query := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	notifications := make([]*entity.Notification, 0, len(models))
	for _, m := range models {
		notification, err := toNotificationDomain(m)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID, readAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", readAt)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark notification read")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

func (repo *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	data, err := json.Marshal(notification.Data)
	if err != nil {
		return errors.Wrap(err, "failed to encode notification data")
	}

	notificationM := &model.NotificationModel{
		UserID: notification.UserID,
		Type:   string(notification.Type),
		Data:   data,
	}

	if err := repo.db.WithContext(ctx).Create(notificationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrNotFound.WrapMessage("recipient does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create notification")
	}

	notification.ID = notificationM.ID
	notification.CreatedAt = notificationM.CreatedAt

	return nil
}

// --- Mapper Functions ---

func toNotificationDomain(m *model.NotificationModel) (*entity.Notification, error) {
	var data entity.NotificationData
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, errors.Wrap(err, "failed to decode notification data")
		}
	}

	return &entity.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entity.NotificationType(m.Type),
		Data:      data,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}, nil
}
