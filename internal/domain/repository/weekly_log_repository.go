package repository

import (
	"context"
	"errors"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicateWeekStart is returned when a log already exists for the same
// (user, week start) pair.
var ErrDuplicateWeekStart = errors.New("weekly log already exists for week")

// WeeklyLogRepository defines the operations for weekly log persistence.
type WeeklyLogRepository interface {
	// ListByUser retrieves the user's logs descending by week start.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.WeeklyLog, error)

	// ListAll retrieves every participant's logs ascending by week start.
	ListAll(ctx context.Context) ([]*entity.WeeklyLog, error)

	// Create persists a new weekly log. Returns ErrDuplicateWeekStart when
	// the week already has a submission.
	Create(ctx context.Context, log *entity.WeeklyLog) error
}
