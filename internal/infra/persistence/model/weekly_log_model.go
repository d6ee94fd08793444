package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyLogModel mirrors the 'weekly_logs' table. The unique index on
// (user_id, week_start) enforces the one-log-per-week rule database-side.
type WeeklyLogModel struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_logs_user_week"`
	WeekStart         time.Time `gorm:"type:date;not null;uniqueIndex:idx_weekly_logs_user_week"`
	WeightKg          *float64
	BodyFatPercentage *float64
	PhotoPath         *string `gorm:"type:text"`
	Notes             *string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (WeeklyLogModel) TableName() string {
	return "weekly_logs"
}
