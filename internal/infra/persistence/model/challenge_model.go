package model

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeSettingsModel mirrors the 'challenge_settings' table, one row per
// participant.
type ChallengeSettingsModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	StartAt   time.Time `gorm:"not null"`
	EndAt     time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ChallengeSettingsModel) TableName() string {
	return "challenge_settings"
}
