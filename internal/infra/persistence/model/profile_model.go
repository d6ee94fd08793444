// Package model holds the GORM persistence models mirroring the backend's
// tables. Mapping to and from domain entities happens in the repositories.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileModel mirrors the 'profiles' table. The primary key is the identity
// provider's user id, so no default is generated database-side.
type ProfileModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName            *string   `gorm:"type:varchar(100)"`
	AvatarURL           *string   `gorm:"type:text"`
	Gender              *string   `gorm:"type:varchar(10)"`
	HeightCm            *float64
	WeightKg            *float64
	BodyFatPercentage   *float64
	OnboardingCompleted bool `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "profiles"
}
