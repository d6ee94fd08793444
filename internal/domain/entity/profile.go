package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the participant's self-reported gender, used for score grouping.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Profile is the application-level user record, one-to-one with the identity
// provider's user. The measurement fields hold the values captured at
// onboarding and serve as the challenge baseline.
type Profile struct {
	ID                  uuid.UUID // Same id as the identity provider's user.
	FullName            *string
	AvatarURL           *string
	Gender              *Gender
	HeightCm            *float64
	WeightKg            *float64
	BodyFatPercentage   *float64
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewDefaultProfile returns the row auto-provisioned for a fresh identity.
func NewDefaultProfile(userID uuid.UUID) *Profile {
	return &Profile{
		ID:                  userID,
		OnboardingCompleted: false,
	}
}

// DisplayName returns the full name, or empty string when not yet set.
func (p *Profile) DisplayName() string {
	if p.FullName == nil {
		return ""
	}

	return *p.FullName
}
