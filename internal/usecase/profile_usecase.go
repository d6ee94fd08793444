package usecase

import (
	"context"

	"fitlog/internal/domain/entity"
)

// UpdateProfileInput defines the editable profile fields.
type UpdateProfileInput struct {
	FullName string
	Avatar   *MediaUpload
}

// CompleteOnboardingInput captures the baseline measurements recorded at the
// start of the challenge.
type CompleteOnboardingInput struct {
	FullName          string
	Gender            entity.Gender
	HeightCm          float64
	WeightKg          float64
	BodyFatPercentage *float64
}

// ProfileUsecase mutates the viewer's profile row. Callers are expected to
// refresh the session manager's profile afterwards.
type ProfileUsecase interface {
	// UpdateProfile updates the display name and, when provided, the avatar.
	UpdateProfile(ctx context.Context, input UpdateProfileInput) error

	// CompleteOnboarding records the baseline measurements and marks the
	// profile onboarded.
	CompleteOnboarding(ctx context.Context, input CompleteOnboardingInput) error
}
