package usecase

import (
	"context"

	"fitlog/internal/domain/entity"
)

// ParticipantProgress is one participant's standing in the challenge:
// their baseline profile, every submitted log and the reduction versus the
// onboarding measurements.
type ParticipantProgress struct {
	Profile          *entity.Profile
	Logs             []*entity.WeeklyLog
	LatestLog        *entity.WeeklyLog
	WeightReduction  *float64
	BodyFatReduction *float64
}

// ProgressUsecase serves the organizer's overview of every participant.
type ProgressUsecase interface {
	// Overview returns each onboarded participant with their logs grouped
	// and reductions computed. Restricted to the configured admin user.
	Overview(ctx context.Context) ([]*ParticipantProgress, error)
}
