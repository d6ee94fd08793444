package usecase

import (
	"context"
	"time"

	"fitlog/internal/domain/entity"
)

// UpsertChallengeInput defines the viewer's challenge window.
type UpsertChallengeInput struct {
	StartAt time.Time
	EndAt   time.Time
}

// ChallengeUsecase manages the viewer's challenge window.
type ChallengeUsecase interface {
	// GetSettings returns the configured window, or nil when none exists.
	GetSettings(ctx context.Context) (*entity.ChallengeSettings, error)

	// UpsertSettings creates or replaces the window.
	UpsertSettings(ctx context.Context, input UpsertChallengeInput) error

	// Progress summarizes where now falls inside the window. Returns nil
	// when no window is configured.
	Progress(ctx context.Context) (*entity.ChallengeProgress, error)
}
