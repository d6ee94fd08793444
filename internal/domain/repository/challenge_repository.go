package repository

import (
	"context"
	"errors"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrChallengeSettingsNotFound is returned when a user has not configured a
// challenge window yet.
var ErrChallengeSettingsNotFound = errors.New("challenge settings not found")

// ChallengeRepository defines the operations for challenge window persistence.
type ChallengeRepository interface {
	// FindByUser retrieves the user's challenge window. Returns
	// ErrChallengeSettingsNotFound when none is configured.
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.ChallengeSettings, error)

	// Upsert creates or replaces the user's challenge window.
	Upsert(ctx context.Context, settings *entity.ChallengeSettings) error
}
