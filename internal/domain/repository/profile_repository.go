// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when no profile row exists for a user id.
// Callers rely on this being distinguishable from other read errors: "no row"
// triggers auto-provisioning, anything else degrades to profile=nil.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the standard operations for profile persistence.
type ProfileRepository interface {
	// FindByID retrieves a single profile by its user id.
	// Returns ErrProfileNotFound when no row exists.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)

	// Create persists a new profile row.
	Create(ctx context.Context, profile *entity.Profile) error

	// Update modifies an existing profile row.
	Update(ctx context.Context, profile *entity.Profile) error

	// ListOnboarded retrieves every profile that completed onboarding,
	// ordered by full name.
	ListOnboarded(ctx context.Context) ([]*entity.Profile, error)
}
