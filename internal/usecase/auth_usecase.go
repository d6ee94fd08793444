// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignInInput defines the data required for the password grant.
type SignInInput struct {
	Email    string
	Password string
}

// SignUpInput defines the data required to register a new identity.
type SignUpInput struct {
	Email    string
	Password string
}

// AuthUsecase owns the authoritative {session, profile, loading} triple and
// reconciles the identity provider's bootstrap and event-stream sources into
// a single race-free view.
type AuthUsecase interface {
	ViewerProvider

	// Bootstrap resolves the initial session and profile. Invoked once at
	// startup; identity failures degrade to a signed-out Ready state.
	Bootstrap(ctx context.Context)

	// HandleAuthEvent feeds one identity-stream event into the state machine.
	// Duplicate events for the already-tracked user are ignored.
	HandleAuthEvent(ctx context.Context, event entity.AuthEvent)

	// Snapshot returns the current state. The returned value is immutable.
	Snapshot() entity.AuthState

	// Subscribe registers an observer notified after every state replacement.
	Subscribe(fn func(entity.AuthState)) (cancel func())

	// RefreshProfile re-fetches the tracked user's profile. No-op while
	// unauthenticated.
	RefreshProfile(ctx context.Context) error

	// SignIn performs the password grant against the identity provider.
	SignIn(ctx context.Context, input SignInInput) error

	// SignUp registers a new identity.
	SignUp(ctx context.Context, input SignUpInput) error

	// SignOut revokes the session remotely and unconditionally clears the
	// local session and profile, even when the remote call fails.
	SignOut(ctx context.Context) error
}

// ViewerProvider resolves the signed-in user on behalf of the feature
// services. Implemented by the session manager.
type ViewerProvider interface {
	// CurrentUserID returns the tracked session's user id. ok is false while
	// signed out or still loading.
	CurrentUserID() (id uuid.UUID, ok bool)
}
