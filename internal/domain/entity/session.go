// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated identity handle issued by the identity provider.
// It is owned by the identity client; the rest of the system holds read-only copies.
type Session struct {
	UserID       uuid.UUID // Subject of the access token.
	AccessToken  string    // Opaque bearer token for the backend APIs.
	RefreshToken string    // Token used to obtain the next session.
	ExpiresAt    time.Time // Access token expiry.
}

// Expired reports whether the session's access token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// AuthEventKind identifies the kind of change carried by an identity event.
type AuthEventKind string

const (
	// AuthEventSignedIn is emitted when a user signs in.
	AuthEventSignedIn AuthEventKind = "signed_in"

	// AuthEventTokenRefreshed is emitted when the current session's tokens are
	// renewed without the identity changing.
	AuthEventTokenRefreshed AuthEventKind = "token_refreshed"

	// AuthEventSignedOut is emitted when the session ends.
	AuthEventSignedOut AuthEventKind = "signed_out"
)

// AuthEvent is a single entry in the identity provider's event stream.
// Session is nil for sign-out events.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// AuthPhase is the lifecycle phase of the session manager.
type AuthPhase string

const (
	// AuthPhaseUninitialized is the phase before Bootstrap has been invoked.
	AuthPhaseUninitialized AuthPhase = "uninitialized"

	// AuthPhaseBootstrapping is the phase while the initial session and
	// profile are being resolved.
	AuthPhaseBootstrapping AuthPhase = "bootstrapping"

	// AuthPhaseReady is the terminal phase. The manager stays Ready and
	// re-enters it on every subsequent identity change.
	AuthPhaseReady AuthPhase = "ready"
)

// AuthState is the observable {session, profile, loading} triple owned by the
// session manager. It is replaced wholesale on every change, never mutated in
// place, so consumers always observe a consistent snapshot.
type AuthState struct {
	Phase   AuthPhase
	Session *Session
	Profile *Profile
	Loading bool
}

// Authenticated reports whether a session is currently tracked.
func (s AuthState) Authenticated() bool {
	return s.Session != nil
}

// UserID returns the tracked session's user id, or uuid.Nil when signed out.
func (s AuthState) UserID() uuid.UUID {
	if s.Session == nil {
		return uuid.Nil
	}

	return s.Session.UserID
}
