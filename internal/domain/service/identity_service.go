// Package service defines interfaces for external collaborators consumed by
// the application layer.
package service

import (
	"context"

	"fitlog/internal/domain/entity"
)

// IdentityService is the boundary to the remote identity provider. The
// session manager treats it as a black box: it supplies the current session,
// credential mutations, and an asynchronous event stream.
type IdentityService interface {
	// GetSession resolves the current session, typically by redeeming a
	// persisted refresh token. Returns (nil, nil) when no session exists.
	GetSession(ctx context.Context) (*entity.Session, error)

	// SignInWithPassword performs the password grant.
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error)

	// SignUp registers a new identity. Depending on provider settings the
	// returned session may be nil until the email is confirmed.
	SignUp(ctx context.Context, email, password string) (*entity.Session, error)

	// SignOut revokes the current session on the provider side.
	SignOut(ctx context.Context) error

	// Subscribe registers a callback for subsequent identity events.
	// Events are delivered in arrival order. The returned function cancels
	// the subscription.
	Subscribe(fn func(entity.AuthEvent)) (cancel func())
}
