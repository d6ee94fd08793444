package middleware

import (
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionMiddleware gates routes on the session manager's state. The daemon
// serves a single local identity, so authentication is a state check rather
// than per-request token verification.
type SessionMiddleware struct {
	auth usecase.AuthUsecase
}

// NewSessionMiddleware creates the session gate.
func NewSessionMiddleware(auth usecase.AuthUsecase) *SessionMiddleware {
	return &SessionMiddleware{auth: auth}
}

// RequireSession rejects requests while no identity is tracked.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := m.auth.CurrentUserID(); !ok {
			return domainerrors.ErrUnauthenticated
		}

		return next(c)
	}
}
