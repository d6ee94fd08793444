package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/domain/entity"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthHandler exposes the session manager over HTTP.
type AuthHandler struct {
	auth   usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// sessionView is the observable auth state rendered to the client.
type sessionView struct {
	Phase         entity.AuthPhase `json:"phase"`
	Loading       bool             `json:"loading"`
	Authenticated bool             `json:"authenticated"`
	UserID        *string          `json:"userId,omitempty"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	Profile       *profileView     `json:"profile,omitempty"`
}

func toSessionView(state entity.AuthState) sessionView {
	view := sessionView{
		Phase:         state.Phase,
		Loading:       state.Loading,
		Authenticated: state.Authenticated(),
	}
	if state.Session != nil {
		id := state.Session.UserID.String()
		view.UserID = &id
		expiresAt := state.Session.ExpiresAt
		view.ExpiresAt = &expiresAt
	}
	if state.Profile != nil {
		profile := toProfileView(state.Profile)
		view.Profile = &profile
	}

	return view
}

// GetSession returns the current auth state snapshot.
func (h *AuthHandler) GetSession(c echo.Context) error {
	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "")
}

// SignIn handles the password sign-in request.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.SignIn(c.Request().Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "Signed in")
}

// SignUp handles the registration request.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-up input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.SignUp(c.Request().Context(), usecase.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toSessionView(h.auth.Snapshot()), "Signed up")
}

// RefreshProfile re-fetches the tracked user's profile. No-op while signed
// out.
func (h *AuthHandler) RefreshProfile(c echo.Context) error {
	if err := h.auth.RefreshProfile(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "Profile refreshed")
}

// SignOut handles the sign-out request. The local state is always cleared;
// a failed remote revocation still yields a signed-out response.
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context()); err != nil {
		h.logger.Warn("remote sign-out failed", slog.Any("error", err))
	}

	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "Signed out")
}
