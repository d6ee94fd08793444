package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ChallengeHandler serves the viewer's challenge window.
type ChallengeHandler struct {
	challenges usecase.ChallengeUsecase
	logger     *slog.Logger
}

// NewChallengeHandler is the constructor for ChallengeHandler, injected by Fx.
func NewChallengeHandler(challenges usecase.ChallengeUsecase, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		challenges: challenges,
		logger:     logger,
	}
}

type upsertChallengeRequest struct {
	StartAt time.Time `json:"startAt" validate:"required"`
	EndAt   time.Time `json:"endAt" validate:"required"`
}

type challengeSettingsView struct {
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetSettings returns the configured window, or null when none exists.
func (h *ChallengeHandler) GetSettings(c echo.Context) error {
	settings, err := h.challenges.GetSettings(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	if settings == nil {
		return response.Success(c, http.StatusOK, nil, "")
	}

	return response.Success(c, http.StatusOK, challengeSettingsView{
		StartAt:   settings.StartAt,
		EndAt:     settings.EndAt,
		UpdatedAt: settings.UpdatedAt,
	}, "")
}

// UpsertSettings creates or replaces the window.
func (h *ChallengeHandler) UpsertSettings(c echo.Context) error {
	var req upsertChallengeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid challenge input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.challenges.UpsertSettings(c.Request().Context(), usecase.UpsertChallengeInput{
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Challenge window saved")
}

// Progress summarizes where now falls inside the window.
func (h *ChallengeHandler) Progress(c echo.Context) error {
	progress, err := h.challenges.Progress(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, progress, "")
}
