package handler

import (
	"log/slog"
	"net/http"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/domain/entity"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProgressHandler serves the organizer's participant overview.
type ProgressHandler struct {
	progress usecase.ProgressUsecase
	logger   *slog.Logger
}

// NewProgressHandler is the constructor for ProgressHandler, injected by Fx.
func NewProgressHandler(progress usecase.ProgressUsecase, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		logger:   logger,
	}
}

// participantView is one participant's standing rendered to the organizer.
type participantView struct {
	Profile          profileView     `json:"profile"`
	Logs             []weeklyLogView `json:"logs"`
	LatestLog        *weeklyLogView  `json:"latestLog"`
	WeightReduction  *float64        `json:"weightReduction"`
	BodyFatReduction *float64        `json:"bodyFatReduction"`
}

// Overview returns every onboarded participant with reductions computed.
func (h *ProgressHandler) Overview(c echo.Context) error {
	participants, err := h.progress.Overview(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]participantView, 0, len(participants))
	for _, participant := range participants {
		view := participantView{
			Profile:          toProfileView(participant.Profile),
			Logs:             toWeeklyLogViews(participant.Logs),
			WeightReduction:  participant.WeightReduction,
			BodyFatReduction: participant.BodyFatReduction,
		}
		if participant.LatestLog != nil {
			latest := toWeeklyLogViews([]*entity.WeeklyLog{participant.LatestLog})
			view.LatestLog = &latest[0]
		}
		views = append(views, view)
	}

	return response.Success(c, http.StatusOK, views, "")
}
