package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// weekStartLayout is the date-only format of the weekStart form field.
const weekStartLayout = "2006-01-02"

// WeeklyLogHandler serves the viewer's weekly measurement logs.
type WeeklyLogHandler struct {
	logs   usecase.WeeklyLogUsecase
	logger *slog.Logger
}

// NewWeeklyLogHandler is the constructor for WeeklyLogHandler, injected by Fx.
func NewWeeklyLogHandler(logs usecase.WeeklyLogUsecase, logger *slog.Logger) *WeeklyLogHandler {
	return &WeeklyLogHandler{
		logs:   logs,
		logger: logger,
	}
}

// weeklyLogView is one log entry rendered to the client.
type weeklyLogView struct {
	ID                int64     `json:"id"`
	WeekStart         string    `json:"weekStart"`
	WeightKg          *float64  `json:"weightKg"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage"`
	Notes             *string   `json:"notes"`
	PhotoURL          *string   `json:"photoUrl"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

func toWeeklyLogViews(logs []*entity.WeeklyLog) []weeklyLogView {
	views := make([]weeklyLogView, 0, len(logs))
	for _, log := range logs {
		views = append(views, weeklyLogView{
			ID:                log.ID,
			WeekStart:         log.WeekStart.Format(weekStartLayout),
			WeightKg:          log.WeightKg,
			BodyFatPercentage: log.BodyFatPercentage,
			Notes:             log.Notes,
			PhotoURL:          log.PhotoURL,
			SubmittedAt:       log.SubmittedAt,
		})
	}

	return views
}

// ListLogs returns the viewer's logs, newest week first.
func (h *WeeklyLogHandler) ListLogs(c echo.Context) error {
	logs, err := h.logs.ListLogs(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toWeeklyLogViews(logs), "")
}

// SubmitLog records one week's entry from a multipart form with an optional
// progress photo.
func (h *WeeklyLogHandler) SubmitLog(c echo.Context) error {
	weekStart, err := time.Parse(weekStartLayout, c.FormValue("weekStart"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("weekStart must be a yyyy-mm-dd date")
	}

	input := usecase.SubmitWeeklyLogInput{WeekStart: weekStart}

	if input.WeightKg, err = optionalFloat(c.FormValue("weightKg")); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("weightKg must be a number")
	}
	if input.BodyFatPercentage, err = optionalFloat(c.FormValue("bodyFatPercentage")); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("bodyFatPercentage must be a number")
	}
	if notes := c.FormValue("notes"); notes != "" {
		input.Notes = &notes
	}

	if fileHeader, fileErr := c.FormFile("photo"); fileErr == nil {
		upload, closeFn, openErr := openUpload(fileHeader)
		if openErr != nil {
			return errors.WithStack(openErr)
		}
		defer closeFn()
		input.Photo = upload
	}

	if err := h.logs.SubmitLog(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, nil, "Log submitted")
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}

	return &value, nil
}
