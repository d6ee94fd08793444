package handler

import (
	"log/slog"
	"mime/multipart"
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

// ProfileHandler serves the viewer's profile.
type ProfileHandler struct {
	profiles usecase.ProfileUsecase
	auth     usecase.AuthUsecase
	logger   *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(profiles usecase.ProfileUsecase, auth usecase.AuthUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		auth:     auth,
		logger:   logger,
	}
}

// profileView is the profile rendered to the client.
type profileView struct {
	ID                  string    `json:"id"`
	FullName            *string   `json:"fullName"`
	AvatarURL           *string   `json:"avatarUrl"`
	Gender              *string   `json:"gender"`
	HeightCm            *float64  `json:"heightCm"`
	WeightKg            *float64  `json:"weightKg"`
	BodyFatPercentage   *float64  `json:"bodyFatPercentage"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func toProfileView(profile *entity.Profile) profileView {
	view := profileView{
		ID:                  profile.ID.String(),
		FullName:            profile.FullName,
		AvatarURL:           profile.AvatarURL,
		HeightCm:            profile.HeightCm,
		WeightKg:            profile.WeightKg,
		BodyFatPercentage:   profile.BodyFatPercentage,
		OnboardingCompleted: profile.OnboardingCompleted,
		UpdatedAt:           profile.UpdatedAt,
	}
	if profile.Gender != nil {
		gender := string(*profile.Gender)
		view.Gender = &gender
	}

	return view
}

type completeOnboardingRequest struct {
	FullName          string   `json:"fullName" validate:"required"`
	Gender            string   `json:"gender" validate:"required,oneof=male female"`
	HeightCm          float64  `json:"heightCm" validate:"required,gt=0"`
	WeightKg          float64  `json:"weightKg" validate:"required,gt=0"`
	BodyFatPercentage *float64 `json:"bodyFatPercentage" validate:"omitempty,gt=0,lt=100"`
}

// GetProfile returns the tracked profile from the session manager.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	state := h.auth.Snapshot()
	if state.Profile == nil {
		return domainerrors.ErrNotFound.WithDetails("profile is not loaded yet")
	}

	return response.Success(c, http.StatusOK, toProfileView(state.Profile), "")
}

// UpdateProfile handles the multipart profile update: display name plus an
// optional avatar image.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	input := usecase.UpdateProfileInput{
		FullName: c.FormValue("fullName"),
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil {
		upload, closeFn, openErr := openUpload(fileHeader)
		if openErr != nil {
			return errors.WithStack(openErr)
		}
		defer closeFn()
		input.Avatar = upload
	}

	if err := h.profiles.UpdateProfile(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.RefreshProfile(c.Request().Context()); err != nil {
		h.logger.Warn("profile refresh after update failed", slog.Any("error", err))
	}

	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "Profile updated")
}

// CompleteOnboarding records the baseline measurements.
func (h *ProfileHandler) CompleteOnboarding(c echo.Context) error {
	var req completeOnboardingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid onboarding input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.profiles.CompleteOnboarding(c.Request().Context(), usecase.CompleteOnboardingInput{
		FullName:          req.FullName,
		Gender:            entity.Gender(req.Gender),
		HeightCm:          req.HeightCm,
		WeightKg:          req.WeightKg,
		BodyFatPercentage: req.BodyFatPercentage,
	}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.RefreshProfile(c.Request().Context()); err != nil {
		h.logger.Warn("profile refresh after onboarding failed", slog.Any("error", err))
	}

	return response.Success(c, http.StatusOK, toSessionView(h.auth.Snapshot()), "Onboarding completed")
}

// openUpload adapts a multipart file header to the usecase upload type. The
// returned func closes the underlying file and must be deferred by the caller.
func openUpload(fileHeader *multipart.FileHeader) (*usecase.MediaUpload, func(), error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open uploaded file")
	}

	return &usecase.MediaUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

// parseID parses a positive int64 path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be a positive integer")
	}

	return id, nil
}
