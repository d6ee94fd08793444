package usecase

import (
	"context"
	"time"

	"fitlog/internal/domain/entity"
)

// SubmitWeeklyLogInput defines the data for one week's measurement entry.
type SubmitWeeklyLogInput struct {
	WeekStart         time.Time
	WeightKg          *float64
	BodyFatPercentage *float64
	Notes             *string
	Photo             *MediaUpload
}

// WeeklyLogUsecase manages the viewer's weekly body-composition logs.
type WeeklyLogUsecase interface {
	// ListLogs returns the viewer's logs, newest week first, with signed
	// photo URLs resolved.
	ListLogs(ctx context.Context) ([]*entity.WeeklyLog, error)

	// SubmitLog records one week's entry. A second submission for the same
	// week surfaces the duplicate conflict to the caller verbatim.
	SubmitLog(ctx context.Context, input SubmitWeeklyLogInput) error
}
