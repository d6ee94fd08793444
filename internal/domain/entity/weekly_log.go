package entity

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyLog is one participant's body-composition measurement for a single
// challenge week. At most one log exists per (user, week start).
type WeeklyLog struct {
	ID                int64
	UserID            uuid.UUID
	WeekStart         time.Time // Date of the Monday the log belongs to.
	WeightKg          *float64
	BodyFatPercentage *float64
	PhotoPath         *string // Storage object name; nil when no photo was attached.
	Notes             *string
	SubmittedAt       time.Time
	UpdatedAt         time.Time

	// PhotoURL is a short-lived signed link resolved at read time.
	PhotoURL *string
}
