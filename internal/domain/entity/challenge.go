package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeSettings is a participant's configured challenge window.
type ChallengeSettings struct {
	UserID    uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	UpdatedAt time.Time
}

// ChallengeProgress summarizes where "now" falls inside the window.
type ChallengeProgress struct {
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	TotalWeeks   int       `json:"totalWeeks"`
	ElapsedWeeks int       `json:"elapsedWeeks"`
	Finished     bool      `json:"finished"`
}

// Progress computes the week counters for the given instant. Weeks are
// counted in whole 7-day steps from StartAt, clamped to the window.
func (s *ChallengeSettings) Progress(now time.Time) ChallengeProgress {
	const week = 7 * 24 * time.Hour

	total := int(s.EndAt.Sub(s.StartAt) / week)
	if s.EndAt.Sub(s.StartAt)%week > 0 {
		total++
	}

	elapsed := 0
	if now.After(s.StartAt) {
		elapsed = int(now.Sub(s.StartAt)/week) + 1
	}
	if elapsed > total {
		elapsed = total
	}

	return ChallengeProgress{
		StartAt:      s.StartAt,
		EndAt:        s.EndAt,
		TotalWeeks:   total,
		ElapsedWeeks: elapsed,
		Finished:     now.After(s.EndAt),
	}
}
