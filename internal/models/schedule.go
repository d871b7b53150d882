package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionType classifies both weeks and the sessions inside them.
type SessionType string

const (
	SessionTraining SessionType = "training"
	SessionTesting  SessionType = "testing"
	SessionRest     SessionType = "rest"
)

// Workable reports whether sessions of this type count toward completion.
// Rest placeholders exist only for display and never complete.
func (t SessionType) Workable() bool {
	return t == SessionTraining || t == SessionTesting
}

// BlockRow is a row of the blocks table. Start and end dates are calendar
// days stored at UTC midnight; EndDate is inclusive.
type BlockRow struct {
	ID        uuid.UUID
	AthleteID uuid.UUID
	Seq       int
	StartDate time.Time
	EndDate   time.Time
	Weeks     int
	CreatedAt time.Time
}

// SessionRow is a row of the sessions table. Week is the 1-based position
// within the block; Number is the 1-based position within the week.
type SessionRow struct {
	ID          uuid.UUID
	BlockID     uuid.UUID
	AthleteID   uuid.UUID
	Week        int
	Number      int
	Type        SessionType
	ReleaseDate time.Time
}
