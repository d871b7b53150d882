package program

import (
	"time"

	"github.com/claude/liftcamp/internal/models"
)

// SessionState is the lifecycle state of a session at a given "now".
type SessionState string

const (
	StateLocked    SessionState = "locked"
	StateAvailable SessionState = "available"
	StateCompleted SessionState = "completed"
)

// ResolveSessionState computes a session's state. "now" is always an
// explicit input; nothing in this package reads the wall clock.
//
// locked    — now is before the release date.
// completed — a result exists, the completeness predicate holds, and
//             CompletedAt is set. Rest sessions never reach this state.
// available — everything else.
func ResolveSessionState(schema ResultSchema, sess models.SessionRow, result *models.ResultRow, now time.Time) SessionState {
	if now.Before(sess.ReleaseDate) {
		return StateLocked
	}
	if result != nil && result.CompletedAt != nil && Complete(schema, sess.Type, result) {
		return StateCompleted
	}
	return StateAvailable
}

// BlockCurrent reports whether now falls within the block's date range,
// inclusive on both ends. EndDate is a calendar day, so anything before the
// following midnight still counts.
func BlockCurrent(b models.BlockRow, now time.Time) bool {
	if now.Before(b.StartDate) {
		return false
	}
	return now.Before(b.EndDate.AddDate(0, 0, 1))
}
