package program

import (
	"math"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

// Consistency computes the percentage of released workable sessions the
// athlete has completed, rounded to the configured number of decimal
// places. A session is released once its release date is at or before now.
// With nothing released the score is 0, never NaN, so dashboards always
// have a number to show.
func Consistency(schema ResultSchema, sessions []models.SessionRow, results map[uuid.UUID]*models.ResultRow, now time.Time, precision int) (pct float64, released, completed int) {
	for _, s := range sessions {
		if !s.Type.Workable() || now.Before(s.ReleaseDate) {
			continue
		}
		released++
		res := results[s.ID]
		if res != nil && res.CompletedAt != nil && Complete(schema, s.Type, res) {
			completed++
		}
	}

	if released == 0 {
		return 0, 0, completed
	}

	pct = float64(completed) / float64(released) * 100
	scale := math.Pow(10, float64(precision))
	return math.Round(pct*scale) / scale, released, completed
}
