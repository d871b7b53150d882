package program

import (
	"testing"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

func d(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return parsed.UTC()
}

// materialize turns a BlockPlan into persisted-looking rows for one athlete.
func materialize(t *testing.T, athleteID uuid.UUID, plan BlockPlan) (models.BlockRow, []models.SessionRow) {
	t.Helper()
	block := models.BlockRow{
		ID:        uuid.New(),
		AthleteID: athleteID,
		Seq:       plan.Seq,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Weeks:     plan.Weeks,
	}
	var sessions []models.SessionRow
	for _, sp := range plan.Sessions {
		sessions = append(sessions, models.SessionRow{
			ID:          uuid.New(),
			BlockID:     block.ID,
			AthleteID:   athleteID,
			Week:        sp.Week,
			Number:      sp.Number,
			Type:        sp.Type,
			ReleaseDate: sp.ReleaseDate,
		})
	}
	return block, sessions
}

// completeTraining returns a completed training result for a session.
func completeTraining(sessionID, athleteID uuid.UUID, at time.Time) *models.ResultRow {
	one := 1.0
	return &models.ResultRow{
		ID:        uuid.New(),
		SessionID: sessionID,
		AthleteID: athleteID,
		Values: map[string]*float64{
			"score_warmup":       &one,
			"score_strength":     &one,
			"score_conditioning": &one,
		},
		CompletedAt: &at,
	}
}

// completeTesting returns a completed testing result without the optional
// broad jump measurement.
func completeTesting(sessionID, athleteID uuid.UUID, at time.Time) *models.ResultRow {
	v := 100.0
	return &models.ResultRow{
		ID:        uuid.New(),
		SessionID: sessionID,
		AthleteID: athleteID,
		Values: map[string]*float64{
			"max_squat_kg":    &v,
			"max_bench_kg":    &v,
			"max_deadlift_kg": &v,
		},
		CompletedAt: &at,
	}
}

// completeSession fills in whichever result shape the session type needs.
func completeSession(s models.SessionRow, at time.Time) *models.ResultRow {
	if s.Type == models.SessionTesting {
		return completeTesting(s.ID, s.AthleteID, at)
	}
	return completeTraining(s.ID, s.AthleteID, at)
}

func testProgram() config.ProgramConfig {
	return config.DefaultProgram()
}
