package program

import (
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

// BlockPlan is a generated block before persistence: dates, week kinds and
// sessions, no IDs yet. Generation is fully deterministic given the start
// date, the duration and the configured week layout.
type BlockPlan struct {
	Seq       int
	StartDate time.Time
	EndDate   time.Time
	Weeks     int
	Sessions  []SessionPlan
}

// SessionPlan is one generated session within a block.
type SessionPlan struct {
	Week        int
	Number      int
	Type        models.SessionType
	ReleaseDate time.Time
}

// DateOnly truncates a time to its UTC calendar day. All block and release
// dates are stored this way; "now" comparisons stay plain time comparisons.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BlockEndDate computes the inclusive end date of a block.
func BlockEndDate(start time.Time, weeks int) time.Time {
	return DateOnly(start).AddDate(0, 0, weeks*7-1)
}

// WeekKind classifies week n of a block. Rest wins when a week appears in
// both configured sets.
func WeekKind(layout config.WeekLayout, n int) models.SessionType {
	for _, w := range layout.RestWeeks {
		if w == n {
			return models.SessionRest
		}
	}
	for _, w := range layout.TestingWeeks {
		if w == n {
			return models.SessionTesting
		}
	}
	return models.SessionTraining
}

// ReleaseDate computes when a session unlocks: the Monday-anchored start of
// its week, with the second training session of a week dripped a few days
// later.
func ReleaseDate(cfg config.ProgramConfig, blockStart time.Time, week, number int) time.Time {
	rel := DateOnly(blockStart).AddDate(0, 0, (week-1)*7)
	if number == 2 {
		rel = rel.AddDate(0, 0, cfg.Session2OffsetDays)
	}
	return rel
}

// BuildBlock generates the full week/session layout for one block. The
// duration must have a configured layout; otherwise ErrInvalidDuration.
func BuildBlock(cfg config.ProgramConfig, seq int, start time.Time, weeks int) (BlockPlan, error) {
	if weeks <= 0 {
		return BlockPlan{}, fmt.Errorf("%w: %d weeks", ErrInvalidDuration, weeks)
	}
	layout, ok := cfg.WeekLayouts[weeks]
	if !ok {
		return BlockPlan{}, fmt.Errorf("%w: no layout for %d weeks", ErrInvalidDuration, weeks)
	}

	start = DateOnly(start)
	plan := BlockPlan{
		Seq:       seq,
		StartDate: start,
		EndDate:   BlockEndDate(start, weeks),
		Weeks:     weeks,
	}

	for week := 1; week <= weeks; week++ {
		kind := WeekKind(layout, week)
		perWeek := 0
		switch kind {
		case models.SessionTraining:
			perWeek = 2
		case models.SessionTesting:
			perWeek = 1
		case models.SessionRest:
			// One placeholder so the week still renders; it never
			// completes and never counts as workable.
			perWeek = 1
		}
		for number := 1; number <= perWeek; number++ {
			plan.Sessions = append(plan.Sessions, SessionPlan{
				Week:        week,
				Number:      number,
				Type:        kind,
				ReleaseDate: ReleaseDate(cfg, start, week, number),
			})
		}
	}

	return plan, nil
}

// WorkableCount returns the number of workable sessions in a plan.
func (p BlockPlan) WorkableCount() int {
	n := 0
	for _, s := range p.Sessions {
		if s.Type.Workable() {
			n++
		}
	}
	return n
}

// CheckNoOverlap rejects a plan whose end date runs into the next existing
// block. next may be nil when the plan is appended at the end.
func CheckNoOverlap(plan BlockPlan, next *models.BlockRow) error {
	if next != nil && !plan.EndDate.Before(next.StartDate) {
		return fmt.Errorf("%w: block %d would end %s, block %d starts %s",
			ErrScheduleConflict, plan.Seq, plan.EndDate.Format("2006-01-02"),
			next.Seq, next.StartDate.Format("2006-01-02"))
	}
	return nil
}

// BlockShift is one block's recomputed dates within a reschedule cascade.
type BlockShift struct {
	BlockID   uuid.UUID
	Seq       int
	Weeks     int
	StartDate time.Time
	EndDate   time.Time
}

// CascadeFrom recomputes dates for the target block and every later one:
// the target starts at newStart, each subsequent block starts the day after
// its predecessor ends, and every end date follows from that block's own
// stored duration. Blocks before the target are untouched, so the new start
// must fall after the preceding block ends. The input slice must be the
// athlete's blocks ordered by Seq; the target must be present.
func CascadeFrom(blocks []models.BlockRow, targetSeq int, newStart time.Time) ([]BlockShift, error) {
	var shifts []BlockShift
	start := DateOnly(newStart)
	found := false

	for _, b := range blocks {
		if b.Seq == targetSeq-1 && !start.After(b.EndDate) {
			return nil, fmt.Errorf("%w: block %d would start %s, block %d ends %s",
				ErrScheduleConflict, targetSeq, start.Format("2006-01-02"),
				b.Seq, b.EndDate.Format("2006-01-02"))
		}
		if b.Seq < targetSeq {
			continue
		}
		if b.Seq == targetSeq {
			found = true
		}
		end := BlockEndDate(start, b.Weeks)
		shifts = append(shifts, BlockShift{
			BlockID:   b.ID,
			Seq:       b.Seq,
			Weeks:     b.Weeks,
			StartDate: start,
			EndDate:   end,
		})
		start = end.AddDate(0, 0, 1)
	}

	if !found {
		return nil, fmt.Errorf("block %d not found in cascade", targetSeq)
	}
	return shifts, nil
}
