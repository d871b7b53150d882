package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
)

// BlockView is a block with its sessions and their resolved states.
type BlockView struct {
	ID        uuid.UUID     `json:"id"`
	Seq       int           `json:"seq"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Weeks     int           `json:"weeks"`
	Current   bool          `json:"current"`
	Sessions  []SessionView `json:"sessions"`
}

// SessionView is one session with its state at the requested time.
type SessionView struct {
	ID          uuid.UUID            `json:"id"`
	Week        int                  `json:"week"`
	Number      int                  `json:"number"`
	Type        models.SessionType   `json:"type"`
	ReleaseDate time.Time            `json:"release_date"`
	State       program.SessionState `json:"state"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Draft       bool                 `json:"draft,omitempty"`
}

// ScheduleView is an athlete's full schedule.
type ScheduleView struct {
	AthleteID uuid.UUID   `json:"athlete_id"`
	Blocks    []BlockView `json:"blocks"`
}

// Enroll creates an athlete's first training block starting on the given
// date. Duration 0 uses the configured default.
func (s *Service) Enroll(ctx context.Context, athleteID uuid.UUID, start time.Time, weeks int) (*models.BlockRow, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}
	if weeks == 0 {
		weeks = s.cfg.DefaultBlockWeeks
	}

	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		return nil, fmt.Errorf("athlete already enrolled: %w", program.ErrScheduleConflict)
	}

	plan, err := program.BuildBlock(s.cfg, 1, start, weeks)
	if err != nil {
		return nil, err
	}
	return s.store.InsertBlockPlan(ctx, athleteID, plan)
}

// AdvanceBlock appends the next block to an athlete's schedule, starting the
// day after the last block ends. Duration 0 uses the configured default.
func (s *Service) AdvanceBlock(ctx context.Context, athleteID uuid.UUID, weeks int) (*models.BlockRow, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}
	if weeks == 0 {
		weeks = s.cfg.DefaultBlockWeeks
	}

	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("athlete %s has no blocks to advance from", athleteID)
	}

	last := blocks[len(blocks)-1]
	start := last.EndDate.AddDate(0, 0, 1)
	plan, err := program.BuildBlock(s.cfg, last.Seq+1, start, weeks)
	if err != nil {
		return nil, err
	}
	return s.store.InsertBlockPlan(ctx, athleteID, plan)
}

// GetSchedule returns the athlete's blocks and sessions with every session's
// state resolved at the given time.
func (s *Service) GetSchedule(ctx context.Context, athleteID uuid.UUID, now time.Time) (*ScheduleView, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}

	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	results, err := s.store.GetResultsByAthlete(ctx, s.schema, athleteID)
	if err != nil {
		return nil, err
	}

	byBlock := make(map[uuid.UUID][]SessionView)
	for _, sess := range sessions {
		res := results[sess.ID]
		view := SessionView{
			ID:          sess.ID,
			Week:        sess.Week,
			Number:      sess.Number,
			Type:        sess.Type,
			ReleaseDate: sess.ReleaseDate,
			State:       program.ResolveSessionState(s.schema, sess, res, now),
		}
		if res != nil {
			view.CompletedAt = res.CompletedAt
			view.Draft = res.CompletedAt == nil
		}
		byBlock[sess.BlockID] = append(byBlock[sess.BlockID], view)
	}

	out := &ScheduleView{AthleteID: athleteID}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, BlockView{
			ID:        b.ID,
			Seq:       b.Seq,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
			Weeks:     b.Weeks,
			Current:   program.BlockCurrent(b, now),
			Sessions:  byBlock[b.ID],
		})
	}
	return out, nil
}

// DeleteBlock discards a scheduled block that has not started yet. Only the
// trailing block may be removed, so sequence numbers stay contiguous.
func (s *Service) DeleteBlock(ctx context.Context, athleteID uuid.UUID, seq int, now time.Time) error {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return err
	}

	block, err := s.store.GetBlockBySeq(ctx, athleteID, seq)
	if err != nil {
		return err
	}
	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return err
	}
	if last := blocks[len(blocks)-1]; last.Seq != seq {
		return fmt.Errorf("block %d is not the last block: %w", seq, program.ErrScheduleConflict)
	}
	if !now.Before(block.StartDate) {
		return fmt.Errorf("block %d already started: %w", seq, program.ErrScheduleConflict)
	}

	return s.store.DeleteBlock(ctx, athleteID, block.ID)
}

// RescheduleFrom moves the block with the given sequence number to a new
// start date and cascades every later block behind it, preserving the
// no-overlap invariant. Release dates feed the consistency score, so the
// stat snapshot is recomputed as part of the move.
func (s *Service) RescheduleFrom(ctx context.Context, athleteID uuid.UUID, seq int, newStart, now time.Time) error {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return err
	}
	if _, err := s.store.GetBlockBySeq(ctx, athleteID, seq); err != nil {
		return err
	}

	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return err
	}
	shifts, err := program.CascadeFrom(blocks, seq, newStart)
	if err != nil {
		return err
	}
	if err := s.store.ApplyShifts(ctx, s.cfg, athleteID, shifts); err != nil {
		return err
	}

	if err := s.Recompute(ctx, athleteID, now); err != nil {
		return fmt.Errorf("reschedule applied but recompute failed: %w", err)
	}
	return nil
}
