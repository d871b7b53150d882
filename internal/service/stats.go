package service

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/google/uuid"
)

// StatsView is an athlete's progression dashboard. XP and level come from
// the stored snapshot; consistency is computed fresh at the requested time
// because sessions keep releasing between recomputes.
type StatsView struct {
	AthleteID   uuid.UUID        `json:"athlete_id"`
	TotalXP     int              `json:"total_xp"`
	Level       int              `json:"level"`
	Progress    program.Progress `json:"progress"`
	Consistency float64          `json:"consistency"`
	Released    int              `json:"released_sessions"`
	Completed   int              `json:"completed_sessions"`
}

// Recompute regenerates the athlete's full XP ledger and stat snapshot from
// their session data. Safe to call any number of times; unchanged input
// produces an identical ledger.
func (s *Service) Recompute(ctx context.Context, athleteID uuid.UUID, now time.Time) error {
	blocks, err := s.store.ListBlocks(ctx, athleteID)
	if err != nil {
		return err
	}
	sessions, err := s.store.ListSessions(ctx, athleteID)
	if err != nil {
		return err
	}
	results, err := s.store.GetResultsByAthlete(ctx, s.schema, athleteID)
	if err != nil {
		return err
	}

	entries := program.BuildLedger(s.cfg, blocks, sessions, results)
	rows := make([]models.LedgerEntryRow, len(entries))
	for i, e := range entries {
		rows[i] = models.LedgerEntryRow{
			ID:        uuid.New(),
			AthleteID: athleteID,
			Amount:    e.Amount,
			Source:    e.Source,
			SessionID: e.SessionID,
			AwardedAt: e.AwardedAt,
		}
	}

	total := program.LedgerTotal(entries)
	pct, _, completed := program.Consistency(s.schema, sessions, results, now, s.cfg.ConsistencyPrecision)
	snapshot := models.SnapshotRow{
		AthleteID:   athleteID,
		TotalXP:     total,
		Level:       program.LevelOf(s.cfg.LevelThresholds, total),
		Consistency: pct,
		Completed:   completed,
		UpdatedAt:   now,
	}

	if err := s.store.ReplaceLedger(ctx, athleteID, rows, snapshot); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("leaderboard cache invalidation failed", "error", err)
		}
	}
	return nil
}

// RecomputeAll recomputes every trainee's ledger. One athlete failing does
// not stop the sweep; failures are logged and counted.
func (s *Service) RecomputeAll(ctx context.Context, now time.Time) (succeeded, failed int) {
	trainees, err := s.store.ListAthletes(ctx, models.RoleTrainee)
	if err != nil {
		s.log.Error("listing trainees for recompute", "error", err)
		return 0, 0
	}

	for _, t := range trainees {
		if err := s.Recompute(ctx, t.ID, now); err != nil {
			s.log.Error("recompute failed", "athlete", t.ID, "error", err)
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed
}

// GetStats returns the athlete's XP, level, progress toward the next level
// and consistency. An athlete with no snapshot yet gets zero stats, not an
// error.
func (s *Service) GetStats(ctx context.Context, athleteID uuid.UUID, now time.Time) (*StatsView, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}

	total := 0
	snap, err := s.store.GetSnapshot(ctx, athleteID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if snap != nil {
		total = snap.TotalXP
	}

	sessions, err := s.store.ListSessions(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	results, err := s.store.GetResultsByAthlete(ctx, s.schema, athleteID)
	if err != nil {
		return nil, err
	}
	pct, released, completed := program.Consistency(s.schema, sessions, results, now, s.cfg.ConsistencyPrecision)

	return &StatsView{
		AthleteID:   athleteID,
		TotalXP:     total,
		Level:       program.LevelOf(s.cfg.LevelThresholds, total),
		Progress:    program.ProgressToNext(s.cfg.LevelThresholds, total),
		Consistency: pct,
		Released:    released,
		Completed:   completed,
	}, nil
}

// GetLedger returns the athlete's XP ledger entries in award order.
func (s *Service) GetLedger(ctx context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}
	return s.store.ListLedger(ctx, athleteID)
}
