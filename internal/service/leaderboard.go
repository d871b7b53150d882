package service

import (
	"context"
	"fmt"

	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
)

// Leaderboard kinds.
const (
	LeaderboardStrength    = "strength"
	LeaderboardConsistency = "consistency"
)

// Leaderboard holds ranked rows for one leaderboard kind. Exactly one of the
// row slices is populated.
type Leaderboard struct {
	Kind        string                   `json:"kind"`
	Strength    []program.StrengthRow    `json:"strength,omitempty"`
	Consistency []program.ConsistencyRow `json:"consistency,omitempty"`
}

// GetLeaderboard assembles a leaderboard over every trainee, with the
// viewer's own row flagged. The unranked base rows are cached when a cache
// is configured; ranking and viewer flagging always run per request since
// they depend on who is asking.
func (s *Service) GetLeaderboard(ctx context.Context, kind string, viewer uuid.UUID) (*Leaderboard, error) {
	switch kind {
	case LeaderboardStrength:
		rows, err := s.strengthRows(ctx)
		if err != nil {
			return nil, err
		}
		return &Leaderboard{Kind: kind, Strength: program.RankStrength(rows, viewer)}, nil
	case LeaderboardConsistency:
		rows, err := s.consistencyRows(ctx)
		if err != nil {
			return nil, err
		}
		return &Leaderboard{Kind: kind, Consistency: program.RankConsistency(rows, viewer)}, nil
	default:
		return nil, fmt.Errorf("unknown leaderboard kind %q", kind)
	}
}

func (s *Service) strengthRows(ctx context.Context) ([]program.StrengthRow, error) {
	var rows []program.StrengthRow
	if s.cacheGet(ctx, LeaderboardStrength, &rows) {
		return rows, nil
	}

	snaps, err := s.store.ListTraineeSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range snaps {
		rows = append(rows, program.StrengthRow{
			AthleteID: t.AthleteID,
			Name:      t.Name,
			Level:     t.Snapshot.Level,
			XP:        t.Snapshot.TotalXP,
		})
	}
	s.cacheSet(ctx, LeaderboardStrength, rows)
	return rows, nil
}

func (s *Service) consistencyRows(ctx context.Context) ([]program.ConsistencyRow, error) {
	var rows []program.ConsistencyRow
	if s.cacheGet(ctx, LeaderboardConsistency, &rows) {
		return rows, nil
	}

	snaps, err := s.store.ListTraineeSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range snaps {
		rows = append(rows, program.ConsistencyRow{
			AthleteID:   t.AthleteID,
			Name:        t.Name,
			Consistency: t.Snapshot.Consistency,
			Completed:   t.Snapshot.Completed,
		})
	}
	s.cacheSet(ctx, LeaderboardConsistency, rows)
	return rows, nil
}

// cacheGet reads cached rows; a cache miss or error just means a database
// read. Cache failures never fail the request.
func (s *Service) cacheGet(ctx context.Context, kind string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, kind, dest)
	if err != nil {
		s.log.Warn("leaderboard cache read failed", "kind", kind, "error", err)
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, kind string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, kind, value); err != nil {
		s.log.Warn("leaderboard cache write failed", "kind", kind, "error", err)
	}
}
