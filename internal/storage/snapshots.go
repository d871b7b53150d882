package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetSnapshot retrieves an athlete's stat snapshot.
func (db *DB) GetSnapshot(ctx context.Context, athleteID uuid.UUID) (*models.SnapshotRow, error) {
	var s models.SnapshotRow
	err := db.Pool.QueryRow(ctx,
		`SELECT athlete_id, total_xp, level, consistency, completed, updated_at
		 FROM stat_snapshots WHERE athlete_id = $1`, athleteID).
		Scan(&s.AthleteID, &s.TotalXP, &s.Level, &s.Consistency, &s.Completed, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for athlete %s: %w", athleteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	return &s, nil
}

// TraineeSnapshot pairs a snapshot with the athlete's display name for
// leaderboard assembly.
type TraineeSnapshot struct {
	AthleteID uuid.UUID
	Name      string
	Snapshot  models.SnapshotRow
}

// ListTraineeSnapshots returns snapshots for every trainee, including
// trainees who have never earned XP, with zero-valued stats for those.
func (db *DB) ListTraineeSnapshots(ctx context.Context) ([]TraineeSnapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT a.id, a.name,
		        COALESCE(s.total_xp, 0), COALESCE(s.level, 1),
		        COALESCE(s.consistency, 0), COALESCE(s.completed, 0)
		 FROM athletes a
		 LEFT JOIN stat_snapshots s ON s.athlete_id = a.id
		 WHERE a.role = $1
		 ORDER BY a.name`, models.RoleTrainee)
	if err != nil {
		return nil, fmt.Errorf("querying trainee snapshots: %w", err)
	}
	defer rows.Close()

	var out []TraineeSnapshot
	for rows.Next() {
		var t TraineeSnapshot
		err := rows.Scan(&t.AthleteID, &t.Name,
			&t.Snapshot.TotalXP, &t.Snapshot.Level,
			&t.Snapshot.Consistency, &t.Snapshot.Completed)
		if err != nil {
			return nil, fmt.Errorf("scanning trainee snapshot: %w", err)
		}
		t.Snapshot.AthleteID = t.AthleteID
		out = append(out, t)
	}
	return out, rows.Err()
}
