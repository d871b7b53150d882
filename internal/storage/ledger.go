package storage

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

// advisoryKey maps an athlete ID onto the 64-bit keyspace of Postgres
// advisory locks.
func advisoryKey(athleteID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(athleteID[:8]))
}

// ReplaceLedger atomically replaces an athlete's full XP ledger and stat
// snapshot. The transaction takes a per-athlete advisory lock first; when a
// concurrent recompute already holds it the call fails with
// ErrConcurrencyConflict and the caller may retry.
func (db *DB) ReplaceLedger(ctx context.Context, athleteID uuid.UUID, entries []models.LedgerEntryRow, snapshot models.SnapshotRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked bool
	if err := tx.QueryRow(ctx,
		`SELECT pg_try_advisory_xact_lock($1)`, advisoryKey(athleteID)).Scan(&locked); err != nil {
		return fmt.Errorf("acquiring ledger lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("ledger recompute for athlete %s: %w", athleteID, ErrConcurrencyConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM xp_ledger WHERE athlete_id = $1`, athleteID); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO xp_ledger (id, athlete_id, amount, source, session_id, awarded_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.AthleteID, e.Amount, e.Source, e.SessionID, e.AwardedAt)
		if err != nil {
			return fmt.Errorf("inserting ledger entry: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO stat_snapshots (athlete_id, total_xp, level, consistency, completed, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (athlete_id) DO UPDATE SET
		   total_xp = EXCLUDED.total_xp,
		   level = EXCLUDED.level,
		   consistency = EXCLUDED.consistency,
		   completed = EXCLUDED.completed,
		   updated_at = EXCLUDED.updated_at`,
		snapshot.AthleteID, snapshot.TotalXP, snapshot.Level, snapshot.Consistency, snapshot.Completed, snapshot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing ledger replace: %w", err)
	}
	return nil
}

// ListLedger returns an athlete's ledger entries in award order.
func (db *DB) ListLedger(ctx context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, amount, source, session_id, awarded_at
		 FROM xp_ledger WHERE athlete_id = $1
		 ORDER BY awarded_at, source, id`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntryRow
	for rows.Next() {
		var e models.LedgerEntryRow
		if err := rows.Scan(&e.ID, &e.AthleteID, &e.Amount, &e.Source, &e.SessionID, &e.AwardedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
