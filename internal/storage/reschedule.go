package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
)

// ApplyShifts moves a run of blocks to new dates in a single transaction.
// Every session of every shifted block gets its release date recomputed from
// the block's new start, so the drip-feed spacing inside each week survives
// the move unchanged.
func (db *DB) ApplyShifts(ctx context.Context, cfg config.ProgramConfig, athleteID uuid.UUID, shifts []program.BlockShift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, shift := range shifts {
		tag, err := tx.Exec(ctx,
			`UPDATE blocks SET start_date = $1, end_date = $2
			 WHERE id = $3 AND athlete_id = $4`,
			shift.StartDate, shift.EndDate, shift.BlockID, athleteID)
		if err != nil {
			return fmt.Errorf("shifting block %d: %w", shift.Seq, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("shifting block %d: %w", shift.Seq, ErrNotFound)
		}

		rows, err := tx.Query(ctx,
			`SELECT id, week, number FROM sessions WHERE block_id = $1`, shift.BlockID)
		if err != nil {
			return fmt.Errorf("listing sessions of block %d: %w", shift.Seq, err)
		}

		type sessionKey struct {
			id           uuid.UUID
			week, number int
		}
		var keys []sessionKey
		for rows.Next() {
			var k sessionKey
			if err := rows.Scan(&k.id, &k.week, &k.number); err != nil {
				rows.Close()
				return fmt.Errorf("scanning session of block %d: %w", shift.Seq, err)
			}
			keys = append(keys, k)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("listing sessions of block %d: %w", shift.Seq, err)
		}

		for _, k := range keys {
			release := program.ReleaseDate(cfg, shift.StartDate, k.week, k.number)
			if _, err := tx.Exec(ctx,
				`UPDATE sessions SET release_date = $1 WHERE id = $2`, release, k.id); err != nil {
				return fmt.Errorf("updating session release: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing reschedule: %w", err)
	}
	return nil
}

// DeleteBlock removes a block and its sessions and results. Used when a
// staff member discards a drafted block before it is confirmed.
func (db *DB) DeleteBlock(ctx context.Context, athleteID, blockID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM blocks WHERE id = $1 AND athlete_id = $2`, blockID, athleteID)
	if err != nil {
		return fmt.Errorf("deleting block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %s: %w", blockID, ErrNotFound)
	}
	return nil
}
