package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertBlockPlan persists a generated block and all of its sessions in one
// transaction, and returns the stored block row.
func (db *DB) InsertBlockPlan(ctx context.Context, athleteID uuid.UUID, plan program.BlockPlan) (*models.BlockRow, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning block insert: %w", err)
	}
	defer tx.Rollback(ctx)

	block := models.BlockRow{
		ID:        uuid.New(),
		AthleteID: athleteID,
		Seq:       plan.Seq,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Weeks:     plan.Weeks,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO blocks (id, athlete_id, seq, start_date, end_date, weeks, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		block.ID, block.AthleteID, block.Seq, block.StartDate, block.EndDate, block.Weeks, block.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting block: %w", err)
	}

	for _, sp := range plan.Sessions {
		_, err = tx.Exec(ctx,
			`INSERT INTO sessions (id, block_id, athlete_id, week, number, type, release_date)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.New(), block.ID, athleteID, sp.Week, sp.Number, sp.Type, sp.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("inserting session (week %d #%d): %w", sp.Week, sp.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing block insert: %w", err)
	}
	return &block, nil
}

// ListBlocks returns an athlete's blocks ordered by sequence number.
func (db *DB) ListBlocks(ctx context.Context, athleteID uuid.UUID) ([]models.BlockRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, seq, start_date, end_date, weeks, created_at
		 FROM blocks WHERE athlete_id = $1 ORDER BY seq`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var result []models.BlockRow
	for rows.Next() {
		var b models.BlockRow
		if err := rows.Scan(&b.ID, &b.AthleteID, &b.Seq, &b.StartDate, &b.EndDate, &b.Weeks, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// GetBlockBySeq retrieves one of an athlete's blocks by sequence number.
func (db *DB) GetBlockBySeq(ctx context.Context, athleteID uuid.UUID, seq int) (*models.BlockRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, athlete_id, seq, start_date, end_date, weeks, created_at
		 FROM blocks WHERE athlete_id = $1 AND seq = $2`, athleteID, seq)

	var b models.BlockRow
	err := row.Scan(&b.ID, &b.AthleteID, &b.Seq, &b.StartDate, &b.EndDate, &b.Weeks, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("block %d for athlete %s: %w", seq, athleteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying block: %w", err)
	}
	return &b, nil
}

// ListSessions returns all of an athlete's sessions ordered by block, week
// and number.
func (db *DB) ListSessions(ctx context.Context, athleteID uuid.UUID) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.block_id, s.athlete_id, s.week, s.number, s.type, s.release_date
		 FROM sessions s JOIN blocks b ON b.id = s.block_id
		 WHERE s.athlete_id = $1
		 ORDER BY b.seq, s.week, s.number`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// GetSession retrieves a single session scoped to an athlete.
func (db *DB) GetSession(ctx context.Context, athleteID, sessionID uuid.UUID) (*models.SessionRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, block_id, athlete_id, week, number, type, release_date
		 FROM sessions WHERE id = $1 AND athlete_id = $2`, sessionID, athleteID)

	var s models.SessionRow
	err := row.Scan(&s.ID, &s.BlockID, &s.AthleteID, &s.Week, &s.Number, &s.Type, &s.ReleaseDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s for athlete %s: %w", sessionID, athleteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

func scanSessionRows(rows pgx.Rows) ([]models.SessionRow, error) {
	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.BlockID, &s.AthleteID, &s.Week, &s.Number, &s.Type, &s.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
