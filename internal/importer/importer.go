// Package importer loads a legacy SQLite export from the original training
// app into Postgres. The legacy schema used the V1 single-word result
// columns; values are translated through the logical field set so they land
// in the current column layout.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	Athletes int
	Blocks   int
	Sessions int
	Results  int
	Skipped  int
}

// Importer reads a legacy export file and inserts its data into the DB.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db *storage.DB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun}
}

// Import reads the export at path and inserts everything it contains.
// Legacy row IDs are preserved so re-running the import skips rows that are
// already present. Returns the athlete IDs that received data, so the caller
// can recompute their ledgers.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, []uuid.UUID, error) {
	export, err := ReadExport(path)
	if err != nil {
		return &imp.stats, nil, fmt.Errorf("reading export: %w", err)
	}

	imp.log.Info("export loaded",
		"athletes", len(export.Athletes),
		"blocks", len(export.Blocks),
		"sessions", len(export.Sessions),
		"results", len(export.Results),
	)

	if imp.dryRun {
		imp.stats = Stats{
			Athletes: len(export.Athletes),
			Blocks:   len(export.Blocks),
			Sessions: len(export.Sessions),
			Results:  len(export.Results),
		}
		return &imp.stats, nil, nil
	}

	touched := make(map[uuid.UUID]bool)

	for _, a := range export.Athletes {
		inserted, err := imp.insertAthlete(ctx, a)
		if err != nil {
			return &imp.stats, nil, fmt.Errorf("importing athlete %s: %w", a.ID, err)
		}
		if inserted {
			imp.stats.Athletes++
		} else {
			imp.stats.Skipped++
		}
	}

	for _, b := range export.Blocks {
		inserted, err := imp.insertBlock(ctx, b)
		if err != nil {
			return &imp.stats, nil, fmt.Errorf("importing block %s: %w", b.ID, err)
		}
		if inserted {
			imp.stats.Blocks++
		} else {
			imp.stats.Skipped++
		}
	}

	for _, s := range export.Sessions {
		inserted, err := imp.insertSession(ctx, s)
		if err != nil {
			return &imp.stats, nil, fmt.Errorf("importing session %s: %w", s.ID, err)
		}
		if inserted {
			imp.stats.Sessions++
		} else {
			imp.stats.Skipped++
		}
	}

	for _, r := range export.Results {
		inserted, err := imp.insertResult(ctx, r)
		if err != nil {
			return &imp.stats, nil, fmt.Errorf("importing result %s: %w", r.ID, err)
		}
		if inserted {
			imp.stats.Results++
			touched[r.AthleteID] = true
		} else {
			imp.stats.Skipped++
		}
	}

	athletes := make([]uuid.UUID, 0, len(touched))
	for id := range touched {
		athletes = append(athletes, id)
	}
	return &imp.stats, athletes, nil
}

func (imp *Importer) insertAthlete(ctx context.Context, a models.AthleteRow) (bool, error) {
	tag, err := imp.db.Pool.Exec(ctx,
		`INSERT INTO athletes (id, name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.Name, a.Role, a.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (imp *Importer) insertBlock(ctx context.Context, b models.BlockRow) (bool, error) {
	tag, err := imp.db.Pool.Exec(ctx,
		`INSERT INTO blocks (id, athlete_id, seq, start_date, end_date, weeks, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		b.ID, b.AthleteID, b.Seq, b.StartDate, b.EndDate, b.Weeks, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (imp *Importer) insertSession(ctx context.Context, s models.SessionRow) (bool, error) {
	tag, err := imp.db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, block_id, athlete_id, week, number, type, release_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.BlockID, s.AthleteID, s.Week, s.Number, s.Type, s.ReleaseDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (imp *Importer) insertResult(ctx context.Context, r models.ResultRow) (bool, error) {
	now := time.Now().UTC()
	names := []string{"id", "session_id", "athlete_id", "completed_at", "created_at", "updated_at"}
	args := []any{r.ID, r.SessionID, r.AthleteID, r.CompletedAt, now, now}
	for _, col := range storage.ResultColumns(program.SchemaV2()) {
		names = append(names, col)
		args = append(args, r.Value(col))
	}

	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		`INSERT INTO results (%s) VALUES (%s) ON CONFLICT (session_id) DO NOTHING`,
		strings.Join(names, ", "), strings.Join(placeholders, ","))

	tag, err := imp.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// translateValues remaps a legacy record's columns through the logical field
// set into the current schema's column names.
func translateValues(legacy map[string]*float64) map[string]*float64 {
	v1 := program.SchemaV1()
	v2 := program.SchemaV2()

	out := make(map[string]*float64)
	for field, oldCol := range v1.Columns {
		if val := legacy[oldCol]; val != nil {
			out[v2.Columns[field]] = val
		}
	}
	return out
}
