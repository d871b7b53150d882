package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResultColumns returns the value columns of the results table in a stable
// order, resolved through the logical-field schema. Every SQL statement
// touching result values (here and in the importer) builds its column list
// through this function, so a storage rename is a one-line schema change
// instead of a hunt across the codebase.
func ResultColumns(schema program.ResultSchema) []string {
	var cols []string
	for _, t := range []models.SessionType{models.SessionTraining, models.SessionTesting} {
		for _, f := range program.AllFields(t) {
			if col, ok := schema.Column(f); ok {
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// UpsertResult writes a result record for a session, replacing any previous
// values. CompletedAt nil stores a draft.
func (db *DB) UpsertResult(ctx context.Context, schema program.ResultSchema, row models.ResultRow) error {
	cols := ResultColumns(schema)

	names := []string{"id", "session_id", "athlete_id", "completed_at", "created_at", "updated_at"}
	args := []any{row.ID, row.SessionID, row.AthleteID, row.CompletedAt, row.CreatedAt, row.UpdatedAt}
	for _, col := range cols {
		names = append(names, col)
		args = append(args, row.Values[col])
	}

	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updates []string
	for _, col := range append([]string{"completed_at", "updated_at"}, cols...) {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	query := fmt.Sprintf(
		`INSERT INTO results (%s) VALUES (%s)
		 ON CONFLICT (session_id) DO UPDATE SET %s`,
		strings.Join(names, ", "), strings.Join(placeholders, ","), strings.Join(updates, ", "))

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting result: %w", err)
	}
	return nil
}

// GetResultBySession retrieves the result for one session, or nil when the
// athlete has not recorded anything yet — absence is a normal state here,
// not an error.
func (db *DB) GetResultBySession(ctx context.Context, schema program.ResultSchema, athleteID, sessionID uuid.UUID) (*models.ResultRow, error) {
	cols := ResultColumns(schema)
	query := fmt.Sprintf(
		`SELECT id, session_id, athlete_id, completed_at, created_at, updated_at, %s
		 FROM results WHERE athlete_id = $1 AND session_id = $2`,
		strings.Join(cols, ", "))

	row := db.Pool.QueryRow(ctx, query, athleteID, sessionID)
	res, err := scanResult(row, cols)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying result: %w", err)
	}
	return res, nil
}

// GetResultsByAthlete returns all of an athlete's results keyed by session ID.
func (db *DB) GetResultsByAthlete(ctx context.Context, schema program.ResultSchema, athleteID uuid.UUID) (map[uuid.UUID]*models.ResultRow, error) {
	cols := ResultColumns(schema)
	query := fmt.Sprintf(
		`SELECT id, session_id, athlete_id, completed_at, created_at, updated_at, %s
		 FROM results WHERE athlete_id = $1`,
		strings.Join(cols, ", "))

	rows, err := db.Pool.Query(ctx, query, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*models.ResultRow)
	for rows.Next() {
		res, err := scanResult(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		result[res.SessionID] = res
	}
	return result, rows.Err()
}

func scanResult(row pgx.Row, cols []string) (*models.ResultRow, error) {
	var (
		res         models.ResultRow
		completedAt *time.Time
		vals        = make([]*float64, len(cols))
	)

	dest := []any{&res.ID, &res.SessionID, &res.AthleteID, &completedAt, &res.CreatedAt, &res.UpdatedAt}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	res.CompletedAt = completedAt
	res.Values = make(map[string]*float64, len(cols))
	for i, col := range cols {
		res.Values[col] = vals[i]
	}
	return &res, nil
}
