package importer

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Export holds everything read from a legacy export file.
type Export struct {
	Athletes []models.AthleteRow
	Blocks   []models.BlockRow
	Sessions []models.SessionRow
	Results  []models.ResultRow
}

// ReadExport opens a legacy SQLite export and reads all of its tables.
// Result values come back already translated to the current column layout.
func ReadExport(path string) (*Export, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("export file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer db.Close()

	export := &Export{}
	if export.Athletes, err = readAthletes(db); err != nil {
		return nil, err
	}
	if export.Blocks, err = readBlocks(db); err != nil {
		return nil, err
	}
	if export.Sessions, err = readSessions(db); err != nil {
		return nil, err
	}
	if export.Results, err = readResults(db); err != nil {
		return nil, err
	}
	return export, nil
}

func readAthletes(db *sql.DB) ([]models.AthleteRow, error) {
	rows, err := db.Query(`SELECT id, name, role, created_at FROM athletes`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var out []models.AthleteRow
	for rows.Next() {
		var (
			a             models.AthleteRow
			id, createdAt string
		)
		if err := rows.Scan(&id, &a.Name, &a.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("athlete id %q: %w", id, err)
		}
		if a.CreatedAt, err = parseLegacyTime(createdAt); err != nil {
			return nil, fmt.Errorf("athlete %s created_at: %w", id, err)
		}
		a.UpdatedAt = a.CreatedAt
		out = append(out, a)
	}
	return out, rows.Err()
}

func readBlocks(db *sql.DB) ([]models.BlockRow, error) {
	rows, err := db.Query(`SELECT id, athlete_id, seq, start_date, end_date, weeks FROM blocks`)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var out []models.BlockRow
	for rows.Next() {
		var (
			b                  models.BlockRow
			id, athleteID      string
			startDate, endDate string
		)
		if err := rows.Scan(&id, &athleteID, &b.Seq, &startDate, &endDate, &b.Weeks); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("block id %q: %w", id, err)
		}
		if b.AthleteID, err = uuid.Parse(athleteID); err != nil {
			return nil, fmt.Errorf("block %s athlete id: %w", id, err)
		}
		if b.StartDate, err = parseLegacyDate(startDate); err != nil {
			return nil, fmt.Errorf("block %s start_date: %w", id, err)
		}
		if b.EndDate, err = parseLegacyDate(endDate); err != nil {
			return nil, fmt.Errorf("block %s end_date: %w", id, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func readSessions(db *sql.DB) ([]models.SessionRow, error) {
	rows, err := db.Query(`SELECT id, block_id, athlete_id, week, number, type, release_date FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionRow
	for rows.Next() {
		var (
			s                           models.SessionRow
			id, blockID, athleteID, rel string
		)
		if err := rows.Scan(&id, &blockID, &athleteID, &s.Week, &s.Number, &s.Type, &rel); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session id %q: %w", id, err)
		}
		if s.BlockID, err = uuid.Parse(blockID); err != nil {
			return nil, fmt.Errorf("session %s block id: %w", id, err)
		}
		if s.AthleteID, err = uuid.Parse(athleteID); err != nil {
			return nil, fmt.Errorf("session %s athlete id: %w", id, err)
		}
		if s.ReleaseDate, err = parseLegacyDate(rel); err != nil {
			return nil, fmt.Errorf("session %s release_date: %w", id, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func readResults(db *sql.DB) ([]models.ResultRow, error) {
	rows, err := db.Query(
		`SELECT id, session_id, athlete_id,
		        warmup, strength, conditioning, squat, bench, deadlift, jump,
		        completed_at
		 FROM results`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	legacyCols := []string{"warmup", "strength", "conditioning", "squat", "bench", "deadlift", "jump"}

	var out []models.ResultRow
	for rows.Next() {
		var (
			r                        models.ResultRow
			id, sessionID, athleteID string
			completedAt              sql.NullString
			vals                     = make([]*float64, len(legacyCols))
		)
		dest := []any{&id, &sessionID, &athleteID}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		dest = append(dest, &completedAt)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("result id %q: %w", id, err)
		}
		if r.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("result %s session id: %w", id, err)
		}
		if r.AthleteID, err = uuid.Parse(athleteID); err != nil {
			return nil, fmt.Errorf("result %s athlete id: %w", id, err)
		}
		if completedAt.Valid {
			t, err := parseLegacyTime(completedAt.String)
			if err != nil {
				return nil, fmt.Errorf("result %s completed_at: %w", id, err)
			}
			r.CompletedAt = &t
		}

		legacy := make(map[string]*float64, len(legacyCols))
		for i, col := range legacyCols {
			legacy[col] = vals[i]
		}
		r.Values = translateValues(legacy)
		out = append(out, r)
	}
	return out, rows.Err()
}

// parseLegacyDate parses the date-only format the old app exported.
func parseLegacyDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseLegacyTime parses legacy timestamps, which appear both with and
// without a time component.
func parseLegacyTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return parseLegacyDate(s)
}
