package models

import (
	"time"

	"github.com/google/uuid"
)

// ResultRow is a row of the results table: at most one per session. Values is
// keyed by storage column name; nil entries are fields the athlete has not
// filled in yet. A row without CompletedAt is a draft — completeness is a
// computed predicate, never a stored flag.
type ResultRow struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	AthleteID   uuid.UUID
	Values      map[string]*float64
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Value returns the stored value for a column, or nil when absent.
func (r *ResultRow) Value(column string) *float64 {
	if r == nil || r.Values == nil {
		return nil
	}
	return r.Values[column]
}
