package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerSource tags an XP ledger entry with the event that produced it.
// The set is closed: recomputation only ever emits these five.
type LedgerSource string

const (
	SourceSessionCompletion LedgerSource = "session_completion"
	SourceWeeklyBonus       LedgerSource = "weekly_bonus"
	SourceTestingBonus      LedgerSource = "testing_bonus"
	SourcePeriodBonus       LedgerSource = "period_bonus"
	SourceConsistencyBonus  LedgerSource = "consistency_bonus"
)

// LedgerEntryRow is an immutable row of the xp_ledger table. Entries are
// never edited in place; recomputation deletes and regenerates an athlete's
// whole ledger.
type LedgerEntryRow struct {
	ID        uuid.UUID
	AthleteID uuid.UUID
	Amount    int
	Source    LedgerSource
	SessionID *uuid.UUID
	AwardedAt time.Time
}

// SnapshotRow is a row of the stat_snapshots table: a rebuildable cache of
// the ledger total and derived stats, one per athlete. It is refreshed by
// the same code path every time and never written directly by callers.
type SnapshotRow struct {
	AthleteID   uuid.UUID
	TotalXP     int
	Level       int
	Consistency float64
	Completed   int
	UpdatedAt   time.Time
}
