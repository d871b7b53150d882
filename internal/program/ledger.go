package program

import (
	"sort"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

// Entry is one planned XP award. BuildLedger emits entries; the storage
// layer persists them inside the recompute transaction.
type Entry struct {
	Amount    int
	Source    models.LedgerSource
	SessionID *uuid.UUID
	AwardedAt time.Time
}

// LedgerTotal sums entry amounts.
func LedgerTotal(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

// periodWeeks is the size of the bonus window within a block.
const periodWeeks = 4

type completedSession struct {
	sess models.SessionRow
	at   time.Time
	seq  int // owning block's sequence number, for deterministic ordering
}

// BuildLedger regenerates an athlete's full XP ledger from their current
// session and result data. It is a pure function: every timestamp in the
// output derives from completion timestamps, so recomputing over unchanged
// input yields byte-identical entries — the idempotence the ledger design
// depends on.
//
// Entry order: session-completion entries in completion order (a testing
// session's bonus entry rides directly behind its completion entry), then
// weekly bonuses, then four-week period bonuses, then perfect-block bonuses.
func BuildLedger(cfg config.ProgramConfig, blocks []models.BlockRow, sessions []models.SessionRow, results map[uuid.UUID]*models.ResultRow) []Entry {
	schema := SchemaForVersion(cfg.ResultSchemaVersion)

	seqByBlock := make(map[uuid.UUID]int, len(blocks))
	for _, b := range blocks {
		seqByBlock[b.ID] = b.Seq
	}

	// Workable sessions grouped for the bonus passes, completed ones
	// collected for the per-session pass.
	var done []completedSession
	completed := make(map[uuid.UUID]bool, len(sessions))
	byWeek := make(map[uuid.UUID]map[int][]models.SessionRow, len(blocks))

	for _, s := range sessions {
		if !s.Type.Workable() {
			continue
		}
		if byWeek[s.BlockID] == nil {
			byWeek[s.BlockID] = make(map[int][]models.SessionRow)
		}
		byWeek[s.BlockID][s.Week] = append(byWeek[s.BlockID][s.Week], s)

		res := results[s.ID]
		if res == nil || res.CompletedAt == nil || !Complete(schema, s.Type, res) {
			continue
		}
		completed[s.ID] = true
		done = append(done, completedSession{sess: s, at: res.CompletedAt.UTC(), seq: seqByBlock[s.BlockID]})
	}

	sort.Slice(done, func(i, j int) bool {
		a, b := done[i], done[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		if a.seq != b.seq {
			return a.seq < b.seq
		}
		if a.sess.Week != b.sess.Week {
			return a.sess.Week < b.sess.Week
		}
		return a.sess.Number < b.sess.Number
	})

	var entries []Entry
	for _, c := range done {
		id := c.sess.ID
		entries = append(entries, Entry{
			Amount:    cfg.Awards.SessionCompletion,
			Source:    models.SourceSessionCompletion,
			SessionID: &id,
			AwardedAt: c.at,
		})
		if c.sess.Type == models.SessionTesting {
			entries = append(entries, Entry{
				Amount:    cfg.Awards.TestingBonus,
				Source:    models.SourceTestingBonus,
				SessionID: &id,
				AwardedAt: c.at,
			})
		}
	}

	completionTime := func(id uuid.UUID) time.Time {
		if res := results[id]; res != nil && res.CompletedAt != nil {
			return res.CompletedAt.UTC()
		}
		return time.Time{}
	}

	// Bonus passes walk blocks in sequence order for deterministic output.
	ordered := append([]models.BlockRow(nil), blocks...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	entries = append(entries, weeklyBonuses(cfg, ordered, byWeek, completed, completionTime)...)
	entries = append(entries, periodBonuses(cfg, ordered, byWeek, completed, completionTime)...)
	entries = append(entries, blockBonuses(cfg, ordered, byWeek, completed, completionTime)...)

	return entries
}

func weeklyBonuses(cfg config.ProgramConfig, blocks []models.BlockRow, byWeek map[uuid.UUID]map[int][]models.SessionRow, completed map[uuid.UUID]bool, at func(uuid.UUID) time.Time) []Entry {
	var entries []Entry
	for _, b := range blocks {
		for week := 1; week <= b.Weeks; week++ {
			group := byWeek[b.ID][week]
			if award, when := groupDone(group, completed, at); award {
				entries = append(entries, Entry{
					Amount:    cfg.Awards.WeeklyBonus,
					Source:    models.SourceWeeklyBonus,
					AwardedAt: when,
				})
			}
		}
	}
	return entries
}

func periodBonuses(cfg config.ProgramConfig, blocks []models.BlockRow, byWeek map[uuid.UUID]map[int][]models.SessionRow, completed map[uuid.UUID]bool, at func(uuid.UUID) time.Time) []Entry {
	var entries []Entry
	for _, b := range blocks {
		for first := 1; first+periodWeeks-1 <= b.Weeks; first += periodWeeks {
			var group []models.SessionRow
			for week := first; week < first+periodWeeks; week++ {
				group = append(group, byWeek[b.ID][week]...)
			}
			if award, when := groupDone(group, completed, at); award {
				entries = append(entries, Entry{
					Amount:    cfg.Awards.PeriodBonus,
					Source:    models.SourcePeriodBonus,
					AwardedAt: when,
				})
			}
		}
	}
	return entries
}

func blockBonuses(cfg config.ProgramConfig, blocks []models.BlockRow, byWeek map[uuid.UUID]map[int][]models.SessionRow, completed map[uuid.UUID]bool, at func(uuid.UUID) time.Time) []Entry {
	var entries []Entry
	for _, b := range blocks {
		var group []models.SessionRow
		for _, weekSessions := range byWeek[b.ID] {
			group = append(group, weekSessions...)
		}
		if award, when := groupDone(group, completed, at); award {
			entries = append(entries, Entry{
				Amount:    cfg.Awards.BlockBonus,
				Source:    models.SourceConsistencyBonus,
				AwardedAt: when,
			})
		}
	}
	return entries
}

// groupDone reports whether a non-empty group of workable sessions is fully
// completed, and the latest completion time in it (the moment the bonus was
// earned).
func groupDone(group []models.SessionRow, completed map[uuid.UUID]bool, at func(uuid.UUID) time.Time) (bool, time.Time) {
	if len(group) == 0 {
		return false, time.Time{}
	}
	var latest time.Time
	for _, s := range group {
		if !completed[s.ID] {
			return false, time.Time{}
		}
		if t := at(s.ID); t.After(latest) {
			latest = t
		}
	}
	return true, latest
}
