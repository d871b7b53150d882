package program

import (
	"sort"

	"github.com/google/uuid"
)

// StrengthRow is one leaderboard entry ranked by (level desc, xp desc).
type StrengthRow struct {
	AthleteID uuid.UUID `json:"athlete_id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	Rank      int       `json:"rank"`
	IsYou     bool      `json:"is_you,omitempty"`
}

// ConsistencyRow is one leaderboard entry ranked by
// (consistency desc, completed desc).
type ConsistencyRow struct {
	AthleteID   uuid.UUID `json:"athlete_id"`
	Name        string    `json:"name"`
	Consistency float64   `json:"consistency"`
	Completed   int       `json:"completed"`
	Rank        int       `json:"rank"`
	IsYou       bool      `json:"is_you,omitempty"`
}

// RankStrength sorts and rank-numbers the strength leaderboard using
// competition ranking: equal (level, xp) tuples share a rank and the next
// distinct tuple's rank skips past them (1,1,3,...). The viewer's row is
// flagged without disturbing the order. Name is the final tiebreak so output
// is stable across runs.
func RankStrength(rows []StrengthRow, viewer uuid.UUID) []StrengthRow {
	ranked := append([]StrengthRow(nil), rows...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		return a.Name < b.Name
	})

	for i := range ranked {
		if i > 0 && ranked[i].Level == ranked[i-1].Level && ranked[i].XP == ranked[i-1].XP {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
		ranked[i].IsYou = ranked[i].AthleteID == viewer
	}
	return ranked
}

// RankConsistency is RankStrength for the consistency leaderboard.
func RankConsistency(rows []ConsistencyRow, viewer uuid.UUID) []ConsistencyRow {
	ranked := append([]ConsistencyRow(nil), rows...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Consistency != b.Consistency {
			return a.Consistency > b.Consistency
		}
		if a.Completed != b.Completed {
			return a.Completed > b.Completed
		}
		return a.Name < b.Name
	})

	for i := range ranked {
		if i > 0 && ranked[i].Consistency == ranked[i-1].Consistency && ranked[i].Completed == ranked[i-1].Completed {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
		ranked[i].IsYou = ranked[i].AthleteID == viewer
	}
	return ranked
}
