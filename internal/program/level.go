package program

// LevelOf maps cumulative XP to a level: the highest level whose threshold
// is at or below xp. thresholds is the ascending cumulative table from
// config; thresholds[0] is always 0, so any non-negative xp is at least
// level 1. Negative xp (which a well-formed ledger never produces) also
// maps to level 1 rather than something undefined.
func LevelOf(thresholds []int, xp int) int {
	level := 1
	for i, t := range thresholds {
		if xp >= t {
			level = i + 1
		}
	}
	return level
}

// Progress describes an athlete's position between level thresholds.
type Progress struct {
	Level     int     `json:"level"`
	NextLevel int     `json:"next_level,omitempty"` // 0 when at max
	AtMax     bool    `json:"at_max"`
	XPNeeded  int     `json:"xp_needed"`
	Percent   float64 `json:"percent"`
}

// ProgressToNext computes level progress: the current level, the next one
// (or the max sentinel), the XP still needed, and a 0–100 percentage within
// the current bracket, clamped and defined as 100 at the top level.
func ProgressToNext(thresholds []int, xp int) Progress {
	level := LevelOf(thresholds, xp)
	if level >= len(thresholds) {
		return Progress{Level: level, AtMax: true, Percent: 100}
	}

	current := thresholds[level-1]
	next := thresholds[level]
	pct := float64(xp-current) / float64(next-current) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	needed := next - xp
	if needed < 0 {
		needed = 0
	}

	return Progress{
		Level:     level,
		NextLevel: level + 1,
		XPNeeded:  needed,
		Percent:   pct,
	}
}
