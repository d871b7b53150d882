package program

import "testing"

var thresholds = []int{0, 3, 6, 10, 15}

// TestLevelOf verifies the threshold lookup: the highest level whose
// threshold is at or below the XP total.
func TestLevelOf(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{2, 1},
		{3, 2},
		{5, 2},
		{6, 3},
		{9, 3},
		{10, 4},
		{14, 4},
		{15, 5},
		{100, 5},
		{-1, 1},
	}

	for _, tt := range tests {
		if got := LevelOf(thresholds, tt.xp); got != tt.want {
			t.Errorf("LevelOf(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

// TestLevelOfMonotonic verifies the ordering property: more XP never means a
// lower level.
func TestLevelOfMonotonic(t *testing.T) {
	prev := LevelOf(thresholds, 0)
	for xp := 1; xp <= 200; xp++ {
		level := LevelOf(thresholds, xp)
		if level < prev {
			t.Fatalf("LevelOf(%d) = %d < LevelOf(%d) = %d", xp, level, xp-1, prev)
		}
		prev = level
	}
}

// TestProgressToNext verifies the bracket arithmetic: needed XP and the
// percentage through the current bracket, clamped to [0,100].
func TestProgressToNext(t *testing.T) {
	tests := []struct {
		name     string
		xp       int
		level    int
		next     int
		needed   int
		percent  float64
		atMax    bool
	}{
		{"fresh athlete", 0, 1, 2, 3, 0, false},
		{"one third through", 1, 1, 2, 2, 100.0 / 3.0, false},
		{"threshold boundary", 3, 2, 3, 3, 0, false},
		{"halfway to five", 12, 4, 5, 3, 40, false},
		{"exactly max", 15, 5, 0, 0, 100, true},
		{"past max", 50, 5, 0, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressToNext(thresholds, tt.xp)
			if got.Level != tt.level {
				t.Errorf("level = %d, want %d", got.Level, tt.level)
			}
			if got.AtMax != tt.atMax {
				t.Errorf("at_max = %v, want %v", got.AtMax, tt.atMax)
			}
			if got.NextLevel != tt.next {
				t.Errorf("next_level = %d, want %d", got.NextLevel, tt.next)
			}
			if got.XPNeeded != tt.needed {
				t.Errorf("xp_needed = %d, want %d", got.XPNeeded, tt.needed)
			}
			if diff := got.Percent - tt.percent; diff > 0.001 || diff < -0.001 {
				t.Errorf("percent = %.3f, want %.3f", got.Percent, tt.percent)
			}
		})
	}
}

// TestProgressPercentBounds verifies the percentage never leaves [0,100]
// whatever the XP input.
func TestProgressPercentBounds(t *testing.T) {
	for xp := -10; xp <= 200; xp++ {
		p := ProgressToNext(thresholds, xp)
		if p.Percent < 0 || p.Percent > 100 {
			t.Fatalf("ProgressToNext(%d).Percent = %.2f out of [0,100]", xp, p.Percent)
		}
	}
}
