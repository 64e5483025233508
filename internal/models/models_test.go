package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGoalProgressClamp(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		want float64
	}{
		{"zero target", Goal{Target: 0, Current: 50}, 0},
		{"partial", Goal{Target: 200, Current: 50}, 25},
		{"complete", Goal{Target: 100, Current: 100}, 100},
		{"overshoot clamps to 100", Goal{Target: 100, Current: 150}, 100},
		{"negative clamps to 0", Goal{Target: 100, Current: -10}, 0},
	}
	for _, tt := range tests {
		if got := tt.goal.Progress(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGoalJSONCarriesProgress(t *testing.T) {
	out, err := json.Marshal(Goal{ID: "g1", Title: "10k monthly listeners", Target: 10000, Current: 2500})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"progress":25`) {
		t.Errorf("expected progress in payload: %s", out)
	}
}

func TestRankedChoiceCompactAndContains(t *testing.T) {
	r := RankedChoice{Secondary: "Sage", Tertiary: "Lover"}
	c := r.Compact()
	if c.Primary != "Sage" || c.Secondary != "Lover" || c.Tertiary != "" {
		t.Errorf("unexpected compacted choice: %+v", c)
	}
	if !c.Contains("Lover") || c.Contains("Rebel") {
		t.Errorf("unexpected membership: %+v", c)
	}
}
