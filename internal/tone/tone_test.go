package tone

import (
	"strings"
	"testing"
)

func TestNormalizeStripsUnknownAndDupes(t *testing.T) {
	got := Normalize([]string{" Concise ", "concise", "sarcastic", "bullet_points"})
	if len(got) != 2 || got[0] != "concise" || got[1] != "bullet_points" {
		t.Errorf("unexpected tags: %v", got)
	}
}

func TestNormalizeMutualExclusion(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"concise wins over detailed", []string{"concise", "detailed"}, []string{"concise"}},
		{"no_emojis wins over emojis_ok", []string{"emojis_ok", "no_emojis"}, []string{"no_emojis"}},
		{"hype wins over grounded", []string{"hype", "grounded", "casual"}, []string{"hype", "casual"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestGuideEmptyWithoutTags(t *testing.T) {
	if got := Guide(nil); got != "" {
		t.Errorf("expected empty guide, got %q", got)
	}
}

func TestGuideContents(t *testing.T) {
	guide := Guide([]string{"concise", "no_emojis", "direct_coach"})
	for _, want := range []string{
		"<REPLY STYLE>",
		"Be concise",
		"Do NOT use emojis",
		"direct coach",
		"NEVER mirror hostility",
	} {
		if !strings.Contains(guide, want) {
			t.Errorf("guide missing %q:\n%s", want, guide)
		}
	}
	if strings.Contains(guide, "neutral, professional") {
		t.Error("default stance should be replaced by the chosen stance")
	}
}

func TestGuideDefaultStance(t *testing.T) {
	guide := Guide([]string{"concise"})
	if !strings.Contains(guide, "neutral, professional") {
		t.Error("expected default stance when no stance tag set")
	}
}
