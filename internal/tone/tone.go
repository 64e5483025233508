// Package tone provides a fixed whitelist of reply-style tags for the
// planner chat, validation with mutual-exclusion enforcement, and
// prompt-guide construction.
package tone

import (
	"strings"
)

// AllTags is the hard-coded set of reply-style tags a user can set for
// the planner assistant.
var AllTags = map[string]bool{
	// Style
	"concise":       true,
	"detailed":      true,
	"formal":        true,
	"casual":        true,
	"no_emojis":     true,
	"emojis_ok":     true,
	"bullet_points": true,
	// Stance
	"hype":          true,
	"grounded":      true,
	"direct_coach":  true,
	"gentle_coach":  true,
	// Interaction
	"action_first":  true,
	"ask_questions": true,
}

// mutuallyExclusivePairs defines tags where at most one may be active.
// The first tag of a pair wins when both are requested.
var mutuallyExclusivePairs = [][2]string{
	{"concise", "detailed"},
	{"formal", "casual"},
	{"hype", "grounded"},
	{"direct_coach", "gentle_coach"},
	{"action_first", "ask_questions"},
}

// Normalize strips unknown tags, lowercases, dedupes and resolves
// mutual exclusions, preserving the caller's order.
func Normalize(tags []string) []string {
	seen := map[string]bool{}
	var cleaned []string
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if AllTags[t] && !seen[t] {
			cleaned = append(cleaned, t)
			seen[t] = true
		}
	}

	// no_emojis overrides emojis_ok.
	if seen["no_emojis"] && seen["emojis_ok"] {
		cleaned = remove(cleaned, "emojis_ok")
		delete(seen, "emojis_ok")
	}
	for _, pair := range mutuallyExclusivePairs {
		if seen[pair[0]] && seen[pair[1]] {
			cleaned = remove(cleaned, pair[1])
			delete(seen, pair[1])
		}
	}
	return cleaned
}

// Guide produces a compact instruction snippet for injection into the
// planner system prompt. It returns an empty string when there are no
// active tags.
func Guide(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}

	var b strings.Builder
	b.WriteString("\n<REPLY STYLE>\nAdapt your responses to the artist's preferences:\n")

	// Style rules.
	if set["concise"] {
		b.WriteString("- Be concise: short sentences, minimal filler.\n")
	}
	if set["detailed"] {
		b.WriteString("- Be detailed: explain the reasoning behind each suggestion, but avoid rambling.\n")
	}
	if set["formal"] {
		b.WriteString("- Use formal diction and professional register.\n")
	}
	if set["casual"] {
		b.WriteString("- Use casual, friendly language.\n")
	}
	if set["no_emojis"] {
		b.WriteString("- Do NOT use emojis.\n")
	} else if set["emojis_ok"] {
		b.WriteString("- Emojis are welcome where appropriate.\n")
	}
	if set["bullet_points"] {
		b.WriteString("- Prefer bullet points when listing schedule items.\n")
	}

	// Stance rules.
	hasStance := false
	if set["hype"] {
		b.WriteString("- Match the energy of a release week: enthusiastic, momentum-building.\n")
		hasStance = true
	}
	if set["grounded"] {
		b.WriteString("- Stay grounded and realistic about reach and timelines.\n")
		hasStance = true
	}
	if set["direct_coach"] {
		b.WriteString("- Be a direct coach: clear, action-oriented feedback on the plan.\n")
		hasStance = true
	}
	if set["gentle_coach"] {
		b.WriteString("- Be a gentle coach: patient, encouraging guidance.\n")
		hasStance = true
	}
	if !hasStance {
		b.WriteString("- Keep a neutral, professional stance.\n")
	}

	// Interaction rules.
	if set["action_first"] {
		b.WriteString("- Lead with concrete next steps before discussion.\n")
	}
	if set["ask_questions"] {
		b.WriteString("- Clarify the artist's intent with questions before proposing a plan.\n")
	}

	b.WriteString("- NEVER mirror hostility, sarcasm, insults, or unsafe language.\n")
	b.WriteString("</REPLY STYLE>\n")

	return b.String()
}

func remove(tags []string, tag string) []string {
	out := tags[:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
