package planner

import "strings"

// SegmentKind classifies one block of a formatted assistant message.
type SegmentKind string

const (
	SegmentHeading   SegmentKind = "heading"
	SegmentBullet    SegmentKind = "bullet"
	SegmentParagraph SegmentKind = "paragraph"
	SegmentBreak     SegmentKind = "break"
)

// Segment is one display block of an assistant reply.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Bold bool        `json:"bold,omitempty"`
}

// FormatMessage splits an assistant reply into structural blocks:
// "### " headings, "- "/"* " bullets, full-line bold paragraphs, blank
// lines and plain paragraphs. Inline bold markers are left in the text.
func FormatMessage(text string) []Segment {
	lines := strings.Split(text, "\n")
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "### "):
			segments = append(segments, Segment{Kind: SegmentHeading, Text: strings.TrimPrefix(line, "### ")})
		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
			segments = append(segments, Segment{Kind: SegmentParagraph, Text: strings.ReplaceAll(line, "**", ""), Bold: true})
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			segments = append(segments, Segment{Kind: SegmentBullet, Text: trimmed[2:]})
		case trimmed == "":
			segments = append(segments, Segment{Kind: SegmentBreak})
		default:
			segments = append(segments, Segment{Kind: SegmentParagraph, Text: line})
		}
	}
	return segments
}
