package models

// Value shapes stored inside StrategyRecord.Data. The store keeps Data as a
// JSON blob, so these helpers coerce the decoded map[string]any form back
// into typed values.

// RankedChoice holds up to three ranked selections for a select field with
// secondary choices enabled.
type RankedChoice struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
}

// Slots returns the filled slots in rank order.
func (r RankedChoice) Slots() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{r.Primary, r.Secondary, r.Tertiary} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether the option occupies any slot.
func (r RankedChoice) Contains(option string) bool {
	return r.Primary == option || r.Secondary == option || r.Tertiary == option
}

// Compact shifts filled slots upward so that no empty slot precedes a
// filled one.
func (r RankedChoice) Compact() RankedChoice {
	slots := r.Slots()
	var out RankedChoice
	if len(slots) > 0 {
		out.Primary = slots[0]
	}
	if len(slots) > 1 {
		out.Secondary = slots[1]
	}
	if len(slots) > 2 {
		out.Tertiary = slots[2]
	}
	return out
}

// DateRange is a from/to pair of ISO dates (YYYY-MM-DD). From is always
// chronologically at or before To once both ends are set.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Complete reports whether both ends of the range are set.
func (d DateRange) Complete() bool {
	return d.From != "" && d.To != ""
}

// Normalize swaps the endpoints when both are set and From sorts after To.
// ISO dates compare correctly as strings.
func (d DateRange) Normalize() DateRange {
	if d.Complete() && d.From > d.To {
		return DateRange{From: d.To, To: d.From}
	}
	return d
}

// Schedule item types: a reference to a campaign or to a content bucket.
const (
	ScheduleItemCampaign = "campaign"
	ScheduleItemBucket   = "bucket"
)

// ScheduleItem is one entry inside a weekly schedule day bucket, a typed
// reference to a campaign or content bucket defined elsewhere.
type ScheduleItem struct {
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// WeekDays lists the schedule bucket keys in display order.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekSchedule maps capitalized day names (Monday through Sunday, the
// WeekDays keys) to their schedule items.
type WeekSchedule map[string][]ScheduleItem

// IsWeekDay reports whether day is a valid schedule bucket key.
func IsWeekDay(day string) bool {
	for _, d := range WeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// AsString coerces a stored field value to a string.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsStringSlice coerces a stored multiselect value. Both []string and the
// JSON-decoded []any forms are accepted.
func AsStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// AsRanked coerces a stored ranked select value. A bare string is treated
// as a primary-only choice so plain selects and ranked selects share a
// storage shape.
func AsRanked(v any) RankedChoice {
	switch t := v.(type) {
	case RankedChoice:
		return t
	case string:
		return RankedChoice{Primary: t}
	case map[string]any:
		return RankedChoice{
			Primary:   AsString(t["primary"]),
			Secondary: AsString(t["secondary"]),
			Tertiary:  AsString(t["tertiary"]),
		}
	default:
		return RankedChoice{}
	}
}

// AsDateRange coerces a stored date-range value.
func AsDateRange(v any) DateRange {
	switch t := v.(type) {
	case DateRange:
		return t
	case map[string]any:
		return DateRange{From: AsString(t["from"]), To: AsString(t["to"])}
	default:
		return DateRange{}
	}
}

// AsItems coerces a stored array field value into item maps.
func AsItems(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// AsWeekSchedule coerces a stored weekly-schedule value.
func AsWeekSchedule(v any) WeekSchedule {
	switch t := v.(type) {
	case WeekSchedule:
		return t
	case map[string][]ScheduleItem:
		return WeekSchedule(t)
	case map[string]any:
		out := make(WeekSchedule, len(t))
		for day, raw := range t {
			if !IsWeekDay(day) {
				continue
			}
			items := make([]ScheduleItem, 0)
			for _, item := range AsItems(raw) {
				items = append(items, ScheduleItem{
					Type: AsString(item["type"]),
					Name: AsString(item["name"]),
					ID:   AsString(item["id"]),
				})
			}
			out[day] = items
		}
		return out
	default:
		return WeekSchedule{}
	}
}
