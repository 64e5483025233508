// Package calendar derives the month view of the planner: persisted
// events mapped onto days, active campaign ranges from the strategy
// data, and the era background highlight.
package calendar

import (
	"log/slog"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

// Tint is the background highlight of a day cell. When several sources
// apply to the same day, campaign beats era beats today beats none.
type Tint string

const (
	TintNone     Tint = "none"
	TintToday    Tint = "today"
	TintEra      Tint = "era"
	TintCampaign Tint = "campaign"
)

// Era is the highlight window read from the era definition stage. An
// explicit date range bounds it on both sides; a legacy single start
// date leaves it open ended.
type Era struct {
	Title     string
	From      time.Time
	To        time.Time
	OpenEnded bool
}

// Contains reports whether the era window covers the given day.
func (e Era) Contains(day time.Time) bool {
	if e.From.IsZero() {
		return false
	}
	if day.Before(e.From) {
		return false
	}
	return e.OpenEnded || !day.After(e.To)
}

// Campaign is one dated strategy campaign, in the order the user
// declared them.
type Campaign struct {
	Name string
	From time.Time
	To   time.Time
}

// Contains reports whether the campaign range covers the given day.
func (c Campaign) Contains(day time.Time) bool {
	if c.From.IsZero() || c.To.IsZero() {
		return false
	}
	return !day.Before(c.From) && !day.After(c.To)
}

// EraFromStrategies reads the era highlight window from the era stage
// record. An era_dates range wins; otherwise a legacy era_start single
// date opens an unbounded window.
func EraFromStrategies(strategies map[string]models.StrategyRecord) (Era, bool) {
	data := strategies["stage-4"].Data
	if data == nil {
		return Era{}, false
	}
	era := Era{Title: models.AsString(data["era_title"])}
	if r := models.AsDateRange(data["era_dates"]); r.Complete() {
		r = r.Normalize()
		from, err1 := parseDay(r.From)
		to, err2 := parseDay(r.To)
		if err1 == nil && err2 == nil {
			era.From, era.To = from, to
			return era, true
		}
	}
	if start := models.AsString(data["era_start"]); start != "" {
		from, err := parseDay(start)
		if err != nil {
			slog.Debug("calendar.EraFromStrategies: bad era start date", "value", start)
			return Era{}, false
		}
		era.From = from
		era.OpenEnded = true
		return era, true
	}
	return Era{}, false
}

// CampaignsFromStrategies reads the dated campaigns from the campaign
// stage record, keeping declaration order and skipping entries without
// a complete date range.
func CampaignsFromStrategies(strategies map[string]models.StrategyRecord) []Campaign {
	items := models.AsItems(strategies["stage-5"].Data["campaign_list"])
	var out []Campaign
	for _, item := range items {
		r := models.AsDateRange(item["dates"])
		if !r.Complete() {
			continue
		}
		r = r.Normalize()
		from, err1 := parseDay(r.From)
		to, err2 := parseDay(r.To)
		if err1 != nil || err2 != nil {
			slog.Debug("calendar.CampaignsFromStrategies: bad campaign dates",
				"name", models.AsString(item["name"]), "from", r.From, "to", r.To)
			continue
		}
		out = append(out, Campaign{Name: models.AsString(item["name"]), From: from, To: to})
	}
	return out
}

// ActiveCampaignOn returns the first declared campaign whose range
// contains the day.
func ActiveCampaignOn(day time.Time, campaigns []Campaign) (Campaign, bool) {
	for _, c := range campaigns {
		if c.Contains(day) {
			return c, true
		}
	}
	return Campaign{}, false
}

// TintFor resolves the highlight for one day from all sources.
func TintFor(day, today time.Time, era Era, eraOK bool, campaigns []Campaign) Tint {
	if _, ok := ActiveCampaignOn(day, campaigns); ok {
		return TintCampaign
	}
	if eraOK && era.Contains(day) {
		return TintEra
	}
	if sameDay(day, today) {
		return TintToday
	}
	return TintNone
}

// FetchWindow returns the event query window for a visible month: one
// month of lookbehind and one of lookahead around it.
func FetchWindow(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, -1, 0)
	end := first.AddDate(0, 2, 0).Add(-24 * time.Hour)
	return start, end
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Planner builds month views over a store.
type Planner struct {
	store store.Store
}

// NewPlanner wraps a store for month view queries.
func NewPlanner(st store.Store) *Planner {
	return &Planner{store: st}
}

// Month loads the strategy and event data for a user and assembles the
// grid for the given month. The event fetch covers the adjacent months
// so navigation has data ready.
func (p *Planner) Month(userID string, year int, month time.Month, today time.Time) (*MonthGrid, error) {
	records, err := p.store.GetStrategies(userID)
	if err != nil {
		slog.Error("Planner.Month: strategies load failed", "error", err, "userID", userID)
		return nil, err
	}
	strategies := make(map[string]models.StrategyRecord, len(records))
	for _, rec := range records {
		strategies[rec.StageID] = rec
	}

	rangeStart, rangeEnd := FetchWindow(year, month)
	events, err := p.store.GetCalendarEvents(userID, rangeStart, rangeEnd)
	if err != nil {
		slog.Error("Planner.Month: events load failed", "error", err, "userID", userID)
		return nil, err
	}

	era, eraOK := EraFromStrategies(strategies)
	campaigns := CampaignsFromStrategies(strategies)
	grid := BuildMonthGrid(year, month, today, events, era, eraOK, campaigns)
	slog.Debug("Planner.Month: grid built", "userID", userID,
		"year", year, "month", int(month), "events", len(events), "campaigns", len(campaigns))
	return grid, nil
}
