package calendar

import (
	"testing"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strategiesWith(era map[string]any, campaigns []any) map[string]models.StrategyRecord {
	out := map[string]models.StrategyRecord{}
	if era != nil {
		out["stage-4"] = models.StrategyRecord{StageID: "stage-4", Data: era}
	}
	if campaigns != nil {
		out["stage-5"] = models.StrategyRecord{
			StageID: "stage-5",
			Data:    map[string]any{"campaign_list": campaigns},
		}
	}
	return out
}

func TestEraFromExplicitRange(t *testing.T) {
	era, ok := EraFromStrategies(strategiesWith(map[string]any{
		"era_title": "The Rebirth",
		"era_dates": map[string]any{"from": "2024-06-01", "to": "2024-08-31"},
	}, nil))
	if !ok {
		t.Fatal("expected era")
	}
	if era.Title != "The Rebirth" || era.OpenEnded {
		t.Errorf("unexpected era: %+v", era)
	}
	if !era.Contains(day("2024-07-15")) || era.Contains(day("2024-09-01")) {
		t.Error("range bounds wrong")
	}
}

func TestEraFromLegacyStartDate(t *testing.T) {
	era, ok := EraFromStrategies(strategiesWith(map[string]any{
		"era_title": "The Rebirth",
		"era_start": "2024-06-01",
	}, nil))
	if !ok {
		t.Fatal("expected era")
	}
	if !era.OpenEnded {
		t.Error("expected open-ended era")
	}
	if era.Contains(day("2024-05-31")) {
		t.Error("day before start should be outside the era")
	}
	if !era.Contains(day("2030-01-01")) {
		t.Error("open-ended era must extend forward indefinitely")
	}
}

func TestEraAbsent(t *testing.T) {
	if _, ok := EraFromStrategies(strategiesWith(map[string]any{"era_title": "X"}, nil)); ok {
		t.Error("era without dates should not highlight")
	}
	if _, ok := EraFromStrategies(nil); ok {
		t.Error("missing stage should not highlight")
	}
}

func TestCampaignsKeepDeclaredOrderAndSkipUndated(t *testing.T) {
	campaigns := CampaignsFromStrategies(strategiesWith(nil, []any{
		map[string]any{"name": "First", "dates": map[string]any{"from": "2024-06-10", "to": "2024-06-20"}},
		map[string]any{"name": "Undated"},
		map[string]any{"name": "Second", "dates": map[string]any{"from": "2024-06-15", "to": "2024-06-25"}},
	}))
	if len(campaigns) != 2 || campaigns[0].Name != "First" || campaigns[1].Name != "Second" {
		t.Fatalf("unexpected campaigns: %+v", campaigns)
	}
	// Overlap resolves to the first declared campaign.
	active, ok := ActiveCampaignOn(day("2024-06-18"), campaigns)
	if !ok || active.Name != "First" {
		t.Errorf("expected First on overlap day, got %+v", active)
	}
}

func TestTintPrecedence(t *testing.T) {
	era := Era{Title: "The Rebirth", From: day("2024-06-01"), OpenEnded: true}
	campaigns := []Campaign{{Name: "Lead Single", From: day("2024-06-10"), To: day("2024-06-20")}}
	today := day("2024-06-15")

	tests := []struct {
		name string
		day  time.Time
		want Tint
	}{
		{"campaign beats era and today", day("2024-06-15"), TintCampaign},
		{"era where no campaign", day("2024-06-05"), TintEra},
		{"nothing before era", day("2024-05-20"), TintNone},
		{"campaign edge inclusive", day("2024-06-20"), TintCampaign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TintFor(tt.day, today, era, true, campaigns); got != tt.want {
				t.Errorf("TintFor(%s) = %s, want %s", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}

	// Today only shows through when neither campaign nor era covers it.
	if got := TintFor(today, today, Era{}, false, nil); got != TintToday {
		t.Errorf("expected today tint, got %s", got)
	}
}

func TestFetchWindowBuffersAdjacentMonths(t *testing.T) {
	start, end := FetchWindow(2024, time.June)
	if !start.Equal(day("2024-05-01")) {
		t.Errorf("window start = %s", start.Format("2006-01-02"))
	}
	if !end.Equal(day("2024-07-31")) {
		t.Errorf("window end = %s", end.Format("2006-01-02"))
	}
}

func TestBuildMonthGridLayout(t *testing.T) {
	// June 2024 starts on a Saturday and spans six grid weeks.
	grid := BuildMonthGrid(2024, time.June, day("2024-06-15"), nil, Era{}, false, nil)
	if len(grid.Weeks) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(grid.Weeks))
	}
	firstCell := grid.Weeks[0][6]
	if !firstCell.InMonth || firstCell.Day != 1 {
		t.Errorf("June 1 should be the Saturday of week one, got %+v", firstCell)
	}
	if grid.Weeks[0][0].InMonth {
		t.Error("leading May cells must be marked out of month")
	}
	var today int
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if cell.Tint == TintToday {
				today++
				if cell.Day != 15 || !cell.InMonth {
					t.Errorf("today tint on wrong cell: %+v", cell)
				}
			}
		}
	}
	if today != 1 {
		t.Errorf("expected exactly one today cell, got %d", today)
	}
}

func TestBuildMonthGridEventsSpanDays(t *testing.T) {
	events := []models.CalendarEvent{
		{ID: "1", Title: "Rollout", StartDate: day("2024-06-10"), EndDate: day("2024-06-12"), Type: models.EventTypeCampaign},
		{ID: "2", Title: "Drop", StartDate: day("2024-06-11"), EndDate: day("2024-06-11"), Type: models.EventTypeRelease},
	}
	grid := BuildMonthGrid(2024, time.June, day("2024-06-01"), events, Era{}, false, nil)
	counts := map[int]int{}
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if cell.InMonth {
				counts[cell.Day] = len(cell.Events)
			}
		}
	}
	if counts[10] != 1 || counts[11] != 2 || counts[12] != 1 || counts[13] != 0 {
		t.Errorf("unexpected event placement: %v", counts)
	}
}

func TestPlannerMonth(t *testing.T) {
	st := store.NewInMemoryStore()
	if err := st.SaveStrategy("local", "stage-4", map[string]any{
		"era_title": "The Rebirth",
		"era_start": "2024-06-01",
	}, models.StageStatusCompleted); err != nil {
		t.Fatalf("seed stage-4 failed: %v", err)
	}
	if err := st.SaveStrategy("local", "stage-5", map[string]any{
		"campaign_list": []any{
			map[string]any{"name": "Lead Single", "dates": map[string]any{"from": "2024-06-10", "to": "2024-06-20"}},
		},
	}, models.StageStatusCompleted); err != nil {
		t.Fatalf("seed stage-5 failed: %v", err)
	}
	if _, err := st.CreateCalendarEvent("local", models.CalendarEvent{
		Title:     "Teaser",
		StartDate: day("2024-06-15"),
		EndDate:   day("2024-06-15"),
		Type:      models.EventTypeContent,
		Status:    models.EventStatusPending,
	}); err != nil {
		t.Fatalf("seed event failed: %v", err)
	}

	grid, err := NewPlanner(st).Month("local", 2024, time.June, day("2024-06-15"))
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if grid.EraTitle != "The Rebirth" {
		t.Errorf("era title = %q", grid.EraTitle)
	}
	var cell DayCell
	for _, week := range grid.Weeks {
		for _, c := range week {
			if c.InMonth && c.Day == 15 {
				cell = c
			}
		}
	}
	// June 15 sits inside both the campaign and the open-ended era; the
	// campaign highlight wins.
	if cell.Tint != TintCampaign || cell.CampaignName != "Lead Single" {
		t.Errorf("unexpected cell: %+v", cell)
	}
	if len(cell.Events) != 1 || cell.Events[0].Title != "Teaser" {
		t.Errorf("event not placed: %+v", cell.Events)
	}
}
