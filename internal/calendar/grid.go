package calendar

import (
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
)

// DayCell is one cell of the month grid.
type DayCell struct {
	Date         time.Time              `json:"date"`
	Day          int                    `json:"day"`
	InMonth      bool                   `json:"inMonth"`
	Tint         Tint                   `json:"tint"`
	CampaignName string                 `json:"campaignName,omitempty"`
	Events       []models.CalendarEvent `json:"events,omitempty"`
}

// MonthGrid is a month laid out in 7-column weeks. Leading and
// trailing cells come from the adjacent months so every week is full.
type MonthGrid struct {
	Year     int          `json:"year"`
	Month    time.Month   `json:"month"`
	EraTitle string       `json:"eraTitle,omitempty"`
	Weeks    [][7]DayCell `json:"weeks"`
}

// BuildMonthGrid lays out one month. Each day collects the events
// whose date span covers it, the first active campaign, and the
// resolved tint.
func BuildMonthGrid(year int, month time.Month, today time.Time, events []models.CalendarEvent, era Era, eraOK bool, campaigns []Campaign) *MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Grid starts on the Sunday at or before the first of the month.
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))
	lastDay := first.AddDate(0, 1, -1)
	weekCount := int(lastDay.Sub(gridStart).Hours()/24/7) + 1

	grid := &MonthGrid{Year: year, Month: month, Weeks: make([][7]DayCell, weekCount)}
	if eraOK {
		grid.EraTitle = era.Title
	}

	day := gridStart
	for w := 0; w < weekCount; w++ {
		for d := 0; d < 7; d++ {
			cell := DayCell{
				Date:    day,
				Day:     day.Day(),
				InMonth: day.Month() == month,
				Tint:    TintFor(day, today, era, eraOK, campaigns),
				Events:  eventsOn(day, events),
			}
			if c, ok := ActiveCampaignOn(day, campaigns); ok {
				cell.CampaignName = c.Name
			}
			grid.Weeks[w][d] = cell
			day = day.AddDate(0, 0, 1)
		}
	}
	return grid
}

// eventsOn returns the events whose start..end span covers the day,
// preserving store order.
func eventsOn(day time.Time, events []models.CalendarEvent) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range events {
		start := truncateDay(ev.StartDate)
		end := truncateDay(ev.EndDate)
		if end.Before(start) {
			end = start
		}
		if !day.Before(start) && !day.After(end) {
			out = append(out, ev)
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
