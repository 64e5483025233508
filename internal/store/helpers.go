package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("record not found")

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalMap encodes a map for a JSON text column. Nil maps encode as "{}"
// so reads never see SQL NULL for strategy data.
func marshalMap(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return string(b), nil
}

// unmarshalMap decodes a JSON text column into a map. Malformed blobs log
// and yield an empty map rather than failing the read.
func unmarshalMap(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	out := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Error("store: failed to unmarshal JSON column, returning empty map", "error", err)
		return map[string]any{}
	}
	return out
}

// scanStrategy scans a StrategyRecord from sql.Rows.
func scanStrategy(rows *sql.Rows) (models.StrategyRecord, error) {
	var rec models.StrategyRecord
	var status, dataJSON string
	if err := rows.Scan(&rec.StageID, &status, &dataJSON, &rec.LastUpdated); err != nil {
		return rec, fmt.Errorf("scan strategy failed: %w", err)
	}
	rec.Status = models.StageStatus(status)
	rec.Data = unmarshalMap(dataJSON)
	return rec, nil
}

// scanCalendarEvent scans a CalendarEvent from sql.Rows.
func scanCalendarEvent(rows *sql.Rows) (models.CalendarEvent, error) {
	var ev models.CalendarEvent
	var evType, status string
	var description, platform, metadataJSON sql.NullString
	err := rows.Scan(
		&ev.ID, &ev.Title, &ev.StartDate, &ev.EndDate, &evType,
		&description, &status, &platform, &metadataJSON,
	)
	if err != nil {
		return ev, fmt.Errorf("scan calendar event failed: %w", err)
	}
	ev.Type = models.EventType(evType)
	ev.Status = models.EventStatus(status)
	ev.Description = description.String
	ev.Platform = platform.String
	if metadataJSON.Valid && metadataJSON.String != "" {
		ev.Metadata = unmarshalMap(metadataJSON.String)
	}
	return ev, nil
}

// scanGoal scans a Goal from sql.Rows.
func scanGoal(rows *sql.Rows) (models.Goal, error) {
	var g models.Goal
	var goalType, status, category sql.NullString
	var deadline sql.NullTime
	err := rows.Scan(
		&g.ID, &g.Title, &goalType, &g.Target, &g.Current,
		&deadline, &status, &category,
	)
	if err != nil {
		return g, fmt.Errorf("scan goal failed: %w", err)
	}
	g.Type = goalType.String
	g.Status = status.String
	g.Category = category.String
	if deadline.Valid {
		g.Deadline = deadline.Time
	}
	return g, nil
}

// nilIfZeroTime returns nil for the zero time, for nullable columns.
func nilIfZeroTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
