// Package store provides storage backends for StrategyPipe.
//
// This file implements an SQLite-backed store for strategies, calendar
// events and goals.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Debug("SQLite database directory verified/created", "dir", dir)

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	slog.Debug("SQLite database opened")

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	slog.Debug("SQLite ping successful")

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetStrategies(userID string) ([]models.StrategyRecord, error) {
	rows, err := s.db.Query(`SELECT stage_id, status, data, last_updated FROM strategies WHERE user_id = ? ORDER BY stage_id`, userID)
	if err != nil {
		slog.Error("SQLiteStore GetStrategies query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var records []models.StrategyRecord
	for rows.Next() {
		rec, err := scanStrategy(rows)
		if err != nil {
			slog.Error("SQLiteStore GetStrategies scan failed", "error", err)
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetStrategies rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate strategy rows: %w", err)
	}
	slog.Debug("SQLiteStore GetStrategies succeeded", "userID", userID, "count", len(records))
	return records, nil
}

func (s *SQLiteStore) GetStrategy(userID, stageID string) (*models.StrategyRecord, error) {
	var rec models.StrategyRecord
	var status, dataJSON string
	err := s.db.QueryRow(`SELECT stage_id, status, data, last_updated FROM strategies WHERE user_id = ? AND stage_id = ?`,
		userID, stageID).Scan(&rec.StageID, &status, &dataJSON, &rec.LastUpdated)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetStrategy not found", "userID", userID, "stageID", stageID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetStrategy failed", "error", err, "userID", userID, "stageID", stageID)
		return nil, err
	}
	rec.Status = models.StageStatus(status)
	rec.Data = unmarshalMap(dataJSON)
	slog.Debug("SQLiteStore GetStrategy found", "userID", userID, "stageID", stageID, "status", rec.Status)
	return &rec, nil
}

func (s *SQLiteStore) SaveStrategy(userID, stageID string, data map[string]any, status models.StageStatus) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	if !models.IsValidStageStatus(status) {
		return models.ErrInvalidStageStatus
	}
	dataJSON, err := marshalMap(data)
	if err != nil {
		slog.Error("SQLiteStore SaveStrategy marshal failed", "error", err, "stageID", stageID)
		return err
	}
	query := `
		INSERT OR REPLACE INTO strategies (user_id, stage_id, status, data, last_updated)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.Exec(query, userID, stageID, string(status), dataJSON, time.Now()); err != nil {
		slog.Error("SQLiteStore SaveStrategy failed", "error", err, "userID", userID, "stageID", stageID)
		return fmt.Errorf("failed to save strategy %s: %w", stageID, err)
	}
	slog.Debug("SQLiteStore SaveStrategy succeeded", "userID", userID, "stageID", stageID, "status", status)
	return nil
}

// MarkStageStarted records that the user opened a stage. A completed stage
// is never downgraded.
func (s *SQLiteStore) MarkStageStarted(userID, stageID string) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	query := `
		INSERT INTO strategies (user_id, stage_id, status, data, last_updated)
		VALUES (?, ?, ?, '{}', ?)
		ON CONFLICT (user_id, stage_id) DO UPDATE SET
			status = excluded.status,
			last_updated = excluded.last_updated
		WHERE strategies.status != ?`
	_, err := s.db.Exec(query, userID, stageID, string(models.StageStatusInProgress), time.Now(), string(models.StageStatusCompleted))
	if err != nil {
		slog.Error("SQLiteStore MarkStageStarted failed", "error", err, "userID", userID, "stageID", stageID)
		return fmt.Errorf("failed to mark stage %s started: %w", stageID, err)
	}
	slog.Debug("SQLiteStore MarkStageStarted succeeded", "userID", userID, "stageID", stageID)
	return nil
}

func (s *SQLiteStore) GetCalendarEvents(userID string, rangeStart, rangeEnd time.Time) ([]models.CalendarEvent, error) {
	query := `
		SELECT id, title, start_date, end_date, type, description, status, platform, metadata
		FROM calendar_events
		WHERE user_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date`
	rows, err := s.db.Query(query, userID, rangeEnd, rangeStart)
	if err != nil {
		slog.Error("SQLiteStore GetCalendarEvents query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		ev, err := scanCalendarEvent(rows)
		if err != nil {
			slog.Error("SQLiteStore GetCalendarEvents scan failed", "error", err)
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetCalendarEvents rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate calendar event rows: %w", err)
	}
	slog.Debug("SQLiteStore GetCalendarEvents succeeded", "userID", userID, "count", len(events))
	return events, nil
}

func (s *SQLiteStore) CreateCalendarEvent(userID string, event models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := event.Validate(); err != nil {
		slog.Error("SQLiteStore CreateCalendarEvent validation failed", "error", err, "title", event.Title)
		return nil, err
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Status == "" {
		event.Status = models.EventStatusPending
	}
	if event.EndDate.IsZero() {
		event.EndDate = event.StartDate
	}
	metadataJSON := ""
	if len(event.Metadata) > 0 {
		var err error
		metadataJSON, err = marshalMap(event.Metadata)
		if err != nil {
			return nil, err
		}
	}
	query := `
		INSERT INTO calendar_events (id, user_id, title, start_date, end_date, type, description, status, platform, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, event.ID, userID, event.Title, event.StartDate, event.EndDate,
		string(event.Type), nilIfEmpty(event.Description), string(event.Status),
		nilIfEmpty(event.Platform), nilIfEmpty(metadataJSON))
	if err != nil {
		slog.Error("SQLiteStore CreateCalendarEvent failed", "error", err, "title", event.Title)
		return nil, fmt.Errorf("failed to insert calendar event %s: %w", event.Title, err)
	}
	slog.Debug("SQLiteStore CreateCalendarEvent succeeded", "id", event.ID, "title", event.Title)
	return &event, nil
}

func (s *SQLiteStore) UpdateCalendarEvent(userID, eventID string, event models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.EndDate.IsZero() {
		event.EndDate = event.StartDate
	}
	metadataJSON := ""
	if len(event.Metadata) > 0 {
		var err error
		metadataJSON, err = marshalMap(event.Metadata)
		if err != nil {
			return err
		}
	}
	query := `
		UPDATE calendar_events
		SET title = ?, start_date = ?, end_date = ?, type = ?, description = ?, status = ?, platform = ?, metadata = ?
		WHERE id = ? AND user_id = ?`
	res, err := s.db.Exec(query, event.Title, event.StartDate, event.EndDate, string(event.Type),
		nilIfEmpty(event.Description), string(event.Status), nilIfEmpty(event.Platform),
		nilIfEmpty(metadataJSON), eventID, userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateCalendarEvent failed", "error", err, "id", eventID)
		return fmt.Errorf("failed to update calendar event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("SQLiteStore UpdateCalendarEvent not found", "id", eventID, "userID", userID)
		return ErrNotFound
	}
	slog.Debug("SQLiteStore UpdateCalendarEvent succeeded", "id", eventID)
	return nil
}

func (s *SQLiteStore) DeleteCalendarEvent(userID, eventID string) error {
	res, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteCalendarEvent failed", "error", err, "id", eventID)
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore DeleteCalendarEvent succeeded", "id", eventID)
	return nil
}

func (s *SQLiteStore) GetGoals(userID string) ([]models.Goal, error) {
	rows, err := s.db.Query(`SELECT id, title, type, target, current, deadline, status, category FROM goals WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore GetGoals query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			slog.Error("SQLiteStore GetGoals scan failed", "error", err)
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetGoals rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate goal rows: %w", err)
	}
	slog.Debug("SQLiteStore GetGoals succeeded", "userID", userID, "count", len(goals))
	return goals, nil
}

func (s *SQLiteStore) CreateGoal(userID string, goal models.Goal) (*models.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	query := `
		INSERT INTO goals (id, user_id, title, type, target, current, deadline, status, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, goal.ID, userID, goal.Title, nilIfEmpty(goal.Type),
		goal.Target, goal.Current, nilIfZeroTime(goal.Deadline), nilIfEmpty(goal.Status), nilIfEmpty(goal.Category))
	if err != nil {
		slog.Error("SQLiteStore CreateGoal failed", "error", err, "title", goal.Title)
		return nil, fmt.Errorf("failed to insert goal %s: %w", goal.Title, err)
	}
	slog.Debug("SQLiteStore CreateGoal succeeded", "id", goal.ID, "title", goal.Title)
	return &goal, nil
}

func (s *SQLiteStore) UpdateGoal(userID string, goal models.Goal) error {
	query := `
		UPDATE goals
		SET title = ?, type = ?, target = ?, current = ?, deadline = ?, status = ?, category = ?
		WHERE id = ? AND user_id = ?`
	res, err := s.db.Exec(query, goal.Title, nilIfEmpty(goal.Type), goal.Target, goal.Current,
		nilIfZeroTime(goal.Deadline), nilIfEmpty(goal.Status), nilIfEmpty(goal.Category), goal.ID, userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateGoal failed", "error", err, "id", goal.ID)
		return fmt.Errorf("failed to update goal %s: %w", goal.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore UpdateGoal succeeded", "id", goal.ID)
	return nil
}

func (s *SQLiteStore) DeleteGoal(userID, goalID string) error {
	res, err := s.db.Exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteGoal failed", "error", err, "id", goalID)
		return fmt.Errorf("failed to delete goal %s: %w", goalID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore DeleteGoal succeeded", "id", goalID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	} else {
		slog.Debug("SQLite database connection closed successfully")
	}
	return err
}
