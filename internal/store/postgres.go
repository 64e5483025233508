// Package store provides storage backends for StrategyPipe.
//
// This file implements a PostgreSQL-backed store for strategies, calendar
// events and goals.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	slog.Debug("Postgres database opened")

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	slog.Debug("Postgres ping successful")
	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetStrategies(userID string) ([]models.StrategyRecord, error) {
	rows, err := s.db.Query(`SELECT stage_id, status, data, last_updated FROM strategies WHERE user_id = $1 ORDER BY stage_id`, userID)
	if err != nil {
		slog.Error("PostgresStore GetStrategies query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var records []models.StrategyRecord
	for rows.Next() {
		rec, err := scanStrategy(rows)
		if err != nil {
			slog.Error("PostgresStore GetStrategies scan failed", "error", err)
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetStrategies rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate strategy rows: %w", err)
	}
	slog.Debug("PostgresStore GetStrategies succeeded", "userID", userID, "count", len(records))
	return records, nil
}

func (s *PostgresStore) GetStrategy(userID, stageID string) (*models.StrategyRecord, error) {
	var rec models.StrategyRecord
	var status, dataJSON string
	err := s.db.QueryRow(`SELECT stage_id, status, data, last_updated FROM strategies WHERE user_id = $1 AND stage_id = $2`,
		userID, stageID).Scan(&rec.StageID, &status, &dataJSON, &rec.LastUpdated)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetStrategy not found", "userID", userID, "stageID", stageID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetStrategy failed", "error", err, "userID", userID, "stageID", stageID)
		return nil, err
	}
	rec.Status = models.StageStatus(status)
	rec.Data = unmarshalMap(dataJSON)
	slog.Debug("PostgresStore GetStrategy found", "userID", userID, "stageID", stageID, "status", rec.Status)
	return &rec, nil
}

func (s *PostgresStore) SaveStrategy(userID, stageID string, data map[string]any, status models.StageStatus) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	if !models.IsValidStageStatus(status) {
		return models.ErrInvalidStageStatus
	}
	dataJSON, err := marshalMap(data)
	if err != nil {
		slog.Error("PostgresStore SaveStrategy marshal failed", "error", err, "stageID", stageID)
		return err
	}
	query := `
		INSERT INTO strategies (user_id, stage_id, status, data, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, stage_id) DO UPDATE SET
			status = EXCLUDED.status,
			data = EXCLUDED.data,
			last_updated = EXCLUDED.last_updated`
	if _, err := s.db.Exec(query, userID, stageID, string(status), dataJSON, time.Now()); err != nil {
		slog.Error("PostgresStore SaveStrategy failed", "error", err, "userID", userID, "stageID", stageID)
		return fmt.Errorf("failed to save strategy %s: %w", stageID, err)
	}
	slog.Debug("PostgresStore SaveStrategy succeeded", "userID", userID, "stageID", stageID, "status", status)
	return nil
}

// MarkStageStarted records that the user opened a stage. A completed stage
// is never downgraded.
func (s *PostgresStore) MarkStageStarted(userID, stageID string) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	query := `
		INSERT INTO strategies (user_id, stage_id, status, data, last_updated)
		VALUES ($1, $2, $3, '{}'::jsonb, $4)
		ON CONFLICT (user_id, stage_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_updated = EXCLUDED.last_updated
		WHERE strategies.status != $5`
	_, err := s.db.Exec(query, userID, stageID, string(models.StageStatusInProgress), time.Now(), string(models.StageStatusCompleted))
	if err != nil {
		slog.Error("PostgresStore MarkStageStarted failed", "error", err, "userID", userID, "stageID", stageID)
		return fmt.Errorf("failed to mark stage %s started: %w", stageID, err)
	}
	slog.Debug("PostgresStore MarkStageStarted succeeded", "userID", userID, "stageID", stageID)
	return nil
}

func (s *PostgresStore) GetCalendarEvents(userID string, rangeStart, rangeEnd time.Time) ([]models.CalendarEvent, error) {
	query := `
		SELECT id, title, start_date, end_date, type, description, status, platform, metadata
		FROM calendar_events
		WHERE user_id = $1 AND start_date <= $2 AND end_date >= $3
		ORDER BY start_date`
	rows, err := s.db.Query(query, userID, rangeEnd, rangeStart)
	if err != nil {
		slog.Error("PostgresStore GetCalendarEvents query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		ev, err := scanCalendarEvent(rows)
		if err != nil {
			slog.Error("PostgresStore GetCalendarEvents scan failed", "error", err)
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetCalendarEvents rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate calendar event rows: %w", err)
	}
	slog.Debug("PostgresStore GetCalendarEvents succeeded", "userID", userID, "count", len(events))
	return events, nil
}

func (s *PostgresStore) CreateCalendarEvent(userID string, event models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := event.Validate(); err != nil {
		slog.Error("PostgresStore CreateCalendarEvent validation failed", "error", err, "title", event.Title)
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.Exec(query, event.ID, userID, event.Title, event.StartDate, event.EndDate,
		string(event.Type), nilIfEmpty(event.Description), string(event.Status),
		nilIfEmpty(event.Platform), nilIfEmpty(metadataJSON))
	if err != nil {
		slog.Error("PostgresStore CreateCalendarEvent failed", "error", err, "title", event.Title)
		return nil, fmt.Errorf("failed to insert calendar event %s: %w", event.Title, err)
	}
	slog.Debug("PostgresStore CreateCalendarEvent succeeded", "id", event.ID, "title", event.Title)
	return &event, nil
}

func (s *PostgresStore) UpdateCalendarEvent(userID, eventID string, event models.CalendarEvent) error {
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
		SET title = $1, start_date = $2, end_date = $3, type = $4, description = $5, status = $6, platform = $7, metadata = $8
		WHERE id = $9 AND user_id = $10`
	res, err := s.db.Exec(query, event.Title, event.StartDate, event.EndDate, string(event.Type),
		nilIfEmpty(event.Description), string(event.Status), nilIfEmpty(event.Platform),
		nilIfEmpty(metadataJSON), eventID, userID)
	if err != nil {
		slog.Error("PostgresStore UpdateCalendarEvent failed", "error", err, "id", eventID)
		return fmt.Errorf("failed to update calendar event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("PostgresStore UpdateCalendarEvent not found", "id", eventID, "userID", userID)
		return ErrNotFound
	}
	slog.Debug("PostgresStore UpdateCalendarEvent succeeded", "id", eventID)
	return nil
}

func (s *PostgresStore) DeleteCalendarEvent(userID, eventID string) error {
	res, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteCalendarEvent failed", "error", err, "id", eventID)
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore DeleteCalendarEvent succeeded", "id", eventID)
	return nil
}

func (s *PostgresStore) GetGoals(userID string) ([]models.Goal, error) {
	rows, err := s.db.Query(`SELECT id, title, type, target, current, deadline, status, category FROM goals WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore GetGoals query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			slog.Error("PostgresStore GetGoals scan failed", "error", err)
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetGoals rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate goal rows: %w", err)
	}
	slog.Debug("PostgresStore GetGoals succeeded", "userID", userID, "count", len(goals))
	return goals, nil
}

func (s *PostgresStore) CreateGoal(userID string, goal models.Goal) (*models.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	query := `
		INSERT INTO goals (id, user_id, title, type, target, current, deadline, status, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.Exec(query, goal.ID, userID, goal.Title, nilIfEmpty(goal.Type),
		goal.Target, goal.Current, nilIfZeroTime(goal.Deadline), nilIfEmpty(goal.Status), nilIfEmpty(goal.Category))
	if err != nil {
		slog.Error("PostgresStore CreateGoal failed", "error", err, "title", goal.Title)
		return nil, fmt.Errorf("failed to insert goal %s: %w", goal.Title, err)
	}
	slog.Debug("PostgresStore CreateGoal succeeded", "id", goal.ID, "title", goal.Title)
	return &goal, nil
}

func (s *PostgresStore) UpdateGoal(userID string, goal models.Goal) error {
	query := `
		UPDATE goals
		SET title = $1, type = $2, target = $3, current = $4, deadline = $5, status = $6, category = $7
		WHERE id = $8 AND user_id = $9`
	res, err := s.db.Exec(query, goal.Title, nilIfEmpty(goal.Type), goal.Target, goal.Current,
		nilIfZeroTime(goal.Deadline), nilIfEmpty(goal.Status), nilIfEmpty(goal.Category), goal.ID, userID)
	if err != nil {
		slog.Error("PostgresStore UpdateGoal failed", "error", err, "id", goal.ID)
		return fmt.Errorf("failed to update goal %s: %w", goal.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore UpdateGoal succeeded", "id", goal.ID)
	return nil
}

func (s *PostgresStore) DeleteGoal(userID, goalID string) error {
	res, err := s.db.Exec(`DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteGoal failed", "error", err, "id", goalID)
		return fmt.Errorf("failed to delete goal %s: %w", goalID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore DeleteGoal succeeded", "id", goalID)
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	} else {
		slog.Debug("Postgres database connection closed successfully")
	}
	return err
}
