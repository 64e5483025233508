// Package store provides storage backends for StrategyPipe.
//
// It includes an in-memory store for tests and small deployments, plus
// SQLite and PostgreSQL stores selected by DSN.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/google/uuid"
)

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the database connection string.
	DSN string
}

// Option defines a functional option for store configuration.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType inspects a DSN and reports the matching driver name,
// "postgres" or "sqlite3". Anything that does not look like a Postgres
// connection string is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// Store defines persistence for strategy records, calendar events and
// goals. All records are scoped to a user id; last-write-wins, no
// version checks.
type Store interface {
	GetStrategies(userID string) ([]models.StrategyRecord, error)
	GetStrategy(userID, stageID string) (*models.StrategyRecord, error)
	SaveStrategy(userID, stageID string, data map[string]any, status models.StageStatus) error
	MarkStageStarted(userID, stageID string) error

	GetCalendarEvents(userID string, rangeStart, rangeEnd time.Time) ([]models.CalendarEvent, error)
	CreateCalendarEvent(userID string, event models.CalendarEvent) (*models.CalendarEvent, error)
	UpdateCalendarEvent(userID, eventID string, event models.CalendarEvent) error
	DeleteCalendarEvent(userID, eventID string) error

	GetGoals(userID string) ([]models.Goal, error)
	CreateGoal(userID string, goal models.Goal) (*models.Goal, error)
	UpdateGoal(userID string, goal models.Goal) error
	DeleteGoal(userID, goalID string) error

	Close() error
}

type strategyKey struct {
	userID  string
	stageID string
}

// InMemoryStore is a simple in-memory store, safe for concurrent use.
type InMemoryStore struct {
	mu         sync.RWMutex
	strategies map[strategyKey]models.StrategyRecord
	events     map[string]models.CalendarEvent
	eventOwner map[string]string
	goals      map[string][]models.Goal
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		strategies: make(map[strategyKey]models.StrategyRecord),
		events:     make(map[string]models.CalendarEvent),
		eventOwner: make(map[string]string),
		goals:      make(map[string][]models.Goal),
	}
}

func (s *InMemoryStore) GetStrategies(userID string) ([]models.StrategyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StrategyRecord
	for key, rec := range s.strategies {
		if key.userID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StageID < out[j].StageID })
	return out, nil
}

func (s *InMemoryStore) GetStrategy(userID, stageID string) (*models.StrategyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.strategies[strategyKey{userID, stageID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *InMemoryStore) SaveStrategy(userID, stageID string, data map[string]any, status models.StageStatus) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	if !models.IsValidStageStatus(status) {
		return models.ErrInvalidStageStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[strategyKey{userID, stageID}] = models.StrategyRecord{
		StageID:     stageID,
		Status:      status,
		Data:        data,
		LastUpdated: time.Now(),
	}
	return nil
}

// MarkStageStarted records that the user opened a stage. A completed stage
// is never downgraded.
func (s *InMemoryStore) MarkStageStarted(userID, stageID string) error {
	if stageID == "" {
		return models.ErrEmptyStageID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strategyKey{userID, stageID}
	rec, ok := s.strategies[key]
	if ok && rec.Status == models.StageStatusCompleted {
		return nil
	}
	if !ok {
		rec = models.StrategyRecord{StageID: stageID, Data: map[string]any{}}
	}
	rec.Status = models.StageStatusInProgress
	rec.LastUpdated = time.Now()
	s.strategies[key] = rec
	return nil
}

func (s *InMemoryStore) GetCalendarEvents(userID string, rangeStart, rangeEnd time.Time) ([]models.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CalendarEvent
	for id, ev := range s.events {
		if s.eventOwner[id] != userID {
			continue
		}
		end := ev.EndDate
		if end.IsZero() {
			end = ev.StartDate
		}
		if !ev.StartDate.After(rangeEnd) && !end.Before(rangeStart) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *InMemoryStore) CreateCalendarEvent(userID string, event models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := event.Validate(); err != nil {
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	s.eventOwner[event.ID] = userID
	return &event, nil
}

func (s *InMemoryStore) UpdateCalendarEvent(userID, eventID string, event models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventOwner[eventID] != userID {
		return ErrNotFound
	}
	event.ID = eventID
	if event.EndDate.IsZero() {
		event.EndDate = event.StartDate
	}
	s.events[eventID] = event
	return nil
}

func (s *InMemoryStore) DeleteCalendarEvent(userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventOwner[eventID] != userID {
		return ErrNotFound
	}
	delete(s.events, eventID)
	delete(s.eventOwner, eventID)
	return nil
}

func (s *InMemoryStore) GetGoals(userID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Goal, len(s.goals[userID]))
	copy(out, s.goals[userID])
	return out, nil
}

func (s *InMemoryStore) CreateGoal(userID string, goal models.Goal) (*models.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[userID] = append(s.goals[userID], goal)
	return &goal, nil
}

func (s *InMemoryStore) UpdateGoal(userID string, goal models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals[userID] {
		if s.goals[userID][i].ID == goal.ID {
			s.goals[userID][i] = goal
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) DeleteGoal(userID, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goals := s.goals[userID]
	for i := range goals {
		if goals[i].ID == goalID {
			s.goals[userID] = append(goals[:i], goals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
