// Package wizard drives a user through one strategy stage: step
// navigation, field mutation, focused editing of repeating-group items,
// and debounced autosave of the working copy.
package wizard

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/stages"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

// Error variables for better error handling and testability
var (
	ErrUnknownStage     = errors.New("unknown stage id")
	ErrUnknownField     = errors.New("unknown field id")
	ErrWrongFieldType   = errors.New("operation does not match field type")
	ErrCustomNotAllowed = errors.New("field does not accept custom options")
	ErrNoFocusedItem    = errors.New("no focused item")
	ErrFocusActive      = errors.New("another item is already focused")
	ErrItemOutOfRange   = errors.New("item index out of range")
	ErrMaxItemsReached  = errors.New("item limit reached for field")
	ErrInvalidDay       = errors.New("invalid schedule day")
	ErrSessionClosed    = errors.New("wizard session is closed")
	ErrNoNextStage      = errors.New("no stage follows the current one")
)

// Opts holds configuration options for wizard sessions.
type Opts struct {
	// AutosaveInterval overrides the debounced autosave idle window.
	AutosaveInterval time.Duration
}

// Option defines a functional option for wizard session configuration.
type Option func(*Opts)

// WithAutosaveInterval sets the debounced autosave idle window.
func WithAutosaveInterval(d time.Duration) Option {
	return func(o *Opts) { o.AutosaveInterval = d }
}

// focusState tracks the full-screen single-item editor for an array field.
type focusState struct {
	fieldID string
	index   int // -1 while adding a new item
	draft   map[string]any
}

// Session is the working copy of one stage for one user. The in-memory
// formData is the source of truth until flushed; concurrent edits from
// elsewhere are overwritten on the next save.
type Session struct {
	userID string
	cfg    *models.StageConfig
	store  store.Store

	mu            sync.Mutex
	stepIndex     int
	formData      map[string]any
	customOptions map[string][]string
	focused       *focusState
	debouncer     *Debouncer
	closed        bool
}

// NewSession opens a wizard session for a stage, seeding the working copy
// from the persisted record and marking the stage started.
func NewSession(st store.Store, userID, stageID string, opts ...Option) (*Session, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	interval := cfg.AutosaveInterval
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}

	stageCfg, ok := stages.Get(stageID)
	if !ok {
		slog.Error("Session.NewSession: unknown stage", "stageID", stageID)
		return nil, ErrUnknownStage
	}

	rec, err := st.GetStrategy(userID, stageID)
	if err != nil {
		slog.Error("Session.NewSession: failed to load strategy", "error", err, "stageID", stageID)
		return nil, fmt.Errorf("failed to load strategy %s: %w", stageID, err)
	}
	var saved map[string]any
	if rec != nil {
		saved = rec.Data
	}

	if err := st.MarkStageStarted(userID, stageID); err != nil {
		slog.Error("Session.NewSession: failed to mark stage started", "error", err, "stageID", stageID)
		return nil, err
	}

	s := &Session{
		userID:        userID,
		cfg:           stageCfg,
		store:         st,
		formData:      seedFormData(stageCfg, saved),
		customOptions: make(map[string][]string),
		debouncer:     NewDebouncer(interval),
	}
	slog.Debug("Session.NewSession: session opened", "userID", userID, "stageID", stageID, "steps", len(stageCfg.Steps))
	return s, nil
}

// seedFormData merges saved values over type-appropriate defaults: empty
// list for array and multiselect fields, empty day map for weekly
// schedules, empty string for everything else.
func seedFormData(cfg *models.StageConfig, saved map[string]any) map[string]any {
	data := make(map[string]any)
	for _, step := range cfg.Steps {
		for _, field := range step.Fields {
			switch field.Type {
			case models.FieldTypeArray, models.FieldTypeMultiselect:
				data[field.ID] = []any{}
			case models.FieldTypeWeeklySchedule:
				data[field.ID] = map[string]any{}
			case models.FieldTypeCheckbox:
				data[field.ID] = false
			default:
				data[field.ID] = ""
			}
		}
	}
	for k, v := range saved {
		data[k] = v
	}
	return data
}

// Config returns the stage being edited.
func (s *Session) Config() *models.StageConfig {
	return s.cfg
}

// StepIndex returns the current step position.
func (s *Session) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex
}

// Step returns the current step.
func (s *Session) Step() *models.StageStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &s.cfg.Steps[s.stepIndex]
}

// FormData returns a snapshot of the working copy, isolated from later
// edits.
func (s *Session) FormData() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Value returns the working value of one field.
func (s *Session) Value(fieldID string) (any, error) {
	if _, ok := s.cfg.Field(fieldID); !ok {
		return nil, ErrUnknownField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formData[fieldID], nil
}

func (s *Session) field(fieldID string) (*models.StageField, error) {
	f, ok := s.cfg.Field(fieldID)
	if !ok {
		return nil, ErrUnknownField
	}
	return f, nil
}

// snapshotLocked deep-copies formData for a save. The debounced save
// goroutine marshals the snapshot after s.mu is released, so it must not
// share nested maps or slices with the live working copy. Caller holds
// s.mu.
func (s *Session) snapshotLocked() map[string]any {
	out := make(map[string]any, len(s.formData))
	for k, v := range s.formData {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container shapes that appear in formData. Scalars
// and value types (strings, bools, RankedChoice, DateRange) are safe to
// share.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			m := make(map[string]any, len(item))
			for k, nested := range item {
				m[k] = cloneValue(nested)
			}
			out[i] = m
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case models.WeekSchedule:
		out := make(models.WeekSchedule, len(t))
		for day, items := range t {
			out[day] = append([]models.ScheduleItem(nil), items...)
		}
		return out
	default:
		return v
	}
}

// scheduleAutosaveLocked queues a debounced in_progress save of the
// current working copy. Caller holds s.mu.
func (s *Session) scheduleAutosaveLocked() {
	if s.closed {
		return
	}
	snapshot := s.snapshotLocked()
	s.debouncer.Trigger(func() {
		if err := s.store.SaveStrategy(s.userID, s.cfg.ID, snapshot, models.StageStatusInProgress); err != nil {
			slog.Error("Session autosave failed", "error", err, "stageID", s.cfg.ID)
		} else {
			slog.Debug("Session autosave succeeded", "stageID", s.cfg.ID)
		}
	})
}

// saveNow persists the working copy immediately with the given status and
// drops any pending autosave it would duplicate.
func (s *Session) saveNow(status models.StageStatus) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.debouncer.Stop()
	if err := s.store.SaveStrategy(s.userID, s.cfg.ID, snapshot, status); err != nil {
		slog.Error("Session save failed", "error", err, "stageID", s.cfg.ID, "status", status)
		return err
	}
	slog.Debug("Session save succeeded", "stageID", s.cfg.ID, "status", status)
	return nil
}

// Next advances to the following step, saving progress. It reports false
// when already on the last step.
func (s *Session) Next() (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	if s.stepIndex >= len(s.cfg.Steps)-1 {
		s.mu.Unlock()
		return false, nil
	}
	s.stepIndex++
	s.mu.Unlock()
	// Best effort: navigation proceeds even if the save fails.
	if err := s.saveNow(models.StageStatusInProgress); err != nil {
		slog.Warn("Session.Next: progress save failed", "error", err, "stageID", s.cfg.ID)
	}
	return true, nil
}

// Back moves to the previous step, saving progress. It reports false when
// already on the first step.
func (s *Session) Back() (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	if s.stepIndex == 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.stepIndex--
	s.mu.Unlock()
	if err := s.saveNow(models.StageStatusInProgress); err != nil {
		slog.Warn("Session.Back: progress save failed", "error", err, "stageID", s.cfg.ID)
	}
	return true, nil
}

// SaveAndExit commits the stage as completed and closes the session.
func (s *Session) SaveAndExit() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()
	if err := s.saveNow(models.StageStatusCompleted); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Stop()
	return nil
}

// SaveAndStartNext commits the stage as completed and opens a session for
// the following stage.
func (s *Session) SaveAndStartNext() (*Session, error) {
	next, ok := stages.Next(s.cfg.ID)
	if !ok {
		return nil, ErrNoNextStage
	}
	if err := s.SaveAndExit(); err != nil {
		return nil, err
	}
	return NewSession(s.store, s.userID, next.ID, WithAutosaveInterval(s.debouncer.interval))
}

// Flush forces any pending autosave to run now.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Close flushes pending edits and stops the session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Flush()
	slog.Debug("Session closed", "stageID", s.cfg.ID)
}

// SetValue sets a free-text or textarea value.
func (s *Session) SetValue(fieldID string, value string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeText && f.Type != models.FieldTypeTextarea {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.formData[fieldID] = value
	s.scheduleAutosaveLocked()
	return nil
}

// SetChecked sets a checkbox value.
func (s *Session) SetChecked(fieldID string, checked bool) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeCheckbox {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.formData[fieldID] = checked
	s.scheduleAutosaveLocked()
	return nil
}

// ToggleOption applies a click on a select option. Plain selects set the
// value and a re-click keeps it. With ranked choices enabled, clicking an
// already-ranked option removes it and shifts lower ranks up; clicking a
// new option fills the first empty slot, or replaces the last slot when
// all are full.
func (s *Session) ToggleOption(fieldID, option string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeSelect {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !f.AllowSecondary {
		s.formData[fieldID] = option
		s.scheduleAutosaveLocked()
		return nil
	}
	limit := f.RankCap()
	current := models.AsRanked(s.formData[fieldID])
	if current.Contains(option) {
		switch option {
		case current.Primary:
			current.Primary = ""
		case current.Secondary:
			current.Secondary = ""
		default:
			current.Tertiary = ""
		}
		s.formData[fieldID] = current.Compact()
		s.scheduleAutosaveLocked()
		return nil
	}
	slots := current.Slots()
	if len(slots) < limit {
		slots = append(slots, option)
	} else {
		slots[limit-1] = option
	}
	var ranked models.RankedChoice
	if len(slots) > 0 {
		ranked.Primary = slots[0]
	}
	if len(slots) > 1 {
		ranked.Secondary = slots[1]
	}
	if len(slots) > 2 {
		ranked.Tertiary = slots[2]
	}
	s.formData[fieldID] = ranked
	s.scheduleAutosaveLocked()
	return nil
}

// ToggleMultiValue toggles set membership on a multiselect field.
func (s *Session) ToggleMultiValue(fieldID, value string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeMultiselect {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	current := models.AsStringSlice(s.formData[fieldID])
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	s.formData[fieldID] = next
	s.scheduleAutosaveLocked()
	return nil
}

// AddCustomOption accepts a user-typed option outside the static list. The
// value is remembered for the session and applied to the field: selects
// select it, multiselects append it.
func (s *Session) AddCustomOption(fieldID, value string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if !f.AllowCustom {
		return ErrCustomNotAllowed
	}
	s.mu.Lock()
	known := false
	for _, v := range s.customOptions[fieldID] {
		if v == value {
			known = true
			break
		}
	}
	if !known {
		s.customOptions[fieldID] = append(s.customOptions[fieldID], value)
	}
	s.mu.Unlock()

	switch f.Type {
	case models.FieldTypeSelect:
		return s.ToggleOption(fieldID, value)
	case models.FieldTypeMultiselect:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return ErrSessionClosed
		}
		current := models.AsStringSlice(s.formData[fieldID])
		for _, v := range current {
			if v == value {
				return nil
			}
		}
		s.formData[fieldID] = append(current, value)
		s.scheduleAutosaveLocked()
		return nil
	default:
		return ErrWrongFieldType
	}
}

// CustomOptions returns the custom values accepted for a field during this
// session.
func (s *Session) CustomOptions(fieldID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.customOptions[fieldID]))
	copy(out, s.customOptions[fieldID])
	return out
}

// PickDate applies one click of the two-click range picker. The first
// click sets from and clears to; the second sets to, swapping when the
// clicked date sorts before from; a click with both ends set starts a new
// range. Dates are ISO YYYY-MM-DD strings.
func (s *Session) PickDate(fieldID, date string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeDateRange {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	current := models.AsDateRange(s.formData[fieldID])
	var next models.DateRange
	switch {
	case current.From == "" || current.Complete():
		next = models.DateRange{From: date}
	default:
		next = models.DateRange{From: current.From, To: date}.Normalize()
	}
	s.formData[fieldID] = next
	s.scheduleAutosaveLocked()
	return nil
}

// AddScheduleItem appends an item to a weekly-schedule day bucket.
func (s *Session) AddScheduleItem(fieldID, day string, item models.ScheduleItem) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeWeeklySchedule {
		return ErrWrongFieldType
	}
	if !models.IsWeekDay(day) {
		return ErrInvalidDay
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	schedule := models.AsWeekSchedule(s.formData[fieldID])
	if schedule == nil {
		schedule = models.WeekSchedule{}
	}
	schedule[day] = append(schedule[day], item)
	s.formData[fieldID] = schedule
	s.scheduleAutosaveLocked()
	return nil
}

// RemoveScheduleItem removes one item from a weekly-schedule day bucket.
func (s *Session) RemoveScheduleItem(fieldID, day, itemID string) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeWeeklySchedule {
		return ErrWrongFieldType
	}
	if !models.IsWeekDay(day) {
		return ErrInvalidDay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	schedule := models.AsWeekSchedule(s.formData[fieldID])
	items := schedule[day]
	next := make([]models.ScheduleItem, 0, len(items))
	for _, it := range items {
		if it.ID != itemID {
			next = append(next, it)
		}
	}
	schedule[day] = next
	s.formData[fieldID] = schedule
	s.scheduleAutosaveLocked()
	return nil
}

// Options returns the selectable options for a field: the static list,
// dynamically sourced values when the field declares a source path, and
// the session's accepted custom values.
func (s *Session) Options(fieldID string) ([]string, error) {
	f, err := s.field(fieldID)
	if err != nil {
		return nil, err
	}
	out := append([]string{}, f.Options...)
	if f.Source != "" {
		strategies, err := s.loadStrategies()
		if err != nil {
			return nil, err
		}
		out = append(out, stages.ResolveSource(strategies, f.Source)...)
	}
	out = append(out, s.CustomOptions(fieldID)...)
	return out, nil
}

// GroupedItems partitions an array field's items into buckets per its
// groupBySource declaration. Fields without one get a single Unassigned
// bucket.
func (s *Session) GroupedItems(fieldID string) (map[string][]map[string]any, error) {
	f, err := s.field(fieldID)
	if err != nil {
		return nil, err
	}
	if f.Type != models.FieldTypeArray {
		return nil, ErrWrongFieldType
	}
	s.mu.Lock()
	items := models.AsItems(s.formData[fieldID])
	s.mu.Unlock()
	var buckets []string
	if f.GroupBySource != "" {
		strategies, err := s.loadStrategies()
		if err != nil {
			return nil, err
		}
		buckets = stages.ResolveSource(strategies, f.GroupBySource)
	}
	return stages.GroupItems(items, buckets), nil
}

// SchedulePools returns the two option pools offered by the weekly
// schedule editor: campaign names and content bucket names.
func (s *Session) SchedulePools() (campaigns, buckets []string, err error) {
	strategies, err := s.loadStrategies()
	if err != nil {
		return nil, nil, err
	}
	campaigns = stages.ResolveSource(strategies, "stage-5.campaigns")
	buckets = stages.ResolveSource(strategies, "stage-6.bucket_list")
	return campaigns, buckets, nil
}

func (s *Session) loadStrategies() (map[string]models.StrategyRecord, error) {
	records, err := s.store.GetStrategies(s.userID)
	if err != nil {
		slog.Error("Session.loadStrategies failed", "error", err, "userID", s.userID)
		return nil, err
	}
	out := make(map[string]models.StrategyRecord, len(records)+1)
	for _, rec := range records {
		out[rec.StageID] = rec
	}
	// The working copy wins over the persisted record for this stage.
	s.mu.Lock()
	out[s.cfg.ID] = models.StrategyRecord{StageID: s.cfg.ID, Data: s.snapshotLocked()}
	s.mu.Unlock()
	return out, nil
}
