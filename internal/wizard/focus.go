package wizard

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/BeatGrid/StrategyPipe/internal/models"
)

// Focused mode: a single-item editor for array fields. The draft is held
// apart from formData and only written back on SaveFocused; the parent
// session's debounce is the only autosave in play.

// FocusItem opens the focused editor on an existing array item.
func (s *Session) FocusItem(fieldID string, index int) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeArray {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.focused != nil {
		return ErrFocusActive
	}
	items := models.AsItems(s.formData[fieldID])
	if index < 0 || index >= len(items) {
		return ErrItemOutOfRange
	}
	draft := make(map[string]any, len(items[index]))
	for k, v := range items[index] {
		draft[k] = v
	}
	s.focused = &focusState{fieldID: fieldID, index: index, draft: draft}
	slog.Debug("Session.FocusItem: focused existing item", "fieldID", fieldID, "index", index)
	return nil
}

// FocusNew opens the focused editor on a fresh item. prefill seeds draft
// values, used by grouped bucket views to pre-assign the grouping key.
func (s *Session) FocusNew(fieldID string, prefill map[string]any) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeArray {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.focused != nil {
		return ErrFocusActive
	}
	if f.MaxItems > 0 {
		if items := models.AsItems(s.formData[fieldID]); len(items) >= f.MaxItems {
			return ErrMaxItemsReached
		}
	}
	draft := make(map[string]any, len(prefill))
	for k, v := range prefill {
		draft[k] = v
	}
	s.focused = &focusState{fieldID: fieldID, index: -1, draft: draft}
	slog.Debug("Session.FocusNew: focused new item", "fieldID", fieldID)
	return nil
}

// Focused reports the field and draft under focus, or false when none.
func (s *Session) Focused() (fieldID string, draft map[string]any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focused == nil {
		return "", nil, false
	}
	out := make(map[string]any, len(s.focused.draft))
	for k, v := range s.focused.draft {
		out[k] = v
	}
	return s.focused.fieldID, out, true
}

// SetFocusedValue sets one nested field of the focused draft.
func (s *Session) SetFocusedValue(nestedFieldID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.focused == nil {
		return ErrNoFocusedItem
	}
	f, _ := s.cfg.Field(s.focused.fieldID)
	known := false
	for _, nested := range f.Fields {
		if nested.ID == nestedFieldID {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownField
	}
	s.focused.draft[nestedFieldID] = value
	return nil
}

// PickFocusedDate applies the two-click range picker to a nested
// date-range field of the focused draft.
func (s *Session) PickFocusedDate(nestedFieldID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.focused == nil {
		return ErrNoFocusedItem
	}
	f, _ := s.cfg.Field(s.focused.fieldID)
	var nested *models.StageField
	for i := range f.Fields {
		if f.Fields[i].ID == nestedFieldID {
			nested = &f.Fields[i]
			break
		}
	}
	if nested == nil {
		return ErrUnknownField
	}
	if nested.Type != models.FieldTypeDateRange {
		return ErrWrongFieldType
	}
	current := models.AsDateRange(s.focused.draft[nestedFieldID])
	var next models.DateRange
	switch {
	case current.From == "" || current.Complete():
		next = models.DateRange{From: date}
	default:
		next = models.DateRange{From: current.From, To: date}.Normalize()
	}
	s.focused.draft[nestedFieldID] = next
	return nil
}

// SaveFocused writes the draft back into the item list (appending when the
// focus was opened on a new item), closes the editor and queues an
// autosave.
func (s *Session) SaveFocused() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.focused == nil {
		return ErrNoFocusedItem
	}
	fieldID := s.focused.fieldID
	items := models.AsItems(s.formData[fieldID])
	if s.focused.index >= 0 {
		if s.focused.index >= len(items) {
			return ErrItemOutOfRange
		}
		items[s.focused.index] = s.focused.draft
	} else {
		if s.focused.draft["id"] == nil || s.focused.draft["id"] == "" {
			s.focused.draft["id"] = uuid.New().String()
		}
		items = append(items, s.focused.draft)
	}
	s.formData[fieldID] = items
	s.focused = nil
	slog.Debug("Session.SaveFocused: draft committed", "fieldID", fieldID, "count", len(items))
	s.scheduleAutosaveLocked()
	return nil
}

// CloseFocused discards the draft without touching the item list.
func (s *Session) CloseFocused() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focused != nil {
		slog.Debug("Session.CloseFocused: draft discarded", "fieldID", s.focused.fieldID)
	}
	s.focused = nil
}

// RemoveItem deletes one item from an array field.
func (s *Session) RemoveItem(fieldID string, index int) error {
	f, err := s.field(fieldID)
	if err != nil {
		return err
	}
	if f.Type != models.FieldTypeArray {
		return ErrWrongFieldType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	items := models.AsItems(s.formData[fieldID])
	if index < 0 || index >= len(items) {
		return ErrItemOutOfRange
	}
	s.formData[fieldID] = append(items[:index], items[index+1:]...)
	s.scheduleAutosaveLocked()
	return nil
}
