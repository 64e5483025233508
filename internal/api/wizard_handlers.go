package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/wizard"
)

// wizardRequest is the shared body shape of wizard mutation endpoints.
// Each operation reads the fields it needs.
type wizardRequest struct {
	FieldID string              `json:"fieldId"`
	Value   string              `json:"value"`
	Checked bool                `json:"checked"`
	Option  string              `json:"option"`
	Date    string              `json:"date"`
	Day     string              `json:"day"`
	Item    models.ScheduleItem `json:"item"`
	ItemID  string              `json:"itemId"`
	Index   *int                `json:"index"`
	Prefill map[string]any      `json:"prefill"`
}

// wizardState is the session snapshot returned after every operation.
type wizardState struct {
	StageID   string            `json:"stageId"`
	StepIndex int               `json:"stepIndex"`
	Step      *models.StageStep `json:"step"`
	FormData  map[string]any    `json:"formData"`
	Focused   map[string]any    `json:"focused,omitempty"`
	FocusedOn string            `json:"focusedField,omitempty"`
}

func stateOf(sess *wizard.Session) wizardState {
	state := wizardState{
		StageID:   sess.Config().ID,
		StepIndex: sess.StepIndex(),
		Step:      sess.Step(),
		FormData:  sess.FormData(),
	}
	if fieldID, draft, ok := sess.Focused(); ok {
		state.Focused = draft
		state.FocusedOn = fieldID
	}
	return state
}

func (s *Server) session(uid, stageID string) (*wizard.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.wizards[wizardKey{uid, stageID}]
	return sess, ok
}

// wizardHandler routes wizard session operations.
//
//	POST   /wizard/{stageID}/open   open or reuse a session
//	GET    /wizard/{stageID}        current state
//	POST   /wizard/{stageID}/{op}   mutate (value, check, toggle, multi,
//	                                custom, date, next, back, save-exit,
//	                                save-next, flush, close, focus/...,
//	                                schedule/..., items/remove)
func (s *Server) wizardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.wizardHandler: processing request", "method", r.Method, "path", r.URL.Path)
	uid := userID(r)
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/wizard"), "/")
	segments := strings.Split(path, "/")
	if segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Missing stage id"))
		return
	}
	stageID := segments[0]
	op := strings.Join(segments[1:], "/")

	if op == "" {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sess, ok := s.session(uid, stageID)
		if !ok {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No open wizard session for stage: "+stageID))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(stateOf(sess)))
		return
	}

	if r.Method != http.MethodPost && op != "options" && op != "grouped" && op != "pools" {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if op == "open" {
		s.openWizardHandler(w, uid, stageID)
		return
	}

	sess, ok := s.session(uid, stageID)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("No open wizard session for stage: "+stageID))
		return
	}

	var req wizardRequest
	if r.Body != nil && r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			slog.Warn("Server.wizardHandler: failed to decode JSON", "error", err, "op", op)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
	}

	var err error
	switch op {
	case "value":
		err = sess.SetValue(req.FieldID, req.Value)
	case "check":
		err = sess.SetChecked(req.FieldID, req.Checked)
	case "toggle":
		err = sess.ToggleOption(req.FieldID, req.Option)
	case "multi":
		err = sess.ToggleMultiValue(req.FieldID, req.Value)
	case "custom":
		err = sess.AddCustomOption(req.FieldID, req.Value)
	case "date":
		err = sess.PickDate(req.FieldID, req.Date)
	case "schedule/add":
		err = sess.AddScheduleItem(req.FieldID, req.Day, req.Item)
	case "schedule/remove":
		err = sess.RemoveScheduleItem(req.FieldID, req.Day, req.ItemID)
	case "items/remove":
		if req.Index == nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: index"))
			return
		}
		err = sess.RemoveItem(req.FieldID, *req.Index)
	case "focus/open":
		if req.Index != nil {
			err = sess.FocusItem(req.FieldID, *req.Index)
		} else {
			err = sess.FocusNew(req.FieldID, req.Prefill)
		}
	case "focus/value":
		err = sess.SetFocusedValue(req.FieldID, req.Value)
	case "focus/date":
		err = sess.PickFocusedDate(req.FieldID, req.Date)
	case "focus/save":
		err = sess.SaveFocused()
	case "focus/close":
		sess.CloseFocused()
	case "next":
		var moved bool
		moved, err = sess.Next()
		if err == nil {
			writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Step changed", map[string]any{"moved": moved, "state": stateOf(sess)}))
			return
		}
	case "back":
		var moved bool
		moved, err = sess.Back()
		if err == nil {
			writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Step changed", map[string]any{"moved": moved, "state": stateOf(sess)}))
			return
		}
	case "flush":
		sess.Flush()
	case "save-exit":
		if err = sess.SaveAndExit(); err == nil {
			s.dropSession(uid, stageID)
			writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Stage completed", nil))
			return
		}
	case "save-next":
		var next *wizard.Session
		next, err = sess.SaveAndStartNext()
		if err == nil {
			s.mu.Lock()
			delete(s.wizards, wizardKey{uid, stageID})
			s.wizards[wizardKey{uid, next.Config().ID}] = next
			s.mu.Unlock()
			writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Next stage started", stateOf(next)))
			return
		}
	case "close":
		sess.Close()
		s.dropSession(uid, stageID)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session closed", nil))
		return
	case "options":
		var options []string
		options, err = sess.Options(r.URL.Query().Get("field"))
		if err == nil {
			writeJSONResponse(w, http.StatusOK, models.Success(options))
			return
		}
	case "grouped":
		var grouped map[string][]map[string]any
		grouped, err = sess.GroupedItems(r.URL.Query().Get("field"))
		if err == nil {
			writeJSONResponse(w, http.StatusOK, models.Success(grouped))
			return
		}
	case "pools":
		var campaigns, buckets []string
		campaigns, buckets, err = sess.SchedulePools()
		if err == nil {
			writeJSONResponse(w, http.StatusOK, models.Success(map[string]any{"campaigns": campaigns, "buckets": buckets}))
			return
		}
	default:
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown wizard operation: "+op))
		return
	}

	if err != nil {
		slog.Warn("Server.wizardHandler: operation failed", "op", op, "error", err)
		writeJSONResponse(w, wizardErrorStatus(err), models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(stateOf(sess)))
}

func (s *Server) openWizardHandler(w http.ResponseWriter, uid, stageID string) {
	s.mu.Lock()
	if sess, ok := s.wizards[wizardKey{uid, stageID}]; ok {
		s.mu.Unlock()
		writeJSONResponse(w, http.StatusOK, models.Success(stateOf(sess)))
		return
	}
	s.mu.Unlock()

	sess, err := wizard.NewSession(s.st, uid, stageID)
	if err != nil {
		slog.Error("Server.openWizardHandler: failed to open session", "error", err, "stageID", stageID)
		writeJSONResponse(w, wizardErrorStatus(err), models.Error(err.Error()))
		return
	}
	s.mu.Lock()
	s.wizards[wizardKey{uid, stageID}] = sess
	s.mu.Unlock()
	slog.Info("Server.openWizardHandler: wizard session opened", "userID", uid, "stageID", stageID)
	writeJSONResponse(w, http.StatusCreated, models.Success(stateOf(sess)))
}

func (s *Server) dropSession(uid, stageID string) {
	s.mu.Lock()
	delete(s.wizards, wizardKey{uid, stageID})
	s.mu.Unlock()
}

func wizardErrorStatus(err error) int {
	switch {
	case errors.Is(err, wizard.ErrUnknownStage), errors.Is(err, wizard.ErrUnknownField):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrSessionClosed), errors.Is(err, wizard.ErrFocusActive):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrWrongFieldType), errors.Is(err, wizard.ErrCustomNotAllowed),
		errors.Is(err, wizard.ErrInvalidDay), errors.Is(err, wizard.ErrMaxItemsReached),
		errors.Is(err, wizard.ErrItemOutOfRange), errors.Is(err, wizard.ErrNoFocusedItem),
		errors.Is(err, wizard.ErrNoNextStage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
