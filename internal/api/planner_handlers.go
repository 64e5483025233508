package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/planner"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

// plannerSession returns the per-user chat session, creating it on
// first use.
func (s *Server) plannerSession(uid string) (*planner.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.planners[uid]; ok {
		return sess, nil
	}
	if s.ga == nil {
		return nil, errors.New("planner chat is not configured")
	}
	sess, err := planner.NewSession(s.ga, s.st, uid)
	if err != nil {
		return nil, err
	}
	s.planners[uid] = sess
	return sess, nil
}

// plannerHandler routes the AI planner chat operations.
//
//	GET    /planner/messages         chat history
//	POST   /planner/messages         send one user turn
//	POST   /planner/extract          run the extraction phase
//	GET    /planner/proposed         pending proposals
//	DELETE /planner/proposed/{index} drop one proposal
//	POST   /planner/approve          persist all proposals
func (s *Server) plannerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.plannerHandler: processing request", "method", r.Method, "path", r.URL.Path)
	uid := userID(r)
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/planner"), "/")
	segments := strings.Split(path, "/")

	sess, err := s.plannerSession(uid)
	if err != nil {
		slog.Error("Server.plannerHandler: session unavailable", "error", err, "userID", uid)
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error(err.Error()))
		return
	}

	switch segments[0] {
	case "messages":
		switch r.Method {
		case http.MethodGet:
			writeJSONResponse(w, http.StatusOK, models.Success(sess.Messages()))
		case http.MethodPost:
			var body struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				slog.Warn("Server.plannerHandler: failed to decode JSON", "error", err)
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
				return
			}
			reply, intent, err := sess.Send(r.Context(), body.Text)
			if err != nil {
				writeJSONResponse(w, http.StatusBadGateway, models.Error(planner.MsgConnectionError))
				return
			}
			writeJSONResponse(w, http.StatusOK, models.Success(map[string]any{
				"reply":             reply,
				"segments":          planner.FormatMessage(reply),
				"integrationIntent": intent,
			}))
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "extract":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		events, err := sess.ExtractEvents(r.Context())
		if err != nil {
			if errors.Is(err, planner.ErrExtractionFailed) {
				writeJSONResponse(w, http.StatusUnprocessableEntity, models.Error(planner.MsgExtractionFailed))
				return
			}
			writeJSONResponse(w, http.StatusBadGateway, models.Error(planner.MsgGenerationFailed))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(events))
	case "proposed":
		if len(segments) == 2 {
			if r.Method != http.MethodDelete {
				w.Header().Set("Allow", http.MethodDelete)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			index, err := strconv.Atoi(segments[1])
			if err != nil {
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid proposal index"))
				return
			}
			sess.RemoveProposed(index)
			writeJSONResponse(w, http.StatusOK, models.Success(sess.Proposed()))
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(sess.Proposed()))
	case "style":
		switch r.Method {
		case http.MethodGet:
			writeJSONResponse(w, http.StatusOK, models.Success(sess.Style()))
		case http.MethodPost:
			var body struct {
				Tags []string `json:"tags"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				slog.Warn("Server.plannerHandler: failed to decode JSON", "error", err)
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
				return
			}
			writeJSONResponse(w, http.StatusOK, models.Success(sess.SetStyle(body.Tags)))
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "approve":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		created, err := sess.ApproveAll()
		if err != nil {
			if errors.Is(err, planner.ErrNoProposedEvents) {
				writeJSONResponse(w, http.StatusBadRequest, models.Error("No proposed events to approve"))
				return
			}
			slog.Error("Server.plannerHandler: approve failed", "error", err, "userID", uid)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save events"))
			return
		}
		slog.Info("Server.plannerHandler: proposals approved", "userID", uid, "count", len(created))
		writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage(planner.MsgEventsAdded, created))
	default:
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown planner endpoint"))
	}
}

// calendarEventsHandler serves persisted calendar events.
//
//	GET    /calendar/events?start=&end=  events in a window
//	POST   /calendar/events              create
//	PUT    /calendar/events/{id}         update
//	DELETE /calendar/events/{id}         delete
func (s *Server) calendarEventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.calendarEventsHandler: processing request", "method", r.Method, "path", r.URL.Path)
	uid := userID(r)
	eventID := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/calendar/events"), "/")

	if eventID == "" {
		switch r.Method {
		case http.MethodGet:
			rangeStart, err1 := time.Parse("2006-01-02", r.URL.Query().Get("start"))
			rangeEnd, err2 := time.Parse("2006-01-02", r.URL.Query().Get("end"))
			if err1 != nil || err2 != nil {
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing or invalid start/end dates (expected YYYY-MM-DD)"))
				return
			}
			events, err := s.st.GetCalendarEvents(uid, rangeStart, rangeEnd)
			if err != nil {
				slog.Error("Server.calendarEventsHandler: failed to fetch events", "error", err, "userID", uid)
				writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch events"))
				return
			}
			writeJSONResponse(w, http.StatusOK, models.Success(events))
		case http.MethodPost:
			var event models.CalendarEvent
			if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
				slog.Warn("Server.calendarEventsHandler: failed to decode JSON", "error", err)
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
				return
			}
			created, err := s.st.CreateCalendarEvent(uid, event)
			if err != nil {
				slog.Warn("Server.calendarEventsHandler: create failed", "error", err)
				writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
				return
			}
			slog.Info("Server.calendarEventsHandler: event created", "userID", uid, "eventID", created.ID)
			writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Event created", created))
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		var event models.CalendarEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			slog.Warn("Server.calendarEventsHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if err := s.st.UpdateCalendarEvent(uid, eventID, event); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONResponse(w, http.StatusNotFound, models.Error("Event not found: "+eventID))
				return
			}
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Event updated", nil))
	case http.MethodDelete:
		if err := s.st.DeleteCalendarEvent(uid, eventID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONResponse(w, http.StatusNotFound, models.Error("Event not found: "+eventID))
				return
			}
			slog.Error("Server.calendarEventsHandler: delete failed", "error", err, "eventID", eventID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete event"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Event deleted", nil))
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// calendarGridHandler serves the derived month view
// (GET /calendar/grid?year=&month=).
func (s *Server) calendarGridHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.calendarGridHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	uid := userID(r)
	year, err1 := strconv.Atoi(r.URL.Query().Get("year"))
	month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing or invalid year/month"))
		return
	}
	grid, err := s.cal.Month(uid, year, time.Month(month), time.Now().UTC())
	if err != nil {
		slog.Error("Server.calendarGridHandler: failed to build grid", "error", err, "userID", uid)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build calendar"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(grid))
}
