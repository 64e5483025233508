package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/stages"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

// stagesHandler serves the stage catalog (GET /stages, GET /stages/{id}).
func (s *Server) stagesHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.stagesHandler: processing stages request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.stagesHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	stageID := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/stages"), "/")
	if stageID == "" {
		writeJSONResponse(w, http.StatusOK, models.Success(stages.All()))
		return
	}
	cfg, ok := stages.Get(stageID)
	if !ok {
		slog.Warn("Server.stagesHandler: unknown stage", "stageID", stageID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown stage: "+stageID))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(cfg))
}

// strategiesHandler serves the strategy records of a user.
//
//	GET  /strategies            all records
//	GET  /strategies/{stageID}  one record
//	PUT  /strategies/{stageID}  save data and status
//	POST /strategies/{stageID}/start  mark the stage started
func (s *Server) strategiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.strategiesHandler: processing request", "method", r.Method, "path", r.URL.Path)
	uid := userID(r)
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/strategies"), "/")
	segments := strings.Split(path, "/")

	if len(segments) == 1 && segments[0] == "" {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		records, err := s.st.GetStrategies(uid)
		if err != nil {
			slog.Error("Server.strategiesHandler: failed to fetch strategies", "error", err, "userID", uid)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch strategies"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(records))
		return
	}

	stageID := segments[0]
	if len(segments) == 2 && segments[1] == "start" {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := s.st.MarkStageStarted(uid, stageID); err != nil {
			slog.Error("Server.strategiesHandler: failed to mark stage started", "error", err, "stageID", stageID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to mark stage started"))
			return
		}
		slog.Info("Server.strategiesHandler: stage started", "userID", uid, "stageID", stageID)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Stage started", nil))
		return
	}
	if len(segments) != 1 {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown strategies endpoint"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.st.GetStrategy(uid, stageID)
		if err != nil {
			slog.Error("Server.strategiesHandler: failed to fetch strategy", "error", err, "stageID", stageID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch strategy"))
			return
		}
		if rec == nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No record for stage: "+stageID))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(rec))
	case http.MethodPut:
		var body struct {
			Data   map[string]any     `json:"data"`
			Status models.StageStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			slog.Warn("Server.strategiesHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if body.Status == "" {
			body.Status = models.StageStatusInProgress
		}
		if err := s.st.SaveStrategy(uid, stageID, body.Data, body.Status); err != nil {
			slog.Error("Server.strategiesHandler: failed to save strategy", "error", err, "stageID", stageID)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Info("Server.strategiesHandler: strategy saved", "userID", uid, "stageID", stageID, "status", body.Status)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Strategy saved", nil))
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// goalsHandler serves the goal list (GET/POST /goals, PUT/DELETE /goals/{id}).
func (s *Server) goalsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.goalsHandler: processing request", "method", r.Method, "path", r.URL.Path)
	uid := userID(r)
	goalID := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/goals"), "/")

	if goalID == "" {
		switch r.Method {
		case http.MethodGet:
			goals, err := s.st.GetGoals(uid)
			if err != nil {
				slog.Error("Server.goalsHandler: failed to fetch goals", "error", err, "userID", uid)
				writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch goals"))
				return
			}
			writeJSONResponse(w, http.StatusOK, models.Success(goals))
		case http.MethodPost:
			var goal models.Goal
			if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
				slog.Warn("Server.goalsHandler: failed to decode JSON", "error", err)
				writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
				return
			}
			created, err := s.st.CreateGoal(uid, goal)
			if err != nil {
				slog.Error("Server.goalsHandler: failed to create goal", "error", err)
				writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create goal"))
				return
			}
			slog.Info("Server.goalsHandler: goal created", "userID", uid, "goalID", created.ID)
			writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Goal created", created))
		default:
			w.Header().Set("Allow", "GET, POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
	case http.MethodDelete:
		if err := s.st.DeleteGoal(uid, goalID); err != nil {
			if err == store.ErrNotFound {
				writeJSONResponse(w, http.StatusNotFound, models.Error("Goal not found: "+goalID))
				return
			}
			slog.Error("Server.goalsHandler: failed to delete goal", "error", err, "goalID", goalID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete goal"))
			return
		}
		slog.Info("Server.goalsHandler: goal deleted", "userID", uid, "goalID", goalID)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Goal deleted", nil))
		return
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		slog.Warn("Server.goalsHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	goal.ID = goalID
	if err := s.st.UpdateGoal(uid, goal); err != nil {
		if err == store.ErrNotFound {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Goal not found: "+goalID))
			return
		}
		slog.Error("Server.goalsHandler: failed to update goal", "error", err, "goalID", goalID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update goal"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Goal updated", nil))
}
