package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	return NewServer(st, nil, opts...), st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestStagesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/stages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stage-10") {
		t.Error("Expected full stage catalog in response")
	}

	rec = doJSON(t, h, http.MethodGet, "/stages/stage-5", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Campaign Architecture") {
		t.Errorf("Expected stage-5 payload, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/stages/stage-99", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/stages", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStrategiesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/strategies/stage-1/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/strategies/stage-1", map[string]any{
		"data":   map[string]any{"sound_selection": []string{"Drill"}},
		"status": "in_progress",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/strategies/stage-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Drill") {
		t.Errorf("Expected saved data in response, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/strategies", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/strategies/stage-9", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for missing record, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestStrategiesUserIsolation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPut, "/strategies/stage-1", strings.NewReader(`{"data":{"k":"v"}}`))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// Default user sees no record.
	rec2 := doJSON(t, h, http.MethodGet, "/strategies/stage-1", nil)
	if rec2.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for other user, got %d", http.StatusNotFound, rec2.Code)
	}
}

func TestWizardSessionFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/wizard/stage-4/open", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	// Reopening returns the existing session.
	rec = doJSON(t, h, http.MethodPost, "/wizard/stage-4/open", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d on reopen, got %d", http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/wizard/stage-4/value", map[string]any{
		"fieldId": "era_title", "value": "The Rebirth",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "The Rebirth") {
		t.Errorf("Expected updated form data, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/wizard/stage-4", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/wizard/stage-4/value", map[string]any{
		"fieldId": "no_such_field", "value": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for unknown field, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/wizard/stage-4/next", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/wizard/stage-4/save-exit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// Session is gone after save-exit.
	rec = doJSON(t, h, http.MethodGet, "/wizard/stage-4", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after exit, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestWizardUnknownStage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/wizard/stage-99/open", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCalendarEventsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/calendar/events", map[string]any{
		"title":     "Teaser Drop",
		"startDate": "2024-06-12T00:00:00Z",
		"endDate":   "2024-06-12T00:00:00Z",
		"type":      "content",
		"status":    "pending",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("Expected event result, got %v", resp.Result)
	}
	eventID, _ := result["id"].(string)
	if eventID == "" {
		t.Fatal("Expected generated event id")
	}

	rec = doJSON(t, h, http.MethodGet, "/calendar/events?start=2024-06-01&end=2024-06-30", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Teaser Drop") {
		t.Errorf("Expected event in window, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/calendar/events?start=bad&end=2024-06-30", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for bad dates, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/calendar/events/"+eventID, map[string]any{
		"title":     "Teaser Drop",
		"startDate": "2024-06-13T00:00:00Z",
		"endDate":   "2024-06-13T00:00:00Z",
		"type":      "content",
		"status":    "completed",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/calendar/events/"+eventID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/calendar/events/"+eventID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d on repeat delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCalendarGridEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	if err := st.SaveStrategy(DefaultUserID, "stage-4", map[string]any{
		"era_title": "The Rebirth",
		"era_start": "2024-06-01",
	}, models.StageStatusCompleted); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/calendar/grid?year=2024&month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "The Rebirth") {
		t.Errorf("Expected era title in grid, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/calendar/grid?year=2024&month=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for bad month, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGoalsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/goals", map[string]any{
		"title": "10k monthly listeners", "type": "streams", "target": 10000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	result, _ := resp.Result.(map[string]any)
	goalID, _ := result["id"].(string)
	if goalID == "" {
		t.Fatal("Expected generated goal id")
	}

	rec = doJSON(t, h, http.MethodPut, "/goals/"+goalID, map[string]any{
		"title": "10k monthly listeners", "type": "streams", "target": 10000, "current": 2500,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/goals", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2500") {
		t.Errorf("Expected updated goal, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"progress":25`) {
		t.Errorf("Expected progress percentage in goal payload: %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/goals/missing", map[string]any{"title": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/goals/"+goalID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodDelete, "/goals/"+goalID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for repeat delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPlannerUnavailableWithoutClient(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/planner/messages", map[string]any{"text": "hi"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Expected health payload, got %s", rec.Body.String())
	}
}
