package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BeatGrid/StrategyPipe/internal/genai"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv(genai.EnvAPIKey, "")
	t.Setenv(genai.EnvAPIKeyFallback, "")
}

func TestLLMProxyOptionsCORS(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/llm", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected permissive CORS origin header")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Error("Expected POST in allowed methods")
	}
}

func TestLLMProxyRejectsNonPost(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/llm", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestLLMProxyMissingKey(t *testing.T) {
	clearKeyEnv(t)
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/llm", map[string]any{
		"systemPrompt": "sys", "userPrompt": "hello",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("Expected error body, got %s", rec.Body.String())
	}
}

func TestLLMProxyForwardsAndReturnsUpstreamJSON(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(genai.EnvAPIKey, "test-key")

	var captured map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("Invalid upstream payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, WithLLMEndpoint(upstream.URL))
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/llm", map[string]any{
		"systemPrompt": "sys", "userPrompt": "hello", "jsonMode": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	// Upstream JSON passes through verbatim.
	if !strings.Contains(rec.Body.String(), "hi there") {
		t.Errorf("Expected upstream body, got %s", rec.Body.String())
	}

	if captured["model"] != genai.DefaultModel {
		t.Errorf("Expected default model, got %v", captured["model"])
	}
	rf, _ := captured["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("Expected json_object response format, got %v", captured["response_format"])
	}
	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("Expected system+user messages, got %v", captured["messages"])
	}
}

func TestLLMProxyKeyFallbackEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(genai.EnvAPIKeyFallback, "recycled-key")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer recycled-key" {
			t.Errorf("Expected fallback key auth, got %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, WithLLMEndpoint(upstream.URL))
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/llm", map[string]any{"userPrompt": "x"})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestLLMProxyUpstreamErrorPassthrough(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(genai.EnvAPIKey, "test-key")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, WithLLMEndpoint(upstream.URL))
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/llm", map[string]any{"userPrompt": "x"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse error body: %v", err)
	}
	if body["error"] == nil || body["details"] != "rate limited" {
		t.Errorf("Expected error envelope with details, got %v", body)
	}
}
