package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/BeatGrid/StrategyPipe/internal/genai"
)

// proxyRequest is the body accepted by the LLM proxy. Either a
// system/user prompt pair or an already assembled messages array.
type proxyRequest struct {
	SystemPrompt string            `json:"systemPrompt,omitempty"`
	UserPrompt   string            `json:"userPrompt,omitempty"`
	JSONMode     bool              `json:"jsonMode,omitempty"`
	Model        string            `json:"model,omitempty"`
	Messages     []json.RawMessage `json:"messages,omitempty"`
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// llmProxyHandler forwards chat completion calls to the upstream
// endpoint with the server-held API key (POST /api/llm). The upstream
// JSON is returned verbatim on success; upstream failures pass through
// their status code with an error envelope.
func (s *Server) llmProxyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	setCORSHeaders(w)
	slog.Debug("Server.llmProxyHandler: processing request", "method", r.Method)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.llmProxyHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON format"})
		return
	}

	apiKey := os.Getenv(genai.EnvAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv(genai.EnvAPIKeyFallback)
	}
	if apiKey == "" {
		slog.Error("Server.llmProxyHandler: no API key configured")
		writeJSONResponse(w, http.StatusInternalServerError, map[string]any{"error": "Missing API Key Configuration"})
		return
	}

	model := req.Model
	if model == "" {
		model = genai.DefaultModel
	}
	var messages any
	if len(req.Messages) > 0 {
		messages = req.Messages
	} else {
		messages = []map[string]string{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserPrompt},
		}
	}
	responseFormat := map[string]string{"type": "text"}
	if req.JSONMode {
		responseFormat = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(map[string]any{
		"model":           model,
		"messages":        messages,
		"response_format": responseFormat,
		"stream":          false,
	})
	if err != nil {
		slog.Error("Server.llmProxyHandler: failed to marshal upstream payload", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, map[string]any{"error": "Failed to build request"})
		return
	}

	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.llmEndpoint, bytes.NewReader(payload))
	if err != nil {
		writeJSONResponse(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	upstream.Header.Set("Content-Type", "application/json")
	upstream.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.httpClient.Do(upstream)
	if err != nil {
		slog.Error("Server.llmProxyHandler: upstream call failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Server.llmProxyHandler: failed to read upstream response", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("Server.llmProxyHandler: upstream error", "status", resp.StatusCode)
		writeJSONResponse(w, resp.StatusCode, map[string]any{
			"error":   "Completion API Error: " + strconv.Itoa(resp.StatusCode),
			"details": string(body),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("Server.llmProxyHandler: failed to write response", "error", err)
	}
}
