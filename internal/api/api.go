// Package api provides HTTP handlers and the main API server logic for StrategyPipe.
//
// It exposes RESTful endpoints for the stage catalog, strategy records,
// wizard sessions, the planner calendar, the AI planner chat and the
// LLM proxy. The API integrates with the store, wizard, planner and
// genai modules.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/calendar"
	"github.com/BeatGrid/StrategyPipe/internal/genai"
	"github.com/BeatGrid/StrategyPipe/internal/planner"
	"github.com/BeatGrid/StrategyPipe/internal/store"
	"github.com/BeatGrid/StrategyPipe/internal/wizard"
)

const (
	// DefaultAddr is the default API listen address.
	DefaultAddr = ":8080"
	// DefaultUserID is used when a request carries no X-User-ID header.
	DefaultUserID = "local"
	// DefaultLLMEndpoint is the upstream chat completions URL the proxy
	// forwards to.
	DefaultLLMEndpoint = "https://api.deepseek.com/chat/completions"
	// DefaultProxyTimeout bounds one proxied completion call.
	DefaultProxyTimeout = 90 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address.
	Addr string
	// LLMEndpoint overrides the upstream completions URL of the proxy.
	LLMEndpoint string
}

// Option defines a functional option for API configuration.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithLLMEndpoint sets the upstream URL the LLM proxy forwards to.
func WithLLMEndpoint(url string) Option {
	return func(o *Opts) { o.LLMEndpoint = url }
}

type wizardKey struct {
	userID  string
	stageID string
}

// Server wires the stores and clients behind the HTTP surface. Wizard
// and planner sessions are held per user for the lifetime of the
// process.
type Server struct {
	st          store.Store
	ga          *genai.Client
	cal         *calendar.Planner
	addr        string
	llmEndpoint string
	httpClient  *http.Client

	mu       sync.Mutex
	wizards  map[wizardKey]*wizard.Session
	planners map[string]*planner.Session
}

// NewServer builds a Server over a store and an optional genai client.
func NewServer(st store.Store, ga *genai.Client, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr, LLMEndpoint: DefaultLLMEndpoint}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		st:          st,
		ga:          ga,
		cal:         calendar.NewPlanner(st),
		addr:        cfg.Addr,
		llmEndpoint: cfg.LLMEndpoint,
		httpClient:  &http.Client{Timeout: DefaultProxyTimeout},
		wizards:     make(map[wizardKey]*wizard.Session),
		planners:    make(map[string]*planner.Session),
	}
}

// Handler returns the routing mux for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stages", s.stagesHandler)
	mux.HandleFunc("/stages/", s.stagesHandler)
	mux.HandleFunc("/strategies", s.strategiesHandler)
	mux.HandleFunc("/strategies/", s.strategiesHandler)
	mux.HandleFunc("/wizard/", s.wizardHandler)
	mux.HandleFunc("/calendar/events", s.calendarEventsHandler)
	mux.HandleFunc("/calendar/events/", s.calendarEventsHandler)
	mux.HandleFunc("/calendar/grid", s.calendarGridHandler)
	mux.HandleFunc("/planner/", s.plannerHandler)
	mux.HandleFunc("/goals", s.goalsHandler)
	mux.HandleFunc("/goals/", s.goalsHandler)
	mux.HandleFunc("/api/llm", s.llmProxyHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run builds the store and genai client from module options and serves
// the API until the listener fails.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		slog.Error("api.Run: store initialization failed", "error", err)
		return err
	}
	defer st.Close()

	ga, err := genai.NewClient(genaiOpts...)
	if err != nil {
		// The wizard and calendar still work without a model endpoint.
		slog.Warn("api.Run: genai client unavailable, planner chat disabled", "error", err)
		ga = nil
	}

	srv := NewServer(st, ga, apiOpts...)
	slog.Info("api.Run: StrategyPipe API listening", "addr", srv.addr)
	return http.ListenAndServe(srv.addr, srv.Handler())
}

func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("api.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(store.WithPostgresDSN(cfg.DSN))
	}
	return store.NewSQLiteStore(store.WithSQLiteDSN(cfg.DSN))
}

// userID resolves the acting user from the request header.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return DefaultUserID
}

// healthHandler provides a health check endpoint for monitoring and load balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.ga == nil {
		healthData["planner_chat"] = "disabled"
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
