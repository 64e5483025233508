package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BeatGrid/StrategyPipe/internal/api"
	"github.com/BeatGrid/StrategyPipe/internal/genai"
	"github.com/BeatGrid/StrategyPipe/internal/lockfile"
	"github.com/BeatGrid/StrategyPipe/internal/store"
	"github.com/BeatGrid/StrategyPipe/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for StrategyPipe state data
	DefaultStateDir = "/var/lib/strategypipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "strategypipe.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// State directory locking keeps two instances off the same SQLite file
	if store.DetectDSNType(*flags.dbDSN) == "sqlite3" {
		lock, err := lockfile.AcquireLock(*flags.stateDir)
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	// Build module options
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping StrategyPipe with configured modules")
	slog.Debug("Module options counts", "store", len(storeOpts), "genai", len(genaiOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := api.Run(storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("StrategyPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("StrategyPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	DeepSeekKey string
	APIAddr     string
	LLMBaseURL  string
	LLMModel    string
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	apiKey     *string
	apiAddr    *string
	llmBaseURL *string
	llmModel   *string
}

// initializeLogger sets up structured logging. STRATEGYPIPE_DEBUG
// enables debug level output.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("STRATEGYPIPE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("STRATEGYPIPE_STATE_DIR"),
		DeepSeekKey: os.Getenv(genai.EnvAPIKey),
		APIAddr:     os.Getenv("API_ADDR"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMModel:    os.Getenv("LLM_MODEL"),
	}

	// DEEPSEEK_API_KEY falls back to the recycled GEMINI_API_KEY name
	if config.DeepSeekKey == "" {
		config.DeepSeekKey = os.Getenv(genai.EnvAPIKeyFallback)
		if config.DeepSeekKey != "" {
			slog.Debug("Using GEMINI_API_KEY as DEEPSEEK_API_KEY", "key_set", true)
		}
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No STRATEGYPIPE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("STRATEGYPIPE_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"STRATEGYPIPE_STATE_DIR", config.StateDir,
		"DEEPSEEK_API_KEY_SET", config.DeepSeekKey != "",
		"API_ADDR", config.APIAddr,
		"LLM_BASE_URL", config.LLMBaseURL,
		"LLM_MODEL", config.LLMModel)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for StrategyPipe data (overrides $STRATEGYPIPE_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the strategy store (overrides $DATABASE_URL)"),
		apiKey:     flag.String("deepseek-api-key", config.DeepSeekKey, "DeepSeek API key (overrides $DEEPSEEK_API_KEY)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		llmBaseURL: flag.String("llm-base-url", config.LLMBaseURL, "chat completion base URL (overrides $LLM_BASE_URL)"),
		llmModel:   flag.String("llm-model", config.LLMModel, "chat completion model (overrides $LLM_MODEL)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiKeySet", *flags.apiKey != "",
		"apiAddr", *flags.apiAddr,
		"llmBaseURL", *flags.llmBaseURL,
		"llmModel", *flags.llmModel)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	// Ensure state directory exists if we're using a file-based DSN
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
		slog.Debug("State directory created successfully", "state_dir", stateDir)
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		// Check if it's a PostgreSQL DSN using the shared detection function
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			// Assume SQLite for file paths
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.apiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.apiKey))
	}
	if *flags.llmBaseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(*flags.llmBaseURL))
	}
	if *flags.llmModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.llmModel))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
