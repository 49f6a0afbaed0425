package planboard

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/planboard/planboard/pkg/logger"
	"github.com/planboard/planboard/pkg/store"
	"github.com/planboard/planboard/pkg/store/postgres"
	"github.com/planboard/planboard/pkg/store/surrealdb"
)

// Config holds application configuration, assembled from flags and the
// environment by [Parse].
type Config struct {
	// Database configuration. Exactly one backend is active.
	PostgresDSN   string
	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string
	PostgresOnly  bool
	SurrealOnly   bool

	// When true, all write operations are rejected.
	ReadOnly bool

	// Server configuration.
	ServerPort string

	// Cron expression for the deadline reminder sweep. Empty disables it.
	ReminderSchedule string

	// Logging.
	LogLevel  string
	LogPretty bool
}

// App holds the application state: the persistence gateway, the logger,
// and the runtime read-only toggle.
type App struct {
	store    store.Store
	config   *Config
	log      zerolog.Logger
	readOnly bool
}

// New creates the application: it connects the configured store backend,
// wraps it with read-only protection, and builds the logger.
func New(config *Config) (*App, error) {
	build := logger.New().Level(config.LogLevel)
	if config.LogPretty {
		build.Pretty()
	}
	log, _, err := build.Make()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	var backing store.Store
	if config.PostgresOnly {
		backing, err = postgres.New(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
	} else {
		backing, err = surrealdb.New(
			config.SurrealDBURL,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
		)
		if err != nil {
			return nil, fmt.Errorf("connect to SurrealDB: %w", err)
		}
		log.Info().Str("url", config.SurrealDBURL).Msg("connected to SurrealDB")
	}

	app := &App{
		config:   config,
		log:      log,
		readOnly: config.ReadOnly,
	}
	app.store = store.NewReadOnlyStore(backing, app.IsReadOnly)
	return app, nil
}

// NewWithStore creates the application over a pre-built store. Used by
// tests to run the HTTP layer against the in-memory backend.
func NewWithStore(config *Config, backing store.Store, log zerolog.Logger) *App {
	app := &App{
		config:   config,
		log:      log,
		readOnly: config.ReadOnly,
	}
	app.store = store.NewReadOnlyStore(backing, app.IsReadOnly)
	return app
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the underlying store (useful for testing).
func (a *App) Store() store.Store {
	return a.store
}

// SetReadOnly toggles the application's read-only mode at runtime, e.g.
// for maintenance windows. The ReadOnlyStore wrapper consults it on every
// write.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly = readOnly
	a.log.Info().Bool("read_only", readOnly).Msg("read-only mode changed")
}

// IsReadOnly reports whether write operations are currently rejected.
func (a *App) IsReadOnly() bool {
	return a.readOnly
}

// getEnv retrieves an environment variable with a fallback default. Empty
// values are treated the same as unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
