package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/eventgames/internal/api"
	"github.com/mcoot/eventgames/internal/api/sse"
	"github.com/mcoot/eventgames/internal/dependencies/clock"
	"github.com/mcoot/eventgames/internal/dependencies/random"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/services/admin"
	"github.com/mcoot/eventgames/internal/services/leaderboard"
	"github.com/mcoot/eventgames/internal/services/progress"
	"github.com/mcoot/eventgames/internal/services/registration"
	"github.com/mcoot/eventgames/internal/services/session"
	"github.com/mcoot/eventgames/internal/services/submission"
	"github.com/mcoot/eventgames/internal/storage"
	"github.com/mcoot/eventgames/internal/storage/memory"
	redisstorage "github.com/mcoot/eventgames/internal/storage/redis"
	sqlitestorage "github.com/mcoot/eventgames/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// orderSalt fixes each participant's game order across restarts and replicas
const orderSalt = 0x6576656e7467616d

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Seeder random.Seeder

	// Services
	Resolver     *progress.Resolver
	Orchestrator *session.Orchestrator
	Gate         *submission.Gate
	Aggregator   *leaderboard.Aggregator
	Registration *registration.Service
	Admin        *admin.Service

	// Live updates
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// ResultPolicy selects how repeat submissions are handled
	// If empty, defaults to "first"
	ResultPolicy model.ResultPolicy
	// AdminSecret enables the admin endpoints when set
	AdminSecret string
}

// New creates a new application with all dependencies wired.
// Call Close when done to stop the event hub and release the store.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), random.NewKeyedSeeder(orderSalt), cfg, logger)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	logger.Info("application wired",
		slog.String("storage", storageType),
		slog.String("result_policy", string(app.Gate.Policy())),
		slog.Bool("admin_enabled", app.Admin.Enabled()))
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	seeder random.Seeder,
	cfg Config,
	logger *slog.Logger,
) (*App, error) {
	policy := cfg.ResultPolicy
	if policy == "" {
		policy = submission.DefaultConfig().Policy
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("invalid result policy %q", policy)
	}

	adminService, err := admin.New(store, cfg.AdminSecret, logger)
	if err != nil {
		return nil, err
	}

	resolver := progress.NewResolver(store, logger)
	orchestrator := session.NewOrchestrator(store, resolver, seeder, logger)
	gate := submission.New(store, clk, logger, submission.Config{Policy: policy})
	aggregator := leaderboard.NewAggregator(store, logger)
	registrationService := registration.New(store, clk, rnd, logger)

	hub := sse.NewHub(logger)
	go hub.Run()
	broadcaster := sse.NewBroadcaster(hub, aggregator, logger)
	gate.AddListener(broadcaster)
	adminService.AddListener(broadcaster)

	return &App{
		Storage:      store,
		Clock:        clk,
		Random:       rnd,
		Seeder:       seeder,
		Resolver:     resolver,
		Orchestrator: orchestrator,
		Gate:         gate,
		Aggregator:   aggregator,
		Registration: registrationService,
		Admin:        adminService,
		Hub:          hub,
		Broadcaster:  broadcaster,
		logger:       logger,
	}, nil
}

// Router builds the HTTP API for this app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:       a.logger,
		Storage:      a.Storage,
		Registration: a.Registration,
		Resolver:     a.Resolver,
		Orchestrator: a.Orchestrator,
		Gate:         a.Gate,
		Aggregator:   a.Aggregator,
		Admin:        a.Admin,
		Hub:          a.Hub,
		Broadcaster:  a.Broadcaster,
	})
}

// Close stops the event hub and closes the store
func (a *App) Close() error {
	a.Hub.Close()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeStore(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
