package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/events/natsbus"
	"github.com/mcoot/blackjack-go/internal/lock"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/bot"
	"github.com/mcoot/blackjack-go/internal/services/table"
	"github.com/mcoot/blackjack-go/internal/sse"
	"github.com/mcoot/blackjack-go/internal/storage"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	redisstorage "github.com/mcoot/blackjack-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Locker      *lock.Locker
	Engine      *table.Engine
	Tables      *table.Controller
	BotService  *bot.Service
	AuthService *auth.Service
	HubManager  *sse.HubManager
	Publisher   events.Publisher

	// Bus is nil unless NATS is configured
	Bus *natsbus.Bus

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// LockConfig controls table lock expiry and acquire timeout (optional)
	LockConfig lock.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// NATSURL enables cross-instance event relay when set
	NATSURL string
	// InstanceID names this server on the event bus
	InstanceID string
	// SigningSecret enables X-Signature on API responses when set
	SigningSecret string
	// Port is the HTTP listen port
	Port int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closers []func() error
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
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var conn *nats.Conn
	if cfg.NATSURL != "" {
		c, err := natsbus.Connect(cfg.NATSURL, "blackjack-"+cfg.InstanceID)
		if err != nil {
			return nil, errors.Join(err, closeAll(closers))
		}
		conn = c
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, cfg.LockConfig, logger)
	app.closers = append(app.closers, closers...)

	if conn != nil {
		instance := cfg.InstanceID
		if instance == "" {
			instance = app.Random.String(12, "abcdefghijklmnopqrstuvwxyz0123456789")
		}
		if err := app.attachBus(conn, instance, logger); err != nil {
			conn.Close()
			return nil, errors.Join(err, app.Close())
		}
		app.closers = append(app.closers, func() error { conn.Close(); return nil })
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, lockCfg lock.Config, logger *slog.Logger) *App {
	if lockCfg == (lock.Config{}) {
		lockCfg = lock.DefaultConfig()
	}

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	publisher := newFanout(broadcaster)

	// lock tokens always come from a real source so owners never collide
	locker := lock.New(store, random.New(), lockCfg, logger)
	engine := table.NewEngine(clk, rnd, logger)
	tables := table.NewController(store, locker, engine, publisher, clk, rnd, logger)
	botService := bot.NewService(tables, bot.Strategies(rnd), logger)
	authService := auth.New(store, clk, authCfg, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Locker:      locker,
		Engine:      engine,
		Tables:      tables,
		BotService:  botService,
		AuthService: authService,
		HubManager:  hubManager,
		Publisher:   publisher,
		closers:     []func() error{func() error { hubManager.Close(); return nil }},
	}
}

// attachBus starts relaying events between this instance and its peers
func (a *App) attachBus(conn natsbus.Conn, instance string, logger *slog.Logger) error {
	f := a.Publisher.(*fanout)
	bus := natsbus.New(conn, instance, f.local, logger)
	if err := bus.Start(); err != nil {
		return err
	}
	f.attach(bus)
	a.Bus = bus
	a.closers = append(a.closers, bus.Stop)
	return nil
}

// Close releases connections held by the app
func (a *App) Close() error {
	return closeAll(a.closers)
}

// closeAll runs closers in reverse order and joins their errors
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
