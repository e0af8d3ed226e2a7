package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/data/db"
	"github.com/yungbote/skilltree-backend/internal/http"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/envutil"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/secrets"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *http.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads config from the environment and wires the whole service.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if cfg.LogMode != envLogMode() {
		if l, lerr := logger.New(cfg.LogMode); lerr == nil {
			log = l
		}
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig wires the service from an explicit config.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())

	theDB, err := db.Open(cfg.DB(), log)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = db.Close(theDB)
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	box, err := secrets.NewBox(cfg.CredentialsKey)
	if err != nil {
		_ = db.Close(theDB)
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init credentials box: %w", err)
	}

	reposet := wireRepos(theDB, log)
	agentConfigs := wireAgentConfigs(theDB, log, reposet, box)
	clients, err := wireClients(ctx, log, cfg, box, agentConfigs)
	if err != nil {
		_ = db.Close(theDB)
		_ = otelShutdown(ctx)
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}
	serviceset := wireServices(theDB, log, reposet, clients, agentConfigs, metrics)

	if cfg.AgentConfigFile != "" {
		n, err := serviceset.AgentConfig.SeedFromFile(ctx, cfg.AgentConfigFile)
		if err != nil {
			clients.Close()
			_ = db.Close(theDB)
			_ = otelShutdown(ctx)
			return nil, fmt.Errorf("seed agent configs: %w", err)
		}
		log.Info("Seeded agent configs", "count", n, "file", cfg.AgentConfigFile)
	}

	handlerset := wireHandlers(log, cfg, theDB, clients.Redis, serviceset)
	middleware := wireMiddleware(log, cfg)
	server := http.NewServer(cfg.Address(), routerConfig(log, cfg, handlerset, middleware, metrics))

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors. It is a no-op when already started.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 15*time.Second)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, 15*time.Second)
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.Address())
	return a.Server.Run()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("http shutdown: %w", err)
		}
	}
	a.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("otel shutdown: %w", err)
		}
	}
	return firstErr
}

// Close releases clients and the database without touching the HTTP server.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = db.Close(a.DB)
		a.DB = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func envLogMode() string { return envutil.String("LOG_MODE", "development") }
