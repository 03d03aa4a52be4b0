package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/internal/config"
	"github.com/smardesk/smardesk-backend/internal/server"
	"github.com/smardesk/smardesk-backend/pkg/chat"
	"github.com/smardesk/smardesk-backend/pkg/handler"
	"github.com/smardesk/smardesk-backend/pkg/session"
	"github.com/smardesk/smardesk-backend/pkg/state"
	"github.com/smardesk/smardesk-backend/pkg/store"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	db                *store.Store
	sessions          *session.Manager
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance. Components are
// initialized in dependency order: Redis and SQLite first, then the
// behavior tuning, then the session manager and API surface, servers and
// telemetry last.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	redisClient, err := state.InitRedisClient(ctx,
		cfg.RedisHost+":"+cfg.RedisPort,
		cfg.RedisPassword,
		cfg.RedisMaxRetries,
		time.Duration(cfg.RedisRetryDelayMs)*time.Millisecond,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.redisClient = redisClient
	logrus.Info("Redis client initialized")

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.DBPath, err)
	}
	app.db = db
	logrus.Infof("database opened at %s", cfg.DBPath)

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tuning from %s: %w", cfg.TuningPath, err)
	}
	logrus.Infof("loaded behavior tuning from %s", cfg.TuningPath)

	app.sessions = session.NewManager(session.Config{
		Store:       db,
		Redis:       redisClient,
		Calibration: tuning.CalibrationOrDefault(),
		Tuning:      tuning.Analyzer,
		Catalog:     tuning.Advice,
	})

	chatClient := chat.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	limiter := chat.NewLimiter(redisClient, cfg.ChatDailyLimit,
		time.Duration(cfg.ChatCooldownSec)*time.Second)

	h := handler.New(app.sessions, db, redisClient, chatClient, limiter)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, cfg.Environment, h)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup API server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}
