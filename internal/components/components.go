package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"washops/internal/api"
	"washops/internal/api/handlers/http/system"
	"washops/internal/config"
	"washops/internal/redis"
	"washops/internal/scope"
	"washops/internal/service"
	"washops/internal/storage/postgres"
	"washops/internal/workers"
	"washops/pkg/logger"
)

type Components struct {
	logger      *slog.Logger
	HttpServer  *api.Server
	Postgres    *postgres.Postgres
	Redis       *redis.Redis
	Events      *redis.EventQueue
	EventSender *service.EventSender
	Refresher   *workers.HierarchyRefresher
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	events := redis.NewEventQueue(redisClient.Client, redis.EventsKey)
	publish := publishQueue(cfg.Webhook, events)
	hierarchyCache := redis.NewHierarchyCache(redisClient.Client)

	locations := service.NewHierarchyStore(storage.LocationsRepo(), hierarchyCache, cfg.Hierarchy.CacheTTL, logger)
	if err := locations.Refresh(ctx); err != nil {
		logger.Warn("location hierarchy not loaded, using built-in defaults", slog.Any("error", err))
	}

	resolver := scope.NewResolver(locations)
	matcher := service.NewWasherMatcher(storage.ProfilesRepo(), resolver, logger)
	coordinator := service.NewCoordinator(storage.RequestsRepo(), matcher, resolver, publish, logger)
	requests := service.NewRequests(storage.RequestsRepo(), coordinator, matcher, resolver, locations, publish, logger)
	areas := service.NewAreaManager(storage.ProfilesRepo(), resolver, locations, logger)
	users := service.NewUserDirectory(storage.ProfilesRepo(), resolver)
	stats := service.NewStatsCounter(storage.Stats(), storage.RequestsRepo(), resolver)

	srv := service.NewService(requests, coordinator, matcher, areas, locations, users, stats)

	refresher, err := workers.NewHierarchyRefresher(locations, cfg.Hierarchy.RefreshSpec, logger)
	if err != nil {
		storage.Pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	httpServer := api.NewServer(ctx, cfg, logger, srv, api.Deps{
		Actors: storage.ProfilesRepo(),
		Checks: map[string]system.Pinger{
			"postgres": storage.Pool,
			"redis":    redisClient,
		},
		Queue: events,
	})
	logger.Info("Initialized server")

	return &Components{
		logger:      logger,
		HttpServer:  httpServer,
		Postgres:    storage,
		Redis:       redisClient,
		Events:      events,
		EventSender: service.NewEventSender(logger, cfg.Webhook, events),
		Refresher:   refresher,
	}, nil
}

// publishQueue is the queue services enqueue lifecycle events into. It is an
// untyped nil when delivery is disabled so nothing accumulates in Redis.
func publishQueue(cfg config.WebhookConfig, q *redis.EventQueue) service.EventQueue {
	if cfg.Disabled || q == nil {
		return nil
	}
	return q
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
