package bootstrap

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/provider"
	"golang-forex-pulse/internal/pipeline/repository"
	"golang-forex-pulse/internal/pipeline/service"
	"golang-forex-pulse/internal/pipeline/strategy"
	"golang-forex-pulse/pkg/common"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/metrics"
	"golang-forex-pulse/pkg/postgres"
	"golang-forex-pulse/pkg/redis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds the wired pipeline components shared by the service and the CLI.
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *postgres.DB
	Redis        *redis.Client
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	Orchestrator service.OrchestratorService
	Scheduler    service.SchedulerService
	MarketData   service.MarketDataService
}

// New connects the stores and wires the pipeline. Redis is optional: without it
// escalations are still dispatched synchronously but not published for notification.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Registry: prometheus.NewRegistry(),
	}
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)

	publisher := service.NewNopEscalationPublisher()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		c.Redis = redisClient
		if err := redisClient.EnsureGroup(ctx, common.RedisStreamHighImpact, common.RedisStreamGroup); err != nil {
			c.Close()
			return nil, fmt.Errorf("create consumer group: %w", err)
		}
		publisher = service.NewRedisEscalationPublisher(redisClient.Client, common.RedisStreamHighImpact, cfg.Redis.StreamMaxLen)
	}

	eventRepo := repository.NewEconomicEventRepository(db.DB)
	scoreRepo := repository.NewCurrencyScoreRepository(db.DB)
	newsRepo := repository.NewMarketNewsRepository(db.DB)
	runRepo := repository.NewCycleRunRepository(db.DB)

	providerClient := provider.NewClient(cfg, log, c.Metrics)
	aggregator := service.NewAggregatorService(eventRepo, scoreRepo, log)
	escalation := service.NewEscalationService(aggregator, publisher, log, c.Metrics)

	c.Orchestrator = service.NewOrchestratorService(runRepo, escalation, log, c.Metrics, []strategy.CycleStrategy{
		strategy.NewHighImpactCalendarStrategy(cfg, log, providerClient, eventRepo, aggregator, c.Metrics),
		strategy.NewCalendarStrategy(cfg, log, providerClient, eventRepo, aggregator, c.Metrics),
		strategy.NewNewsStrategy(cfg, log, providerClient, newsRepo, c.Metrics),
		strategy.NewScoreRecomputeStrategy(aggregator),
	})
	c.Scheduler = service.NewSchedulerService(cfg, c.Orchestrator, log)
	c.MarketData = service.NewMarketDataService(scoreRepo, newsRepo, runRepo)

	return c, nil
}

// Close releases the database and redis connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Failed to close redis", logger.ErrorField(err))
		}
	}
	if sqlDB, err := c.DB.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			c.Logger.Error("Failed to close database", logger.ErrorField(err))
		}
	}
}
