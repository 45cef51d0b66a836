package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-forex-pulse/internal/pipeline/bootstrap"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/delivery/consumer"
	delivery "golang-forex-pulse/internal/pipeline/delivery/http"
	_ "golang-forex-pulse/internal/pipeline/docs"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/telegram"
	"golang-forex-pulse/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the pipeline service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Pipeline Service", logger.Field("name", cfg.App.Name))

	container, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize pipeline", logger.ErrorField(err))
	}
	defer container.Close()

	if cfg.Scheduler.Enabled {
		utils.GoSafe(appLogger, func() {
			if err := container.Scheduler.Start(ctx); err != nil {
				appLogger.Error("Scheduler failed to start", logger.ErrorField(err))
				stop()
			}
		})
	}

	var escalationConsumer *consumer.EscalationConsumer
	if container.Redis != nil && cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize telegram notifier", logger.ErrorField(err))
		}
		escalationConsumer = consumer.NewEscalationConsumer(container.Redis.Client, notifier, appLogger)
		escalationConsumer.Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	apiV1 := e.Group("/api/v1")
	delivery.NewTriggerHandler(container.Orchestrator, cfg.Trigger.APIKey, cfg.Scheduler.CycleTimeout, appLogger).
		RegisterRoutes(apiV1.Group("/cron"))
	delivery.NewMarketHandler(container.MarketData, appLogger).RegisterRoutes(apiV1)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if escalationConsumer != nil {
		escalationConsumer.Stop()
	}

	appLogger.Info("Server exiting")
}

// @title Forex Pulse Pipeline API
// @version 1.0
// @description Economic calendar and market news ingestion pipeline.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
