package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/bootstrap"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/service"
	"golang-forex-pulse/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "forex-pulse",
	Short: "A CLI for the Forex Pulse ingestion pipeline",
	Long:  `Forex Pulse ingests economic calendar releases and market news, scores them and keeps per-currency aggregates.`,
}

var runCmd = &cobra.Command{
	Use:       "run [cycle]",
	Short:     "Runs one pipeline cycle and prints its summary",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: cycleNames(),
	RunE:      runCycle,
}

func cycleNames() []string {
	names := make([]string, len(entity.CycleTypes))
	for i, c := range entity.CycleTypes {
		names[i] = string(c)
	}
	return names
}

func runCycle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cycleType, _ := entity.ParseCycleType(args[0])

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	container, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer container.Close()

	report, err := service.RunWithTimeout(ctx, container.Orchestrator, cycleType, entity.TriggerCron, cfg.Scheduler.CycleTimeout)
	if err != nil {
		return err
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	return out.Encode(report)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
