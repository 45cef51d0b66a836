package service

import (
	"context"
	"fmt"
	"time"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the pipeline cycles on their cron schedules.
type SchedulerService interface {
	Start(ctx context.Context) error
	Schedules() map[entity.CycleType]string
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(cfg *config.Config, orchestrator OrchestratorService, log *logger.Logger) SchedulerService {
	return &schedulerService{
		cfg:          cfg,
		orchestrator: orchestrator,
		logger:       log,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type schedulerService struct {
	cfg          *config.Config
	orchestrator OrchestratorService
	logger       *logger.Logger
	cronParser   cron.Parser
}

// Schedules returns the configured expression of every scheduled cycle. Cycles with an
// empty expression are left out.
func (s *schedulerService) Schedules() map[entity.CycleType]string {
	all := map[entity.CycleType]string{
		entity.CycleCalendarHighImpact: s.cfg.Scheduler.CalendarHighImpact,
		entity.CycleCalendarUpdate:     s.cfg.Scheduler.CalendarUpdate,
		entity.CycleNewsUpdate:         s.cfg.Scheduler.NewsUpdate,
		entity.CycleScoreRecompute:     s.cfg.Scheduler.ScoreRecompute,
	}
	schedules := make(map[entity.CycleType]string, len(all))
	for cycleType, expr := range all {
		if expr != "" {
			schedules[cycleType] = expr
		}
	}
	return schedules
}

// Start registers every schedule and blocks until ctx is done. An invalid expression
// fails before any cycle is scheduled.
func (s *schedulerService) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(s.cronParser), cron.WithLocation(time.UTC))

	for _, cycleType := range entity.CycleTypes {
		expr, ok := s.Schedules()[cycleType]
		if !ok {
			continue
		}
		if _, err := c.AddFunc(expr, s.tick(ctx, cycleType)); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", cycleType, expr, err)
		}
		s.logger.Info("Cycle scheduled",
			logger.StringField("cycle", string(cycleType)),
			logger.StringField("cron", expr),
		)
	}

	c.Start()
	<-ctx.Done()
	s.logger.Info("Scheduler service stopping")
	<-c.Stop().Done()
	return nil
}

func (s *schedulerService) tick(ctx context.Context, cycleType entity.CycleType) func() {
	return func() {
		defer utils.Recover(s.logger)
		if !utils.ShouldContinue(ctx) {
			return
		}
		if _, err := RunWithTimeout(ctx, s.orchestrator, cycleType, entity.TriggerCron, s.cfg.Scheduler.CycleTimeout); err != nil {
			s.logger.Error("Scheduled cycle failed",
				logger.StringField("cycle", string(cycleType)),
				logger.ErrorField(err),
			)
		}
	}
}
