package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/repository"
	"golang-forex-pulse/internal/pipeline/strategy"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/metrics"
	"golang-forex-pulse/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// OrchestratorService runs pipeline cycles and records their history.
type OrchestratorService interface {
	Run(ctx context.Context, cycleType entity.CycleType, trigger entity.RunTrigger) (*dto.CycleReport, error)
	CycleTypes() []entity.CycleType
}

// NewOrchestratorService creates a new OrchestratorService.
func NewOrchestratorService(
	historyRepo repository.CycleRunRepository,
	escalation EscalationService,
	log *logger.Logger,
	m *metrics.Metrics,
	strategies []strategy.CycleStrategy,
) OrchestratorService {
	strategyMap := make(map[entity.CycleType]strategy.CycleStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}

	return &orchestratorService{
		historyRepo: historyRepo,
		escalation:  escalation,
		logger:      log,
		metrics:     m,
		strategies:  strategyMap,
	}
}

type orchestratorService struct {
	historyRepo repository.CycleRunRepository
	escalation  EscalationService
	logger      *logger.Logger
	metrics     *metrics.Metrics
	strategies  map[entity.CycleType]strategy.CycleStrategy
}

// CycleTypes lists the registered cycles in trigger order.
func (s *orchestratorService) CycleTypes() []entity.CycleType {
	types := make([]entity.CycleType, 0, len(s.strategies))
	for _, t := range entity.CycleTypes {
		if _, ok := s.strategies[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Run executes one invocation of cycleType. Overlapping invocations are allowed; they
// converge through the unique keys of the stores. A detected high-impact release is
// escalated before Run returns.
func (s *orchestratorService) Run(ctx context.Context, cycleType entity.CycleType, trigger entity.RunTrigger) (*dto.CycleReport, error) {
	cycleStrategy, ok := s.strategies[cycleType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dto.ErrUnknownCycle, cycleType)
	}
	if err := cycleStrategy.Validate(); err != nil {
		return nil, err
	}

	run := &entity.CycleRun{
		RunID:     uuid.NewString(),
		CycleType: cycleType,
		Status:    entity.RunStatusRunning,
		Trigger:   trigger,
		StartedAt: utils.TimeNowUTC(),
	}
	ctx = logger.WithContext(ctx,
		logger.StringField("run_id", run.RunID),
		logger.StringField("cycle", string(cycleType)),
	)

	if err := s.historyRepo.Create(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create cycle run history", logger.ErrorField(err))
	}
	s.logger.InfoContext(ctx, "Cycle started", logger.StringField("trigger", string(trigger)))

	outcome, err := cycleStrategy.Execute(ctx, run)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cycle failed", logger.ErrorField(err))
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		s.finish(ctx, run, entity.RunStatusFailed)
		return nil, err
	}

	report := &dto.CycleReport{
		RunID:     run.RunID,
		CycleType: cycleType,
		Message:   outcome.Message,
		Result:    outcome.Result,
		StartedAt: run.StartedAt,
	}

	if cycleType == entity.CycleCalendarHighImpact {
		report.HighImpactDetected = utils.ToPointer(outcome.Escalation != nil)
	}
	if outcome.Escalation != nil {
		if _, err := s.escalation.Escalate(ctx, outcome.Escalation); err != nil {
			s.logger.ErrorContext(ctx, "High impact escalation failed",
				logger.StringField("message_id", outcome.Escalation.MessageID),
				logger.ErrorField(err),
			)
		} else {
			report.Escalated = true
		}
	}

	if summary, err := json.Marshal(report); err == nil {
		run.Summary = datatypes.JSON(summary)
	}
	run.Currencies = pq.StringArray(outcome.Currencies)
	s.finish(ctx, run, entity.RunStatusCompleted)

	report.CompletedAt = run.CompletedAt.Time
	s.logger.InfoContext(ctx, "Cycle completed", logger.StringField("message", outcome.Message))
	return report, nil
}

func (s *orchestratorService) finish(ctx context.Context, run *entity.CycleRun, status entity.RunStatus) {
	run.Status = status
	run.CompletedAt = sql.NullTime{Time: utils.TimeNowUTC(), Valid: true}
	s.metrics.ObserveCycle(string(run.CycleType), string(status), run.CompletedAt.Time.Sub(run.StartedAt).Seconds())

	if err := s.historyRepo.Update(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update cycle run history", logger.ErrorField(err))
	}
}

// RunWithTimeout runs cycleType with its own deadline, detached from the caller's
// cancellation so that a cron tick or a dropped HTTP client does not abort a cycle mid-write.
func RunWithTimeout(ctx context.Context, orchestrator OrchestratorService, cycleType entity.CycleType, trigger entity.RunTrigger, timeout time.Duration) (*dto.CycleReport, error) {
	if timeout <= 0 {
		return orchestrator.Run(ctx, cycleType, trigger)
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return orchestrator.Run(runCtx, cycleType, trigger)
}
