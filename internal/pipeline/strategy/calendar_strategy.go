package strategy

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/provider"
	"golang-forex-pulse/internal/pipeline/repository"
	"golang-forex-pulse/internal/pipeline/scoring"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/metrics"
	"golang-forex-pulse/pkg/utils"

	"github.com/google/uuid"
)

// CalendarStrategy ingests released economic events. In high-impact mode it only
// considers high-tier releases and reports newly stored ones for escalation.
type CalendarStrategy struct {
	cfg            *config.Config
	logger         *logger.Logger
	provider       provider.Client
	eventRepo      repository.EconomicEventRepository
	recomputer     ScoreRecomputer
	metrics        *metrics.Metrics
	highImpactOnly bool
}

// NewCalendarStrategy creates the full calendar refresh strategy.
func NewCalendarStrategy(
	cfg *config.Config,
	log *logger.Logger,
	providerClient provider.Client,
	eventRepo repository.EconomicEventRepository,
	recomputer ScoreRecomputer,
	m *metrics.Metrics,
) *CalendarStrategy {
	return &CalendarStrategy{
		cfg:        cfg,
		logger:     log,
		provider:   providerClient,
		eventRepo:  eventRepo,
		recomputer: recomputer,
		metrics:    m,
	}
}

// NewHighImpactCalendarStrategy creates the high-impact calendar strategy.
func NewHighImpactCalendarStrategy(
	cfg *config.Config,
	log *logger.Logger,
	providerClient provider.Client,
	eventRepo repository.EconomicEventRepository,
	recomputer ScoreRecomputer,
	m *metrics.Metrics,
) *CalendarStrategy {
	s := NewCalendarStrategy(cfg, log, providerClient, eventRepo, recomputer, m)
	s.highImpactOnly = true
	return s
}

// GetType returns the cycle type this strategy handles.
func (s *CalendarStrategy) GetType() entity.CycleType {
	if s.highImpactOnly {
		return entity.CycleCalendarHighImpact
	}
	return entity.CycleCalendarUpdate
}

// Validate reports a missing provider credential.
func (s *CalendarStrategy) Validate() error {
	return requireProviderKey(s.cfg)
}

// Execute runs one calendar cycle: fetch, plan the delta against the registry, insert
// each novel release once, then recompute the touched currencies.
func (s *CalendarStrategy) Execute(ctx context.Context, run *entity.CycleRun) (*dto.CycleOutcome, error) {
	raw := s.provider.FetchCalendar(ctx)
	candidates := scoring.Candidates(raw, s.highImpactOnly)

	existing, err := s.eventRepo.FindExistingIDs(ctx, scoring.CandidateIDs(candidates))
	if err != nil {
		return nil, fmt.Errorf("load existing event ids: %w", err)
	}

	now := utils.TimeNowUTC()
	plan := scoring.PlanCalendar(candidates, existing, now)

	result := &dto.CalendarCycleResult{
		Fetched:     len(raw),
		Candidates:  len(candidates),
		NewReleases: len(plan.Events),
	}

	var (
		inserted []*entity.EconomicEvent
		releases []dto.HighImpactRelease
	)
	for _, event := range plan.Events {
		ok, err := s.eventRepo.CreateIgnoreConflict(ctx, event)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "Failed to store economic event",
				logger.StringField("event_id", event.EventID),
				logger.ErrorField(err),
			)
			continue
		}
		if !ok {
			result.Duplicates++
			continue
		}

		inserted = append(inserted, event)
		if event.Impact == entity.ImpactHigh {
			result.HighImpact++
			releases = append(releases, dto.HighImpactRelease{
				EventID:  event.EventID,
				Country:  event.Country,
				Currency: event.Currency,
				Title:    event.Title,
				Actual:   event.Actual,
				Forecast: event.Forecast,
				Score:    event.Score,
			})
		}
	}
	result.Inserted = len(inserted)
	result.HadNewReleases = result.Inserted > 0

	s.metrics.AddEvents("inserted", result.Inserted)
	s.metrics.AddEvents("duplicate", result.Duplicates)
	s.metrics.AddEvents("failed", result.Failed)

	result.Currencies = scoring.TouchedCurrencies(inserted)
	if len(result.Currencies) > 0 {
		recomputed := s.recomputer.RecomputeMany(ctx, result.Currencies)
		if len(recomputed.Failed) > 0 {
			s.logger.WarnContext(ctx, "Some currency scores were not recomputed",
				logger.Field("currencies", recomputed.Failed),
			)
		}
	}

	outcome := &dto.CycleOutcome{
		Message:    calendarMessage(result, s.highImpactOnly),
		Result:     result,
		Currencies: result.Currencies,
	}

	if s.highImpactOnly && len(releases) > 0 {
		result.HighImpactDetected = true
		outcome.Escalation = &dto.HighImpactDetected{
			MessageID:  uuid.NewString(),
			RunID:      run.RunID,
			DetectedAt: now,
			Releases:   releases,
		}
	}

	s.logger.InfoContext(ctx, "Calendar cycle finished",
		logger.StringField("cycle", string(s.GetType())),
		logger.IntField("fetched", result.Fetched),
		logger.IntField("new_releases", result.NewReleases),
		logger.IntField("inserted", result.Inserted),
		logger.IntField("duplicates", result.Duplicates),
		logger.IntField("failed", result.Failed),
	)
	return outcome, nil
}

func calendarMessage(result *dto.CalendarCycleResult, highImpactOnly bool) string {
	kind := "releases"
	if highImpactOnly {
		kind = "high impact releases"
	}
	if result.Inserted == 0 {
		return "No new " + kind
	}
	return fmt.Sprintf("Stored %d new %s", result.Inserted, kind)
}
