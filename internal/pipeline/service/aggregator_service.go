package service

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/repository"
	"golang-forex-pulse/internal/pipeline/scoring"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/utils"

	"github.com/shopspring/decimal"
)

// AggregatorService maintains the per-currency score aggregates.
type AggregatorService interface {
	Recompute(ctx context.Context, currency string) (*entity.CurrencyScore, error)
	RecomputeMany(ctx context.Context, currencies []string) *dto.RecomputeResult
	RecomputeAll(ctx context.Context) (*dto.RecomputeResult, error)
}

// NewAggregatorService creates a new AggregatorService.
func NewAggregatorService(
	eventRepo repository.EconomicEventRepository,
	scoreRepo repository.CurrencyScoreRepository,
	log *logger.Logger,
) AggregatorService {
	return &aggregatorService{
		eventRepo: eventRepo,
		scoreRepo: scoreRepo,
		logger:    log,
	}
}

type aggregatorService struct {
	eventRepo repository.EconomicEventRepository
	scoreRepo repository.CurrencyScoreRepository
	logger    *logger.Logger
}

// Recompute re-sums every stored score of currency from a fresh read and overwrites the
// aggregate, so the stored total never drifts from the events.
func (s *aggregatorService) Recompute(ctx context.Context, currency string) (*entity.CurrencyScore, error) {
	aggregate, err := s.scoreRepo.RecomputeFromEvents(ctx, currency, buildAggregate)
	if err != nil {
		return nil, fmt.Errorf("recompute %s: %w", currency, err)
	}

	s.logger.DebugContext(ctx, "Currency score recomputed",
		logger.StringField("currency", currency),
		logger.FloatField("total_score", aggregate.TotalScore),
		logger.Int64Field("event_count", aggregate.EventCount),
	)
	return aggregate, nil
}

// buildAggregate sums scores exactly and rounds the total to two decimals.
func buildAggregate(currency string, scores []float64) *entity.CurrencyScore {
	total := decimal.Zero
	for _, v := range scores {
		total = total.Add(decimal.NewFromFloat(v))
	}
	rounded, _ := total.Round(2).Float64()

	return &entity.CurrencyScore{
		Currency:    currency,
		TotalScore:  rounded,
		EventCount:  int64(len(scores)),
		LastUpdated: utils.TimeNowUTC(),
	}
}

// RecomputeMany recomputes each currency independently; one failure does not stop the rest.
func (s *aggregatorService) RecomputeMany(ctx context.Context, currencies []string) *dto.RecomputeResult {
	result := &dto.RecomputeResult{
		Currencies: []string{},
		Scores:     []*entity.CurrencyScore{},
		Failed:     []string{},
	}
	for _, currency := range currencies {
		aggregate, err := s.Recompute(ctx, currency)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to recompute currency score",
				logger.StringField("currency", currency),
				logger.ErrorField(err),
			)
			result.Failed = append(result.Failed, currency)
			continue
		}
		result.Currencies = append(result.Currencies, currency)
		result.Scores = append(result.Scores, aggregate)
	}
	return result
}

// RecomputeAll recomputes every tracked currency that has stored events.
func (s *aggregatorService) RecomputeAll(ctx context.Context) (*dto.RecomputeResult, error) {
	stored, err := s.eventRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}

	currencies := make([]string, 0, len(stored))
	for _, c := range stored {
		if scoring.TrackedCurrency(c) {
			currencies = append(currencies, c)
		}
	}
	return s.RecomputeMany(ctx, currencies), nil
}
