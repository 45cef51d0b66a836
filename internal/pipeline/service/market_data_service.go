package service

import (
	"context"
	"strings"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// MarketDataService serves the stored scores, news and cycle history to readers.
type MarketDataService interface {
	ListScores(ctx context.Context) ([]entity.CurrencyScore, error)
	GetScore(ctx context.Context, currency string) (*entity.CurrencyScore, error)
	LatestNews(ctx context.Context, limit int, impact entity.ImpactLevel) ([]entity.MarketNews, error)
	RecentRuns(ctx context.Context, limit int, cycleType entity.CycleType) ([]entity.CycleRun, error)
}

// NewMarketDataService creates a new MarketDataService.
func NewMarketDataService(
	scoreRepo repository.CurrencyScoreRepository,
	newsRepo repository.MarketNewsRepository,
	runRepo repository.CycleRunRepository,
) MarketDataService {
	return &marketDataService{
		scoreRepo: scoreRepo,
		newsRepo:  newsRepo,
		runRepo:   runRepo,
	}
}

type marketDataService struct {
	scoreRepo repository.CurrencyScoreRepository
	newsRepo  repository.MarketNewsRepository
	runRepo   repository.CycleRunRepository
}

func (s *marketDataService) ListScores(ctx context.Context) ([]entity.CurrencyScore, error) {
	return s.scoreRepo.FindAll(ctx)
}

// GetScore returns nil, nil for a currency without an aggregate.
func (s *marketDataService) GetScore(ctx context.Context, currency string) (*entity.CurrencyScore, error) {
	return s.scoreRepo.FindByCurrency(ctx, strings.ToUpper(currency))
}

func (s *marketDataService) LatestNews(ctx context.Context, limit int, impact entity.ImpactLevel) ([]entity.MarketNews, error) {
	return s.newsRepo.FindLatest(ctx, clampLimit(limit), impact)
}

func (s *marketDataService) RecentRuns(ctx context.Context, limit int, cycleType entity.CycleType) ([]entity.CycleRun, error) {
	return s.runRepo.FindRecent(ctx, clampLimit(limit), cycleType)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
