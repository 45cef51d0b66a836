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
)

const defaultNewsRetention = 7 * 24 * 60 * 60

// NewsStrategy refreshes the market news store.
type NewsStrategy struct {
	cfg      *config.Config
	logger   *logger.Logger
	provider provider.Client
	newsRepo repository.MarketNewsRepository
	metrics  *metrics.Metrics
}

// NewNewsStrategy creates a new instance of NewsStrategy.
func NewNewsStrategy(
	cfg *config.Config,
	log *logger.Logger,
	providerClient provider.Client,
	newsRepo repository.MarketNewsRepository,
	m *metrics.Metrics,
) *NewsStrategy {
	return &NewsStrategy{
		cfg:      cfg,
		logger:   log,
		provider: providerClient,
		newsRepo: newsRepo,
		metrics:  m,
	}
}

// GetType returns the cycle type this strategy handles.
func (s *NewsStrategy) GetType() entity.CycleType {
	return entity.CycleNewsUpdate
}

// Validate reports a missing provider credential.
func (s *NewsStrategy) Validate() error {
	return requireProviderKey(s.cfg)
}

// Execute fetches every configured category and feed, keeps the newest articles,
// classifies and stores each once, then prunes articles past retention.
func (s *NewsStrategy) Execute(ctx context.Context, run *entity.CycleRun) (*dto.CycleOutcome, error) {
	var fetched []dto.FinnhubNewsArticle
	for _, category := range s.cfg.News.Categories {
		fetched = append(fetched, s.provider.FetchNews(ctx, category)...)
	}
	fetched = append(fetched, s.provider.FetchFeeds(ctx)...)

	selected := scoring.SelectLatest(fetched, s.cfg.News.MaxArticles)
	result := &dto.NewsCycleResult{
		Fetched:  len(fetched),
		Selected: len(selected),
	}

	for _, raw := range selected {
		article, ok := scoring.BuildArticle(raw)
		if !ok {
			result.Skipped++
			continue
		}
		inserted, err := s.newsRepo.CreateIgnoreConflict(ctx, article)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "Failed to store news article",
				logger.StringField("headline", article.Headline),
				logger.ErrorField(err),
			)
			continue
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Inserted++
	}

	retention := int64(s.cfg.News.Retention.Seconds())
	if retention <= 0 {
		retention = defaultNewsRetention
	}
	result.Cutoff = utils.TimeNowUTC().Unix() - retention

	pruned, err := s.newsRepo.DeleteOlderThan(ctx, result.Cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to prune old news", logger.ErrorField(err))
	} else {
		result.Pruned = pruned
	}

	s.metrics.AddNews("inserted", result.Inserted)
	s.metrics.AddNews("skipped", result.Skipped)
	s.metrics.AddNews("failed", result.Failed)
	s.metrics.AddPruned(result.Pruned)

	s.logger.InfoContext(ctx, "News cycle finished",
		logger.IntField("fetched", result.Fetched),
		logger.IntField("inserted", result.Inserted),
		logger.IntField("skipped", result.Skipped),
		logger.Int64Field("pruned", result.Pruned),
	)

	message := "No news articles available"
	if result.Fetched > 0 {
		message = fmt.Sprintf("Stored %d new articles", result.Inserted)
	}
	return &dto.CycleOutcome{Message: message, Result: result}, nil
}
