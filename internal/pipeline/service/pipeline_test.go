package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/strategy"
	"golang-forex-pulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	cfg          *config.Config
	provider     *stubProvider
	events       *memEventRepo
	scores       *memScoreRepo
	news         *memNewsRepo
	runs         *memRunRepo
	publisher    *recordingPublisher
	orchestrator OrchestratorService
}

func newHarness(p *stubProvider) *harness {
	h := &harness{
		cfg: &config.Config{
			Finnhub: config.Finnhub{APIKey: "test-key"},
			News: config.News{
				Categories:  []string{"forex", "general", "crypto"},
				MaxArticles: 50,
				Retention:   7 * 24 * time.Hour,
			},
		},
		provider:  p,
		events:    newMemEventRepo(),
		news:      newMemNewsRepo(),
		runs:      newMemRunRepo(),
		publisher: &recordingPublisher{},
	}

	h.scores = newMemScoreRepo(h.events)

	log := logger.NewNop()
	aggregator := NewAggregatorService(h.events, h.scores, log)
	escalation := NewEscalationService(aggregator, h.publisher, log, nil)
	h.orchestrator = NewOrchestratorService(h.runs, escalation, log, nil, []strategy.CycleStrategy{
		strategy.NewCalendarStrategy(h.cfg, log, p, h.events, aggregator, nil),
		strategy.NewHighImpactCalendarStrategy(h.cfg, log, p, h.events, aggregator, nil),
		strategy.NewNewsStrategy(h.cfg, log, p, h.news, nil),
		strategy.NewScoreRecomputeStrategy(aggregator),
	})
	return h
}

func release(country, title, impact, actual, forecast string, epoch int64) dto.FinnhubEconomicEvent {
	ev := dto.FinnhubEconomicEvent{
		Country: country,
		Event:   title,
		Impact:  impact,
		Time:    dto.EpochTime(epoch),
	}
	if actual != "" {
		ev.Actual = dto.NewNumericText(actual)
	}
	if forecast != "" {
		ev.Estimate = dto.NewNumericText(forecast)
	}
	return ev
}

func calendarResult(t *testing.T, report *dto.CycleReport) *dto.CalendarCycleResult {
	t.Helper()
	result, ok := report.Result.(*dto.CalendarCycleResult)
	require.True(t, ok, "unexpected result type %T", report.Result)
	return result
}

func newsResult(t *testing.T, report *dto.CycleReport) *dto.NewsCycleResult {
	t.Helper()
	result, ok := report.Result.(*dto.NewsCycleResult)
	require.True(t, ok, "unexpected result type %T", report.Result)
	return result
}

const releaseEpoch = 1709296200

func TestCalendarCycle_ScoresAndAggregates(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("US", "CPI", "high", "5", "4", releaseEpoch),
		release("US", "Jobless Claims", "low", "3.2", "4", releaseEpoch),
		release("US", "Retail Sales", "medium", "", "1", releaseEpoch),
	}})

	report, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarUpdate, entity.TriggerHTTP)
	require.NoError(t, err)

	result := calendarResult(t, report)
	assert.Equal(t, 2, result.NewReleases)
	assert.Equal(t, 2, result.Inserted)
	assert.True(t, result.HadNewReleases)
	assert.Equal(t, []string{"USD"}, result.Currencies)
	assert.Nil(t, report.HighImpactDetected)

	cpi := h.events.events[fmt.Sprintf("US_CPI_%d", releaseEpoch)]
	assert.Equal(t, 75.0, cpi.Score)

	usd, err := h.scores.FindByCurrency(context.Background(), "USD")
	require.NoError(t, err)
	require.NotNil(t, usd)
	assert.Equal(t, 55.0, usd.TotalScore)
	assert.Equal(t, int64(2), usd.EventCount)

	run := h.runs.get(report.RunID)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, entity.TriggerHTTP, run.Trigger)
	assert.True(t, run.CompletedAt.Valid)
	assert.Equal(t, []string{"USD"}, []string(run.Currencies))
}

func TestCalendarCycle_Idempotent(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("US", "CPI", "high", "5", "4", releaseEpoch),
		release("EU", "GDP", "medium", "1.1", "1", releaseEpoch),
	}})
	ctx := context.Background()

	first, err := h.orchestrator.Run(ctx, entity.CycleCalendarUpdate, entity.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, 2, calendarResult(t, first).Inserted)
	before, _ := h.scores.FindAll(ctx)

	second, err := h.orchestrator.Run(ctx, entity.CycleCalendarUpdate, entity.TriggerCron)
	require.NoError(t, err)

	result := calendarResult(t, second)
	assert.Equal(t, 0, result.NewReleases)
	assert.Equal(t, 0, result.Inserted)
	assert.False(t, result.HadNewReleases)
	assert.Empty(t, result.Currencies)
	assert.Equal(t, "No new releases", second.Message)
	assert.Equal(t, 2, h.events.count())

	after, _ := h.scores.FindAll(ctx)
	assert.ElementsMatch(t, before, after)
}

func TestCalendarCycle_ZeroForecastAndUnmappedCountry(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("JP", "Trade Balance", "high", "0.5", "0", releaseEpoch),
		release("XX", "Holiday", "low", "1", "2", releaseEpoch),
	}})

	report, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarUpdate, entity.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, []string{"JPY"}, calendarResult(t, report).Currencies)

	jp := h.events.events[fmt.Sprintf("JP_Trade Balance_%d", releaseEpoch)]
	assert.Equal(t, 0.0, jp.Score)

	xx := h.events.events[fmt.Sprintf("XX_Holiday_%d", releaseEpoch)]
	assert.Equal(t, "XX", xx.Currency)
	assert.Equal(t, -50.0, xx.Score)

	missing, _ := h.scores.FindByCurrency(context.Background(), "XX")
	assert.Nil(t, missing)
}

func TestCalendarCycle_RegistryFailureAborts(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("US", "CPI", "high", "5", "4", releaseEpoch),
	}})
	h.events.findErr = errors.New("connection refused")

	report, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarUpdate, entity.TriggerHTTP)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "load existing event ids")
	assert.Zero(t, h.events.count())

	require.Len(t, h.runs.runs, 1)
	for _, run := range h.runs.runs {
		assert.Equal(t, entity.RunStatusFailed, run.Status)
		assert.True(t, run.ErrorMessage.Valid)
	}
}

func TestCalendarCycle_MissingCredentials(t *testing.T) {
	h := newHarness(&stubProvider{})
	h.cfg.Finnhub.APIKey = ""

	_, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarUpdate, entity.TriggerHTTP)
	assert.ErrorIs(t, err, dto.ErrMissingConfiguration)

	_, err = h.orchestrator.Run(context.Background(), entity.CycleNewsUpdate, entity.TriggerHTTP)
	assert.ErrorIs(t, err, dto.ErrMissingConfiguration)

	// Nothing is recorded for a cycle that cannot start.
	assert.Empty(t, h.runs.runs)
	assert.Zero(t, h.events.count())
	assert.Zero(t, h.news.count())
}

func TestScoreRecompute_RunsWithoutProviderKey(t *testing.T) {
	h := newHarness(&stubProvider{})
	h.cfg.Finnhub.APIKey = ""

	_, err := h.orchestrator.Run(context.Background(), entity.CycleScoreRecompute, entity.TriggerHTTP)
	require.NoError(t, err)
	assert.Len(t, h.runs.runs, 1)
}

func TestOrchestrator_UnknownCycle(t *testing.T) {
	h := newHarness(&stubProvider{})
	_, err := h.orchestrator.Run(context.Background(), entity.CycleType("hourly-bias"), entity.TriggerHTTP)
	assert.ErrorIs(t, err, dto.ErrUnknownCycle)
	assert.Equal(t, entity.CycleTypes, h.orchestrator.CycleTypes())
}

func TestHighImpactCycle_EscalatesOnce(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("US", "Non-Farm Payrolls", "high", "250", "200", releaseEpoch),
		release("GB", "Retail Sales", "medium", "1", "2", releaseEpoch),
	}})
	// An older event for another currency is recomputed by the escalation as well.
	_, err := h.events.CreateIgnoreConflict(context.Background(), &entity.EconomicEvent{
		EventID: "EU_GDP_1", Country: "EU", Currency: "EUR", Score: 12.5,
	})
	require.NoError(t, err)

	report, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarHighImpact, entity.TriggerCron)
	require.NoError(t, err)

	result := calendarResult(t, report)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.HighImpact)
	assert.True(t, result.HighImpactDetected)
	require.NotNil(t, report.HighImpactDetected)
	assert.True(t, *report.HighImpactDetected)
	assert.True(t, report.Escalated)

	published := h.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, report.RunID, published[0].RunID)
	assert.NotEmpty(t, published[0].MessageID)
	require.Len(t, published[0].Releases, 1)
	assert.Equal(t, "USD", published[0].Releases[0].Currency)
	assert.Equal(t, 75.0, published[0].Releases[0].Score)

	eur, _ := h.scores.FindByCurrency(context.Background(), "EUR")
	require.NotNil(t, eur)
	assert.Equal(t, 12.5, eur.TotalScore)

	again, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarHighImpact, entity.TriggerCron)
	require.NoError(t, err)
	require.NotNil(t, again.HighImpactDetected)
	assert.False(t, *again.HighImpactDetected)
	assert.False(t, again.Escalated)
	assert.Len(t, h.publisher.published(), 1)
}

func TestCalendarCycle_ConcurrentRunsConverge(t *testing.T) {
	h := newHarness(&stubProvider{calendar: []dto.FinnhubEconomicEvent{
		release("US", "CPI", "high", "5", "4", releaseEpoch),
		release("US", "Jobless Claims", "low", "3.2", "4", releaseEpoch),
		release("EU", "GDP", "medium", "1.1", "1", releaseEpoch),
	}})

	const runs = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := h.orchestrator.Run(context.Background(), entity.CycleCalendarUpdate, entity.TriggerCron)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inserted += calendarResult(t, report).Inserted
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 3, h.events.count())

	usd, _ := h.scores.FindByCurrency(context.Background(), "USD")
	require.NotNil(t, usd)
	assert.Equal(t, 55.0, usd.TotalScore)
	assert.Equal(t, int64(2), usd.EventCount)
}

func TestScoreRecomputeCycle(t *testing.T) {
	h := newHarness(&stubProvider{})
	ctx := context.Background()
	for _, ev := range []*entity.EconomicEvent{
		{EventID: "a", Country: "CA", Currency: "CAD", Score: 10.25},
		{EventID: "b", Country: "CA", Currency: "CAD", Score: -0.25},
		{EventID: "c", Country: "XX", Currency: "XX", Score: 99},
	} {
		_, err := h.events.CreateIgnoreConflict(ctx, ev)
		require.NoError(t, err)
	}

	report, err := h.orchestrator.Run(ctx, entity.CycleScoreRecompute, entity.TriggerHTTP)
	require.NoError(t, err)
	assert.Equal(t, "Recomputed 1 currency scores", report.Message)

	cad, _ := h.scores.FindByCurrency(ctx, "CAD")
	require.NotNil(t, cad)
	assert.Equal(t, 10.0, cad.TotalScore)
	assert.Equal(t, int64(2), cad.EventCount)
}

func TestNewsCycle_DedupAcrossCategoriesAndRuns(t *testing.T) {
	now := time.Now().Unix()
	shared := dto.FinnhubNewsArticle{Headline: "Fed raises interest rate", Datetime: now - 60, Category: "forex"}
	h := newHarness(&stubProvider{news: map[string][]dto.FinnhubNewsArticle{
		"forex":   {shared, {Headline: "Euro steady", Datetime: now - 120, Category: "forex"}},
		"general": {shared},
		"crypto":  {{Headline: "", Datetime: now}},
	}})
	ctx := context.Background()

	report, err := h.orchestrator.Run(ctx, entity.CycleNewsUpdate, entity.TriggerCron)
	require.NoError(t, err)

	result := newsResult(t, report)
	assert.Equal(t, 4, result.Fetched)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 2, h.news.count())

	stored := h.news.news[newsKey{shared.Headline, shared.Datetime}]
	assert.Equal(t, entity.ImpactHigh, stored.ImpactLevel)
	assert.Equal(t, "Market News", stored.Source)

	again, err := h.orchestrator.Run(ctx, entity.CycleNewsUpdate, entity.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, 0, newsResult(t, again).Inserted)
	assert.Equal(t, 2, h.news.count())
}

func TestNewsCycle_RetentionPrunesOldArticles(t *testing.T) {
	day := int64(24 * 60 * 60)
	now := time.Now().Unix()
	h := newHarness(&stubProvider{news: map[string][]dto.FinnhubNewsArticle{
		"forex": {
			{Headline: "Eight days old", Datetime: now - 8*day},
			{Headline: "Six days old", Datetime: now - 6*day},
		},
	}})

	report, err := h.orchestrator.Run(context.Background(), entity.CycleNewsUpdate, entity.TriggerCron)
	require.NoError(t, err)

	assert.Equal(t, int64(1), newsResult(t, report).Pruned)
	assert.False(t, h.news.has("Eight days old", now-8*day))
	assert.True(t, h.news.has("Six days old", now-6*day))
}

func TestNewsCycle_KeepsNewestFifty(t *testing.T) {
	now := time.Now().Unix()
	var articles []dto.FinnhubNewsArticle
	for i := 0; i < 60; i++ {
		articles = append(articles, dto.FinnhubNewsArticle{
			Headline: fmt.Sprintf("Headline %d", i),
			Datetime: now - int64(i*60),
		})
	}
	h := newHarness(&stubProvider{feeds: articles})

	report, err := h.orchestrator.Run(context.Background(), entity.CycleNewsUpdate, entity.TriggerCron)
	require.NoError(t, err)

	result := newsResult(t, report)
	assert.Equal(t, 60, result.Fetched)
	assert.Equal(t, 50, result.Selected)
	assert.Equal(t, 50, h.news.count())
	assert.True(t, h.news.has("Headline 0", now))
	assert.False(t, h.news.has("Headline 59", now-59*60))
}

func TestNewsCycle_NoDataIsSuccess(t *testing.T) {
	h := newHarness(&stubProvider{})

	report, err := h.orchestrator.Run(context.Background(), entity.CycleNewsUpdate, entity.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, "No news articles available", report.Message)
	assert.Equal(t, 0, newsResult(t, report).Inserted)
}
