package service

import (
	"context"
	"sort"
	"sync"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/repository"
)

// memEventRepo enforces the event_id unique key like the forex_events table.
type memEventRepo struct {
	mu      sync.Mutex
	events  map[string]entity.EconomicEvent
	findErr error
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[string]entity.EconomicEvent{}}
}

func (r *memEventRepo) FindExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := r.events[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (r *memEventRepo) CreateIgnoreConflict(_ context.Context, ev *entity.EconomicEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[ev.EventID]; ok {
		return false, nil
	}
	r.events[ev.EventID] = *ev
	return true, nil
}

func (r *memEventRepo) scoresFor(currency string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var scores []float64
	for _, ev := range r.events {
		if ev.Currency == currency {
			scores = append(scores, ev.Score)
		}
	}
	return scores
}

func (r *memEventRepo) ListCurrencies(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := map[string]struct{}{}
	for _, ev := range r.events {
		set[ev.Currency] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// memScoreRepo holds one lock across read-and-write like the per-currency advisory lock.
type memScoreRepo struct {
	mu     sync.Mutex
	events *memEventRepo
	scores map[string]entity.CurrencyScore
}

func newMemScoreRepo(events *memEventRepo) *memScoreRepo {
	return &memScoreRepo{events: events, scores: map[string]entity.CurrencyScore{}}
}

func (r *memScoreRepo) RecomputeFromEvents(_ context.Context, currency string, build repository.AggregateBuilder) (*entity.CurrencyScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aggregate := build(currency, r.events.scoresFor(currency))
	r.scores[currency] = *aggregate
	return aggregate, nil
}

func (r *memScoreRepo) FindAll(_ context.Context) ([]entity.CurrencyScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.CurrencyScore, 0, len(r.scores))
	for _, s := range r.scores {
		out = append(out, s)
	}
	return out, nil
}

func (r *memScoreRepo) FindByCurrency(_ context.Context, currency string) (*entity.CurrencyScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scores[currency]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

type newsKey struct {
	headline string
	datetime int64
}

// memNewsRepo enforces the (headline, datetime) unique key like the market_news table.
type memNewsRepo struct {
	mu   sync.Mutex
	news map[newsKey]entity.MarketNews
}

func newMemNewsRepo() *memNewsRepo {
	return &memNewsRepo{news: map[newsKey]entity.MarketNews{}}
}

func (r *memNewsRepo) CreateIgnoreConflict(_ context.Context, n *entity.MarketNews) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := newsKey{n.Headline, n.Datetime}
	if _, ok := r.news[k]; ok {
		return false, nil
	}
	r.news[k] = *n
	return true, nil
}

func (r *memNewsRepo) DeleteOlderThan(_ context.Context, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.news {
		if k.datetime < cutoff {
			delete(r.news, k)
			n++
		}
	}
	return n, nil
}

func (r *memNewsRepo) FindLatest(_ context.Context, limit int, impact entity.ImpactLevel) ([]entity.MarketNews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.MarketNews
	for _, n := range r.news {
		if impact == "" || n.ImpactLevel == impact {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Datetime > out[j].Datetime })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNewsRepo) has(headline string, datetime int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.news[newsKey{headline, datetime}]
	return ok
}

func (r *memNewsRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.news)
}

type memRunRepo struct {
	mu   sync.Mutex
	runs map[string]entity.CycleRun
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: map[string]entity.CycleRun{}}
}

func (r *memRunRepo) Create(_ context.Context, run *entity.CycleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.RunID] = *run
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *entity.CycleRun) error {
	return r.Create(context.Background(), run)
}

func (r *memRunRepo) FindRecent(_ context.Context, limit int, cycleType entity.CycleType) ([]entity.CycleRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CycleRun
	for _, run := range r.runs {
		if cycleType == "" || run.CycleType == cycleType {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *memRunRepo) get(runID string) entity.CycleRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[runID]
}

// stubProvider serves fixed upstream data.
type stubProvider struct {
	calendar []dto.FinnhubEconomicEvent
	news     map[string][]dto.FinnhubNewsArticle
	feeds    []dto.FinnhubNewsArticle
}

func (p *stubProvider) FetchCalendar(context.Context) []dto.FinnhubEconomicEvent {
	return p.calendar
}

func (p *stubProvider) FetchNews(_ context.Context, category string) []dto.FinnhubNewsArticle {
	return p.news[category]
}

func (p *stubProvider) FetchFeeds(context.Context) []dto.FinnhubNewsArticle {
	return p.feeds
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*dto.HighImpactDetected
}

func (p *recordingPublisher) Publish(_ context.Context, msg *dto.HighImpactDetected) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) published() []*dto.HighImpactDetected {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*dto.HighImpactDetected(nil), p.messages...)
}
