package repository

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AggregateBuilder turns every stored event score of a currency into its aggregate.
type AggregateBuilder func(currency string, scores []float64) *entity.CurrencyScore

// CurrencyScoreRepository stores one aggregate row per currency.
type CurrencyScoreRepository interface {
	RecomputeFromEvents(ctx context.Context, currency string, build AggregateBuilder) (*entity.CurrencyScore, error)
	FindAll(ctx context.Context) ([]entity.CurrencyScore, error)
	FindByCurrency(ctx context.Context, currency string) (*entity.CurrencyScore, error)
}

// NewCurrencyScoreRepository creates a new GORM-based currency score repository.
func NewCurrencyScoreRepository(db *gorm.DB) CurrencyScoreRepository {
	return &currencyScoreRepository{db: db}
}

type currencyScoreRepository struct {
	db *gorm.DB
}

// RecomputeFromEvents serializes recomputes of one currency with a transaction-scoped
// advisory lock, reads the currency's event scores after taking it and upserts the
// aggregate built from them. The last recompute to take the lock therefore sees every
// event committed before it, so overlapping cycles cannot leave a stale total behind.
func (r *currencyScoreRepository) RecomputeFromEvents(ctx context.Context, currency string, build AggregateBuilder) (*entity.CurrencyScore, error) {
	var aggregate *entity.CurrencyScore
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "economic_scores:"+currency).Error; err != nil {
			return fmt.Errorf("lock currency %s: %w", currency, err)
		}

		var scores []float64
		if err := tx.Model(&entity.EconomicEvent{}).Where("currency = ?", currency).Pluck("score", &scores).Error; err != nil {
			return fmt.Errorf("read scores for %s: %w", currency, err)
		}

		aggregate = build(currency, scores)
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_score", "event_count", "last_updated"}),
		}).Create(aggregate).Error
	})
	if err != nil {
		return nil, err
	}
	return aggregate, nil
}

func (r *currencyScoreRepository) FindAll(ctx context.Context) ([]entity.CurrencyScore, error) {
	var scores []entity.CurrencyScore
	if err := r.db.WithContext(ctx).Order("currency").Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// FindByCurrency returns nil, nil when the currency has no aggregate yet.
func (r *currencyScoreRepository) FindByCurrency(ctx context.Context, currency string) (*entity.CurrencyScore, error) {
	var score entity.CurrencyScore
	result := r.db.WithContext(ctx).Where("currency = ?", currency).First(&score)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &score, nil
}
