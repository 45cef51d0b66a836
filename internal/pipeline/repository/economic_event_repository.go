package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-forex-pulse/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// existenceChunkSize bounds the IN list of one existence query.
const existenceChunkSize = 500

// EconomicEventRepository is the dedup registry and the append-only event store.
type EconomicEventRepository interface {
	FindExistingIDs(ctx context.Context, eventIDs []string) (map[string]struct{}, error)
	CreateIgnoreConflict(ctx context.Context, event *entity.EconomicEvent) (bool, error)
	ListCurrencies(ctx context.Context) ([]string, error)
}

// NewEconomicEventRepository creates a new GORM-based economic event repository.
func NewEconomicEventRepository(db *gorm.DB) EconomicEventRepository {
	return &economicEventRepository{db: db}
}

type economicEventRepository struct {
	db *gorm.DB
}

// FindExistingIDs returns the subset of eventIDs already present in the registry.
// It is an indexed lookup on the unique event_id column, not a full scan.
func (r *economicEventRepository) FindExistingIDs(ctx context.Context, eventIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(eventIDs))
	for start := 0; start < len(eventIDs); start += existenceChunkSize {
		end := start + existenceChunkSize
		if end > len(eventIDs) {
			end = len(eventIDs)
		}

		var found []string
		err := r.db.WithContext(ctx).Model(&entity.EconomicEvent{}).
			Where("event_id IN ?", eventIDs[start:end]).
			Pluck("event_id", &found).Error
		if err != nil {
			return nil, fmt.Errorf("find existing event ids: %w", err)
		}
		for _, id := range found {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

// CreateIgnoreConflict inserts event unless its event_id exists. It reports whether a
// row was written; losing a race to a concurrent cycle is not an error.
func (r *economicEventRepository) CreateIgnoreConflict(ctx context.Context, event *entity.EconomicEvent) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)

	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ListCurrencies returns every currency that has at least one stored event.
func (r *economicEventRepository) ListCurrencies(ctx context.Context) ([]string, error) {
	var currencies []string
	err := r.db.WithContext(ctx).Model(&entity.EconomicEvent{}).
		Distinct("currency").
		Order("currency").
		Pluck("currency", &currencies).Error
	if err != nil {
		return nil, err
	}
	return currencies, nil
}
