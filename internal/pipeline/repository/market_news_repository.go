package repository

import (
	"context"
	"errors"

	"golang-forex-pulse/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarketNewsRepository is the news store keyed by (headline, datetime).
type MarketNewsRepository interface {
	CreateIgnoreConflict(ctx context.Context, news *entity.MarketNews) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoffEpoch int64) (int64, error)
	FindLatest(ctx context.Context, limit int, impact entity.ImpactLevel) ([]entity.MarketNews, error)
}

// NewMarketNewsRepository creates a new instance of MarketNewsRepository.
func NewMarketNewsRepository(db *gorm.DB) MarketNewsRepository {
	return &marketNewsRepository{
		db: db,
	}
}

type marketNewsRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict writes news once. A duplicate (headline, datetime) is absorbed and
// reported as inserted=false.
func (r *marketNewsRepository) CreateIgnoreConflict(ctx context.Context, news *entity.MarketNews) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "headline"}, {Name: "datetime"}},
		DoNothing: true,
	}).Create(news)

	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// DeleteOlderThan removes every article whose datetime is strictly before cutoffEpoch.
func (r *marketNewsRepository) DeleteOlderThan(ctx context.Context, cutoffEpoch int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("datetime < ?", cutoffEpoch).Delete(&entity.MarketNews{})
	return tx.RowsAffected, tx.Error
}

// FindLatest returns the newest articles, optionally restricted to one impact tier.
func (r *marketNewsRepository) FindLatest(ctx context.Context, limit int, impact entity.ImpactLevel) ([]entity.MarketNews, error) {
	var news []entity.MarketNews
	q := r.db.WithContext(ctx).Order("datetime desc").Limit(limit)
	if impact != "" {
		q = q.Where("impact_level = ?", impact)
	}
	if err := q.Find(&news).Error; err != nil {
		return nil, err
	}
	return news, nil
}
