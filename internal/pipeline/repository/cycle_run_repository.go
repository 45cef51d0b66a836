package repository

import (
	"context"

	"golang-forex-pulse/internal/entity"

	"gorm.io/gorm"
)

// CycleRunRepository defines the interface for cycle execution history.
type CycleRunRepository interface {
	Create(ctx context.Context, run *entity.CycleRun) error
	Update(ctx context.Context, run *entity.CycleRun) error
	FindRecent(ctx context.Context, limit int, cycleType entity.CycleType) ([]entity.CycleRun, error)
}

// NewCycleRunRepository creates a new GORM-based cycle run repository.
func NewCycleRunRepository(db *gorm.DB) CycleRunRepository {
	return &cycleRunRepository{db: db}
}

type cycleRunRepository struct {
	db *gorm.DB
}

// Create inserts a new cycle run record.
func (r *cycleRunRepository) Create(ctx context.Context, run *entity.CycleRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update updates an existing cycle run record.
func (r *cycleRunRepository) Update(ctx context.Context, run *entity.CycleRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindRecent lists runs newest first, optionally for one cycle type.
func (r *cycleRunRepository) FindRecent(ctx context.Context, limit int, cycleType entity.CycleType) ([]entity.CycleRun, error) {
	var runs []entity.CycleRun
	q := r.db.WithContext(ctx).Order("started_at desc").Limit(limit)
	if cycleType != "" {
		q = q.Where("cycle_type = ?", cycleType)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
