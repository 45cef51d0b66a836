package strategy

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/dto"
)

// CycleStrategy defines the interface for the different pipeline cycles.
// Validate is called before anything is persisted for the run.
type CycleStrategy interface {
	Validate() error
	Execute(ctx context.Context, run *entity.CycleRun) (*dto.CycleOutcome, error)
	GetType() entity.CycleType
}

// ScoreRecomputer rebuilds currency aggregates from stored event scores.
type ScoreRecomputer interface {
	RecomputeMany(ctx context.Context, currencies []string) *dto.RecomputeResult
	RecomputeAll(ctx context.Context) (*dto.RecomputeResult, error)
}

func requireProviderKey(cfg *config.Config) error {
	if cfg.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub api key: %w", dto.ErrMissingConfiguration)
	}
	return nil
}
