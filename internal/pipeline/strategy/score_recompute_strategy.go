package strategy

import (
	"context"
	"fmt"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
)

// ScoreRecomputeStrategy rebuilds every currency aggregate from the stored events.
type ScoreRecomputeStrategy struct {
	recomputer ScoreRecomputer
}

// NewScoreRecomputeStrategy creates a new instance of ScoreRecomputeStrategy.
func NewScoreRecomputeStrategy(recomputer ScoreRecomputer) *ScoreRecomputeStrategy {
	return &ScoreRecomputeStrategy{recomputer: recomputer}
}

// GetType returns the cycle type this strategy handles.
func (s *ScoreRecomputeStrategy) GetType() entity.CycleType {
	return entity.CycleScoreRecompute
}

// Validate always succeeds; recompute only needs the store.
func (s *ScoreRecomputeStrategy) Validate() error {
	return nil
}

func (s *ScoreRecomputeStrategy) Execute(ctx context.Context, run *entity.CycleRun) (*dto.CycleOutcome, error) {
	result, err := s.recomputer.RecomputeAll(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CycleOutcome{
		Message:    fmt.Sprintf("Recomputed %d currency scores", len(result.Currencies)),
		Result:     result,
		Currencies: result.Currencies,
	}, nil
}
