package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// EscalationPublisher hands a high-impact message to asynchronous consumers.
type EscalationPublisher interface {
	Publish(ctx context.Context, msg *dto.HighImpactDetected) error
}

// NewRedisEscalationPublisher publishes messages to a redis stream, trimmed to about maxLen entries.
func NewRedisEscalationPublisher(redisClient *redis.Client, stream string, maxLen int64) EscalationPublisher {
	return &redisEscalationPublisher{
		redisClient: redisClient,
		stream:      stream,
		maxLen:      maxLen,
	}
}

type redisEscalationPublisher struct {
	redisClient *redis.Client
	stream      string
	maxLen      int64
}

func (p *redisEscalationPublisher) Publish(ctx context.Context, msg *dto.HighImpactDetected) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal escalation: %w", err)
	}
	return p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
}

// NewNopEscalationPublisher is used when redis is disabled.
func NewNopEscalationPublisher() EscalationPublisher {
	return nopEscalationPublisher{}
}

type nopEscalationPublisher struct{}

func (nopEscalationPublisher) Publish(context.Context, *dto.HighImpactDetected) error {
	return nil
}

// EscalationService reacts to a HighImpactDetected message.
type EscalationService interface {
	Escalate(ctx context.Context, msg *dto.HighImpactDetected) (*dto.RecomputeResult, error)
}

// NewEscalationService creates a new EscalationService.
func NewEscalationService(
	aggregator AggregatorService,
	publisher EscalationPublisher,
	log *logger.Logger,
	m *metrics.Metrics,
) EscalationService {
	return &escalationService{
		aggregator: aggregator,
		publisher:  publisher,
		logger:     log,
		metrics:    m,
	}
}

type escalationService struct {
	aggregator AggregatorService
	publisher  EscalationPublisher
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// Escalate recomputes every currency aggregate, then publishes msg for notification.
// A publish failure is logged and does not fail the escalation.
func (s *escalationService) Escalate(ctx context.Context, msg *dto.HighImpactDetected) (*dto.RecomputeResult, error) {
	result, err := s.aggregator.RecomputeAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("recompute all scores: %w", err)
	}
	s.metrics.Escalated()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish high impact escalation",
			logger.StringField("message_id", msg.MessageID),
			logger.ErrorField(err),
		)
	}

	s.logger.InfoContext(ctx, "High impact escalation dispatched",
		logger.StringField("message_id", msg.MessageID),
		logger.IntField("releases", len(msg.Releases)),
		logger.IntField("currencies", len(result.Currencies)),
	)
	return result, nil
}
