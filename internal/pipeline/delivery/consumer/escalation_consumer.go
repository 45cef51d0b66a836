package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/common"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/telegram"
	"golang-forex-pulse/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	readBlock       = 2 * time.Second
	readCount       = 10
	handlerTimeout  = 30 * time.Second
	retryInterval   = time.Minute
	retryMinIdle    = 2 * time.Minute
	retryClaimCount = 10
	progressTTL     = 24 * time.Hour
)

// EscalationConsumer delivers high-impact escalations from the redis stream to Telegram.
type EscalationConsumer struct {
	redisClient *redis.Client
	notifier    telegram.Notifier
	stream      string
	logger      *logger.Logger
	// delivered maps a stream message id to the number of its parts already sent.
	// It lives in process memory: after a restart a partially sent escalation is
	// resent from its first part.
	delivered   *cache.Cache
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewEscalationConsumer creates a new EscalationConsumer.
func NewEscalationConsumer(redisClient *redis.Client, notifier telegram.Notifier, log *logger.Logger) *EscalationConsumer {
	return &EscalationConsumer{
		redisClient: redisClient,
		notifier:    notifier,
		stream:      common.RedisStreamHighImpact,
		logger:      log,
		delivered:   cache.New(progressTTL, time.Hour),
		stopChan:    make(chan struct{}),
	}
}

// Start begins reading new messages and periodically reclaims ones left unacknowledged.
func (c *EscalationConsumer) Start(ctx context.Context) {
	c.logger.Info("Escalation consumer started", logger.StringField("stream", c.stream))
	c.RegisterStreamHandler(ctx, c.ProcessMessages, handlerTimeout)
	c.RegisterTickerHandler(ctx, c.ProcessRetries, retryInterval, handlerTimeout)
}

func (c *EscalationConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), timeout time.Duration) {
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Escalation consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Escalation consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *EscalationConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval, timeout time.Duration) {
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			}
		}
	})
}

// ProcessMessages reads a batch of new escalations and delivers each one.
func (c *EscalationConsumer) ProcessMessages(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{c.stream, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		// Avoid a hot loop while redis is unavailable.
		time.Sleep(readBlock)
		return
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			c.handle(ctx, message)
		}
	}
}

// ProcessRetries reclaims escalations that were read but never acknowledged.
func (c *EscalationConsumer) ProcessRetries(ctx context.Context) {
	messages, _, err := c.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		MinIdle:  retryMinIdle,
		Start:    "0-0",
		Count:    retryClaimCount,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("Failed to claim pending escalations", logger.ErrorField(err))
		}
		return
	}

	for _, message := range messages {
		c.logger.Info("Retrying escalation", logger.StringField("message_id", message.ID))
		c.handle(ctx, message)
	}
}

func (c *EscalationConsumer) handle(ctx context.Context, message redis.XMessage) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("field 'payload' not found or not a string in stream message", logger.StringField("message_id", message.ID))
		c.ack(ctx, message.ID)
		return
	}

	var escalation dto.HighImpactDetected
	if err := json.Unmarshal([]byte(payload), &escalation); err != nil {
		c.logger.Error("Failed to unmarshal escalation", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		c.ack(ctx, message.ID)
		return
	}

	parts := telegram.FormatHighImpactReleases(&escalation)
	for i := c.deliveredParts(message.ID); i < len(parts); i++ {
		if err := c.notifier.SendMessage(parts[i]); err != nil {
			// Left pending; ProcessRetries resumes from the failed part.
			c.delivered.SetDefault(message.ID, i)
			c.logger.Error("Failed to send escalation to telegram",
				logger.ErrorField(err),
				logger.StringField("message_id", message.ID),
				logger.IntField("part", i+1),
				logger.IntField("parts", len(parts)),
			)
			return
		}
	}

	c.ack(ctx, message.ID)
	c.delivered.Delete(message.ID)
	c.logger.Info("Escalation delivered",
		logger.StringField("message_id", message.ID),
		logger.StringField("run_id", escalation.RunID),
		logger.IntField("releases", len(escalation.Releases)),
	)
}

func (c *EscalationConsumer) deliveredParts(id string) int {
	if v, ok := c.delivered.Get(id); ok {
		return v.(int)
	}
	return 0
}

func (c *EscalationConsumer) ack(ctx context.Context, id string) {
	if err := c.redisClient.XAck(ctx, c.stream, common.RedisStreamGroup, id).Err(); err != nil {
		c.logger.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}

// Stop gracefully shuts down the consumer.
func (c *EscalationConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Escalation consumer stopped")
}
