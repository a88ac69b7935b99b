package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/metrics"
)

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, msg *Message) error

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Stream       Stream
	Group        ConsumerGroup
	ConsumerName string
	// BlockTimeout 读取阻塞时间，负数表示不阻塞
	BlockTimeout  time.Duration
	ClaimInterval time.Duration
	// ReclaimIdle 其他消费者持有的消息空闲超过该值后接管
	ReclaimIdle time.Duration
	RetryLimit  int
	Backoff     BackoffConfig
	BatchSize   int64
}

// Consumer 消息消费者
type Consumer struct {
	client *redis.Client
	cfg    ConsumerConfig

	handlers map[string]MessageHandler
	mu       sync.RWMutex
}

// NewConsumer 创建消息消费者
func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = time.Minute
	}
	if cfg.ReclaimIdle <= 0 {
		cfg.ReclaimIdle = 15 * time.Minute
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}

	return &Consumer{
		client:   client,
		cfg:      cfg,
		handlers: make(map[string]MessageHandler),
	}
}

// RegisterHandler 注册消息处理器
func (c *Consumer) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = handler
}

// EnsureGroup 确保消费者组存在
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, string(c.cfg.Stream), string(c.cfg.Group), "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Run 阻塞消费直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("consumer started",
		"stream", c.cfg.Stream,
		"group", c.cfg.Group,
		"consumer", c.cfg.ConsumerName,
	)

	lastClaim := time.Now().Add(-c.cfg.ClaimInterval)
	for {
		if ctx.Err() != nil {
			log.Info("consumer stopped")
			return nil
		}

		c.processDuePending(ctx)
		if time.Since(lastClaim) >= c.cfg.ClaimInterval {
			c.reclaimStale(ctx)
			lastClaim = time.Now()
		}

		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error("failed to read from stream", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// Poll 读取一批新消息并处理，返回处理条数
func (c *Consumer) Poll(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    string(c.cfg.Group),
		Consumer: c.cfg.ConsumerName,
		Streams:  []string{string(c.cfg.Stream), ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.BlockTimeout,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			c.processMessage(ctx, xmsg)
			n++
		}
	}
	return n, nil
}

// processMessage 处理单条消息
func (c *Consumer) processMessage(ctx context.Context, xmsg redis.XMessage) {
	ctx, span := tracer.Start(ctx, "consumer.processMessage",
		trace.WithAttributes(
			attribute.String("stream", string(c.cfg.Stream)),
			attribute.String("stream.message_id", xmsg.ID),
		))
	defer span.End()

	msg, ok := decode(xmsg)
	if !ok {
		logger.Warn(ctx, "dropping malformed message", "message_id", xmsg.ID)
		c.ack(ctx, xmsg.ID)
		c.observe("malformed")
		return
	}

	if msg.UserID != "" {
		ctx = logger.WithContext(ctx, logger.UserIDKey, msg.UserID)
	}
	if msg.ProjectID != "" {
		ctx = logger.WithContext(ctx, logger.ProjectIDKey, msg.ProjectID)
	}
	if reqID := msg.GetMetadata("request_id"); reqID != "" {
		ctx = logger.WithContext(ctx, logger.RequestIDKey, reqID)
	}
	if traceID := msg.GetMetadata("trace_id"); traceID != "" {
		ctx = logger.WithContext(ctx, logger.TraceIDKey, traceID)
	}
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
	)

	c.mu.RLock()
	handler, exists := c.handlers[msg.Type]
	c.mu.RUnlock()
	if !exists {
		logger.Warn(ctx, "no handler for message type", "type", msg.Type)
		c.ack(ctx, xmsg.ID)
		c.observe("unhandled")
		return
	}

	if err := handler(ctx, msg); err != nil {
		span.RecordError(err)
		logger.Error(ctx, "handler failed", err, "message_id", msg.ID)
		c.handleFailure(ctx, xmsg.ID, msg, err)
		return
	}

	c.ack(ctx, xmsg.ID)
	c.observe("success")
}

func decode(xmsg redis.XMessage) (*Message, bool) {
	raw, ok := xmsg.Values["data"].(string)
	if !ok {
		return nil, false
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, false
	}
	return &msg, true
}

func (c *Consumer) observe(status string) {
	metrics.RedisStreamProcessed.WithLabelValues(string(c.cfg.Stream), status).Inc()
}

// ack 确认消息
func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, string(c.cfg.Stream), string(c.cfg.Group), id).Err(); err != nil {
		logger.Error(ctx, "failed to ack message", err, "message_id", id)
	}
}

// handleFailure 超过投递上限的消息转入死信队列，否则留在 pending 等待退避后重投
func (c *Consumer) handleFailure(ctx context.Context, streamID string, msg *Message, err error) {
	retryCount := c.deliveryCount(ctx, streamID)
	if retryCount >= c.cfg.RetryLimit {
		logger.Warn(ctx, "message moved to DLQ after max retries",
			"message_id", msg.ID,
			"retry_count", retryCount,
		)
		c.moveToDLQ(ctx, msg, err)
		c.ack(ctx, streamID)
		c.observe("dead_letter")
		return
	}
	logger.Info(ctx, "message left pending for retry",
		"message_id", msg.ID,
		"retry_count", retryCount,
	)
	c.observe("retry")
}

// deliveryCount 通过 XPENDING 获取消息投递次数
func (c *Consumer) deliveryCount(ctx context.Context, streamID string) int {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: string(c.cfg.Stream),
		Group:  string(c.cfg.Group),
		Start:  streamID,
		End:    streamID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return int(pending[0].RetryCount)
}

// moveToDLQ 移入死信队列
func (c *Consumer) moveToDLQ(ctx context.Context, msg *Message, cause error) {
	data, _ := json.Marshal(map[string]any{
		"original_stream": string(c.cfg.Stream),
		"data":            msg,
		"error":           cause.Error(),
		"failed_at":       time.Now().Unix(),
	})
	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.Stream.DLQStream(),
		Values: map[string]any{"data": string(data)},
	}).Err(); err != nil {
		logger.Error(ctx, "failed to write DLQ", err, "message_id", msg.ID)
	}
}

// processDuePending 重投本消费者名下退避到期的消息
func (c *Consumer) processDuePending(ctx context.Context) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   string(c.cfg.Stream),
		Group:    string(c.cfg.Group),
		Start:    "-",
		End:      "+",
		Count:    20,
		Consumer: c.cfg.ConsumerName,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error(ctx, "failed to query pending messages", err)
		}
		return
	}

	for _, p := range pending {
		minIdle := c.cfg.Backoff.CalculateBackoff(int(p.RetryCount))
		if p.Idle < minIdle {
			continue
		}
		c.claimAndProcess(ctx, p, minIdle)
	}
}

// reclaimStale 接管其他消费者崩溃后遗留的消息
func (c *Consumer) reclaimStale(ctx context.Context) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: string(c.cfg.Stream),
		Group:  string(c.cfg.Group),
		Start:  "-",
		End:    "+",
		Count:  20,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error(ctx, "failed to query pending messages for reclaim", err)
		}
		return
	}

	for _, p := range pending {
		if p.Consumer == c.cfg.ConsumerName || p.Idle < c.cfg.ReclaimIdle {
			continue
		}
		c.claimAndProcess(ctx, p, c.cfg.ReclaimIdle)
	}
}

func (c *Consumer) claimAndProcess(ctx context.Context, p redis.XPendingExt, minIdle time.Duration) {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   string(c.cfg.Stream),
		Group:    string(c.cfg.Group),
		Consumer: c.cfg.ConsumerName,
		MinIdle:  minIdle,
		Messages: []string{p.ID},
	}).Result()
	if err != nil {
		logger.Error(ctx, "failed to claim pending message", err, "message_id", p.ID)
		return
	}

	for _, xmsg := range claimed {
		// XClaim 会使投递次数加一，已超限的消息直接进入死信队列
		if int(p.RetryCount) >= c.cfg.RetryLimit {
			if msg, ok := decode(xmsg); ok {
				c.moveToDLQ(ctx, msg, fmt.Errorf("message exceeded max retries"))
			}
			c.ack(ctx, xmsg.ID)
			c.observe("dead_letter")
			continue
		}
		c.processMessage(ctx, xmsg)
	}
}
