// Package main 异步任务执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/infrastructure/messaging"
	einoobs "docgen-ai-api/internal/observability/eino"
	"docgen-ai-api/internal/wire"
	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	einoobs.Init(cfg.Observability)

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	streamCfg := cfg.Messaging.RedisStream
	concurrency := streamCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	log := logger.FromContext(ctx)
	log.Info("job-worker started", "concurrency", concurrency)

	// 每个并发槽位是一个独立消费者，同组内由 Redis 分配消息
	g, gctx := errgroup.WithContext(ctx)
	base := hostnameConsumerName()
	for i := 0; i < concurrency; i++ {
		consumer := messaging.NewConsumer(worker.RedisClient.Redis(), messaging.ConsumerConfig{
			Stream:        messaging.StreamDocGenJobs,
			Group:         consumerGroup(streamCfg.ConsumerGroupPrefix),
			ConsumerName:  fmt.Sprintf("%s-%d", base, i),
			BlockTimeout:  streamCfg.BlockTimeout,
			ClaimInterval: streamCfg.ClaimInterval,
			ReclaimIdle:   streamCfg.MinIdle,
			RetryLimit:    streamCfg.RetryLimit,
			Backoff:       messaging.DefaultBackoffConfig(),
		})
		consumer.RegisterHandler(messaging.MessageTypeGenerateDocs, worker.Jobs.HandleMessage)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "job-worker stopped with error", err)
		os.Exit(1)
	}
	log.Info("job-worker shutting down")
}

func consumerGroup(prefix string) messaging.ConsumerGroup {
	if prefix == "" {
		return messaging.ConsumerGroupDocGenWorker
	}
	return messaging.ConsumerGroup(prefix + ":" + string(messaging.ConsumerGroupDocGenWorker))
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
