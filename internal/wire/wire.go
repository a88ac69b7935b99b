//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/infrastructure/llm"
	"docgen-ai-api/internal/infrastructure/persistence/redis"
	"docgen-ai-api/internal/interfaces/http/handler"
	"docgen-ai-api/internal/interfaces/http/router"
	workflowprompt "docgen-ai-api/internal/workflow/prompt"
)

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		ProvideRequiredPostgresClient,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		RedisSet,
		MessagingSet,
		DocGenSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化 job-worker 依赖
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		StorageSet,
		RedisSet,
		MessagingSet,
		DocGenSet,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// StorageSet 持久化提供者集合
var StorageSet = wire.NewSet(
	ProvidePostgresClient,
	ProvideRepositories,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideJobStore,
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// DocGenSet 文档生成提供者集合
var DocGenSet = wire.NewSet(
	llm.NewEinoFactory,
	workflowprompt.NewRegistry,
	ProvideDocumentChain,
	ProvideDocumentStorage,
	ProvideGenerator,
	ProvideJobService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideObjectStore,
	docgen.NewPublisher,
	ProvideHealthHandler,
	handler.NewDocumentationHandler,
	handler.NewProjectHandler,
	handler.NewJobHandler,
	wire.Bind(new(handler.DocumentGenerator), new(*docgen.Generator)),
	wire.Bind(new(handler.ProjectStore), new(*docgen.Storage)),
	wire.Bind(new(handler.ProjectPublisher), new(*docgen.Publisher)),
	wire.Bind(new(handler.JobSubmitter), new(*docgen.JobService)),
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)
