package wire

import (
	"context"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/domain/repository"
	"docgen-ai-api/internal/infrastructure/llm"
	"docgen-ai-api/internal/infrastructure/messaging"
	"docgen-ai-api/internal/infrastructure/persistence/memory"
	"docgen-ai-api/internal/infrastructure/persistence/postgres"
	"docgen-ai-api/internal/infrastructure/persistence/redis"
	"docgen-ai-api/internal/infrastructure/storage"
	"docgen-ai-api/internal/interfaces/http/handler"
	"docgen-ai-api/internal/interfaces/http/middleware"
	"docgen-ai-api/internal/interfaces/http/router"
	"docgen-ai-api/internal/workflow/chain"
	workflowprompt "docgen-ai-api/internal/workflow/prompt"
	"docgen-ai-api/pkg/logger"
)

// Repositories 按 database.driver 选出的持久化实现
type Repositories struct {
	Tx        repository.Transactor
	Projects  repository.ProjectRepository
	Documents repository.DocumentRepository
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient *postgres.Client
}

// Worker job-worker 进程的依赖
type Worker struct {
	RedisClient *redis.Client
	Jobs        *docgen.JobService
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，memory 驱动下返回 nil
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRequiredPostgresClient bootstrap 不接受 memory 驱动
func ProvideRequiredPostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

// ProvideRepositories pg 为 nil 时使用进程内存储
func ProvideRepositories(ctx context.Context, pg *postgres.Client) Repositories {
	if pg == nil {
		logger.Warn(ctx, "using in-memory storage, data will not survive restarts")
		store := memory.NewStore()
		return Repositories{Tx: store, Projects: store.Projects(), Documents: store.Documents()}
	}
	return Repositories{
		Tx:        postgres.NewTxManager(pg),
		Projects:  postgres.NewProjectRepository(pg),
		Documents: postgres.NewDocumentRepository(pg),
	}
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideJobStore 提供任务状态存储
func ProvideJobStore(client *redis.Client, cfg *config.Config) *redis.JobStore {
	return redis.NewJobStore(client, cfg.Generation.JobTTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideObjectStore 未启用 R2 时返回 nil，发布接口随之返回 503
func ProvideObjectStore(ctx context.Context, cfg *config.Config) (docgen.ObjectStore, error) {
	if !cfg.Storage.R2.Enabled {
		return nil, nil
	}
	client, err := storage.NewR2Client(ctx, &cfg.Storage.R2)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProvideDocumentChain 提供单篇文档的模型调用链
func ProvideDocumentChain(factory *llm.EinoFactory, registry *workflowprompt.Registry, cfg *config.Config) *chain.DocumentChain {
	return chain.NewDocumentChain(factory, registry, cfg.Generation.AttemptTimeout)
}

// ProvideDocumentStorage 提供文档持久化网关
func ProvideDocumentStorage(repos Repositories, cache *redis.Cache, cfg *config.Config) *docgen.Storage {
	return docgen.NewStorage(repos.Tx, repos.Projects, repos.Documents, cache, cfg.Cache.ProjectTTL)
}

// ProvideGenerator 提供文档生成器
func ProvideGenerator(dc *chain.DocumentChain, st *docgen.Storage, factory *llm.EinoFactory, cfg *config.Config) (*docgen.Generator, error) {
	return docgen.NewGenerator(dc, st, docgen.OptionsFromConfig(cfg, factory))
}

// ProvideJobService 提供异步任务服务
func ProvideJobService(store *redis.JobStore, producer *messaging.Producer, generator *docgen.Generator) *docgen.JobService {
	return docgen.NewJobService(store, producer, generator)
}

// ProvideHealthHandler 就绪检查覆盖已启用的依赖
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rdb *redis.Client, objects docgen.ObjectStore) *handler.HealthHandler {
	deps := []handler.Dependency{{Name: "redis", Checker: rdb, Required: true}}
	if pg != nil {
		deps = append(deps, handler.Dependency{Name: "postgres", Checker: pg, Required: true})
	}
	if checker, ok := objects.(handler.HealthChecker); ok {
		deps = append(deps, handler.Dependency{Name: "r2", Checker: checker})
	}
	return handler.NewHealthHandler(cfg.App.Version, deps...)
}

// ProvideRouter 组装路由
func ProvideRouter(cfg *config.Config, handlers router.Handlers, limiter *redis.RateLimiter) *router.Router {
	var rl middleware.RateLimiter
	if limiter != nil {
		rl = limiter
	}
	return router.New(cfg, handlers, rl)
}
