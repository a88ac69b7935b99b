package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting schema bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		fmt.Println("Database driver is memory, nothing to migrate.")
		return
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表与外键
	if err := dataLayer.PgClient.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
