package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"compliance-qa-api/internal/config"
	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/infrastructure/persistence/milvus"
	"compliance-qa-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. PostgreSQL 表结构迁移
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	fmt.Println("Running database migrations...")
	if err := pgClient.AutoMigrate(
		&entity.Interaction{},
		&entity.EvalResult{},
		&entity.ClauseMeta{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	fmt.Println("Database migrations completed.")

	// 3. Milvus 集合与索引
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		log.Fatalf("failed to init milvus: %v", err)
	}
	defer func() { _ = milvusClient.Close() }()

	fmt.Println("Ensuring Milvus collection...")
	repo := milvus.NewRepository(milvusClient)
	if err := repo.EnsureStandardContentCollection(ctx); err != nil {
		log.Fatalf("failed to ensure milvus collection: %v", err)
	}
	fmt.Printf("Milvus collection %q ready.\n", milvusClient.CollectionName(milvus.CollectionStandardContent))

	fmt.Println("Bootstrap completed successfully.")
}
