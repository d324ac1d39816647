// Package main API Gateway 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-qa-api/internal/application/retrieval"
	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/config"
	"compliance-qa-api/internal/infrastructure/embedding"
	"compliance-qa-api/internal/infrastructure/messaging"
	"compliance-qa-api/internal/infrastructure/persistence/milvus"
	"compliance-qa-api/internal/infrastructure/persistence/postgres"
	"compliance-qa-api/internal/infrastructure/persistence/redis"
	"compliance-qa-api/internal/interfaces/http/handler"
	"compliance-qa-api/internal/interfaces/http/router"
	"compliance-qa-api/pkg/logger"
	"compliance-qa-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化存储层
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Milvus 连接失败时降级运行，检索端点返回 503
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		log.Warn("milvus unavailable, retrieval endpoints degraded", "error", err)
		milvusClient = nil
	} else {
		defer func() { _ = milvusClient.Close() }()
	}

	// 仓储
	interactionRepo := postgres.NewInteractionRepository(pgClient)
	evalResultRepo := postgres.NewEvalResultRepository(pgClient)
	clauseMetaRepo := postgres.NewClauseMetaRepository(pgClient)

	cache := redis.NewCache(redisClient)

	// 检索引擎，查询向量走 Redis 缓存
	embedder := embedding.NewCachedClient(embedding.NewClient(&cfg.Embedding), cache)
	var vectorRepo retrieval.VectorRepository
	if milvusClient != nil {
		vectorRepo = milvus.NewRetrievalVectorRepository(milvus.NewRepository(milvusClient))
	}
	// 配置非法时直接启动失败
	policy := policyFromConfig(&cfg.Selection)
	if err := policy.Validate(); err != nil {
		logger.Fatal(ctx, "invalid selection policy", err)
	}

	engine := retrieval.NewEngine(embedder, vectorRepo, clauseMetaRepo, policy)
	indexer := retrieval.NewIndexer(embedder, vectorRepo)

	// 任务生产者
	producer := messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))

	// 处理器
	deps := router.Dependencies{
		Health:      handler.NewHealthHandler(pgClient, redisClient, milvusClient),
		Retrieval:   handler.NewRetrievalHandler(engine),
		Eval:        handler.NewEvalHandler(evalResultRepo, cache),
		Interaction: handler.NewInteractionHandler(interactionRepo, evalResultRepo, producer),
		Content:     handler.NewContentHandler(producer, indexer),
		RateLimiter: redis.NewRateLimiter(redisClient),
	}

	r := router.New(cfg, deps)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// policyFromConfig 由配置构建选择策略，未配置项沿用默认值
func policyFromConfig(cfg *config.SelectionConfig) selection.Policy {
	p := selection.DefaultPolicy()
	if cfg.CandidateSetSize > 0 {
		p.CandidateSetSize = cfg.CandidateSetSize
	}
	if cfg.FinalSize > 0 {
		p.FinalSize = cfg.FinalSize
	}
	if cfg.MinNormativeText > 0 {
		p.MinNormativeText = cfg.MinNormativeText
	}
	if cfg.MaxNonNormativeText >= 0 {
		p.MaxNonNormativeText = cfg.MaxNonNormativeText
	}
	if cfg.MinUnknownNonText >= 0 {
		p.MinUnknownNonText = cfg.MinUnknownNonText
	}
	return p
}
