// Package main 评测执行器入口（eval-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-qa-api/internal/application/evaluation"
	"compliance-qa-api/internal/application/retrieval"
	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/config"
	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
	"compliance-qa-api/internal/infrastructure/embedding"
	"compliance-qa-api/internal/infrastructure/judge"
	"compliance-qa-api/internal/infrastructure/messaging"
	"compliance-qa-api/internal/infrastructure/persistence/milvus"
	"compliance-qa-api/internal/infrastructure/persistence/postgres"
	"compliance-qa-api/internal/infrastructure/persistence/redis"
	"compliance-qa-api/pkg/logger"
	"compliance-qa-api/pkg/metrics"
	"compliance-qa-api/pkg/tracer"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "eval-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

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

	// Milvus 连接失败时降级运行，内容入库任务将进入重试
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus unavailable, content ingest degraded", "error", err.Error())
		milvusClient = nil
	} else {
		defer func() { _ = milvusClient.Close() }()
	}

	interactionRepo := postgres.NewInteractionRepository(pgClient)
	evalResultRepo := postgres.NewEvalResultRepository(pgClient)
	clauseMetaRepo := postgres.NewClauseMetaRepository(pgClient)

	var vectorRepo retrieval.VectorRepository
	if milvusClient != nil {
		vectorRepo = milvus.NewRetrievalVectorRepository(milvus.NewRepository(milvusClient))
	}
	indexer := retrieval.NewIndexer(embedding.NewClient(&cfg.Embedding), vectorRepo)

	judgeClient := judge.NewClient(&cfg.Judge)
	evalService := evaluation.NewService(interactionRepo, evalResultRepo, judgeClient, cfg.Eval.EnableJudgeScores)
	cache := redis.NewCache(redisClient)

	// 流消费者：交互创建后立即推送的评测任务
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamEvalJobs,
		Group:        messaging.ConsumerGroupEvalWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler("eval_job", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.EvalJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		msgCtx = logger.WithContext(msgCtx, logger.EvalJobIDKey, msg.ID)
		msgCtx = logger.WithContext(msgCtx, logger.InteractionIDKey, payload.InteractionID)

		interaction, err := interactionRepo.GetByID(msgCtx, payload.InteractionID)
		if err != nil {
			return err
		}
		if interaction == nil {
			logger.Warn(msgCtx, "eval job references missing interaction", "interaction_id", payload.InteractionID)
			return nil
		}
		// 兜底轮询可能已经抢先处理，重复消息直接确认
		if interaction.EvalStatus != entity.EvalStatusPending {
			return nil
		}

		if err := evalService.Process(msgCtx, interaction); err != nil {
			return err
		}
		invalidateSummary(msgCtx, cache)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(ctx, 100)

	// 内容入库消费者
	ingestConsumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamContentIngest,
		Group:        messaging.ConsumerGroupIngestWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	ingestConsumer.RegisterHandler("content_ingest", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.ContentIngestMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return ingestBatch(msgCtx, &payload, indexer, clauseMetaRepo)
	})

	if err := ingestConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start ingest consumer", err)
	}
	go ingestConsumer.MonitorDLQ(ctx, 100)

	// 兜底轮询：入队失败或重启遗留的 pending 交互
	go pollLoop(ctx, cfg, interactionRepo, evalService, cache)

	log := logger.FromContext(ctx)
	log.Info("eval-worker started",
		"batch_size", cfg.Eval.BatchSize,
		"poll_interval", cfg.Eval.PollInterval.String(),
		"max_concurrent", cfg.Eval.MaxConcurrent,
		"judge_enabled", cfg.Eval.EnableJudgeScores,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("eval-worker shutting down")
	cancel()
	consumer.Stop()
	ingestConsumer.Stop()
}

// ingestBatch 向量化写入内容批次并同步规范性元数据
func ingestBatch(ctx context.Context, batch *messaging.ContentIngestMessage, indexer *retrieval.Indexer, clauseMeta repository.ClauseMetaRepository) error {
	items := make([]*retrieval.IngestItem, 0, len(batch.Items))
	for _, item := range batch.Items {
		items = append(items, &retrieval.IngestItem{
			ID:          item.ContentID,
			ContentType: selection.ContentType(item.ContentType),
			Clause:      item.Clause,
			ClauseType:  item.ClauseType,
			Class:       selection.NormativityClass(item.Class),
			Text:        item.Text,
			Source:      batch.Source,
			IsAmendment: item.IsAmendment,
		})
	}

	inserted, err := indexer.IngestContent(ctx, items)
	if err != nil {
		return fmt.Errorf("ingest batch %s: %w", batch.BatchID, err)
	}

	for _, item := range batch.Items {
		class := item.Class
		if class == "" {
			class = string(selection.ClassUnknown)
		}
		meta := &entity.ClauseMeta{
			ContentID:   item.ContentID,
			Clause:      item.Clause,
			ContentType: item.ContentType,
			Class:       class,
			IsAmendment: item.IsAmendment,
			Source:      batch.Source,
		}
		if err := clauseMeta.Upsert(ctx, meta); err != nil {
			return fmt.Errorf("upsert clause meta %s: %w", item.ContentID, err)
		}
	}

	logger.Info(ctx, "content batch ingested",
		"batch_id", batch.BatchID,
		"items", len(batch.Items),
		"vectors", inserted,
	)
	return nil
}

// pollLoop 周期性拉取 pending 与可重试的交互并发评测
func pollLoop(ctx context.Context, cfg *config.Config, interactions repository.InteractionRepository, svc *evaluation.Service, cache *redis.Cache) {
	interval := cfg.Eval.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runBatch(ctx, cfg, interactions, svc, cache)
		}
	}
}

func runBatch(ctx context.Context, cfg *config.Config, interactions repository.InteractionRepository, svc *evaluation.Service, cache *redis.Cache) {
	if pending, err := interactions.CountPendingEval(ctx); err == nil {
		metrics.PendingEvalJobs.Set(float64(pending))
	}

	batch, err := interactions.GetPendingEval(ctx, cfg.Eval.BatchSize)
	if err != nil {
		logger.Error(ctx, "failed to fetch pending interactions", err)
		return
	}

	retryable, err := interactions.GetRetryableEval(ctx, cfg.Eval.MaxRetries, cfg.Eval.BatchSize)
	if err != nil {
		logger.Error(ctx, "failed to fetch retryable interactions", err)
	} else {
		for _, item := range retryable {
			item.RetryEval()
			if err := interactions.Update(ctx, item); err != nil {
				logger.Error(ctx, "failed to requeue retryable interaction", err, "interaction_id", item.ID)
				continue
			}
			batch = append(batch, item)
		}
	}

	if len(batch) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.Eval.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, interaction := range batch {
		g.Go(func() error {
			if err := svc.Process(gctx, interaction); err != nil {
				// 单条失败不终止整批，状态机已记录失败原因
				logger.Error(gctx, "interaction evaluation failed", err, "interaction_id", interaction.ID)
				return nil
			}
			invalidateSummary(gctx, cache)
			return nil
		})
	}
	_ = g.Wait()
}

// invalidateSummary 新评测结果落库后使聚合统计缓存失效
func invalidateSummary(ctx context.Context, cache *redis.Cache) {
	if err := cache.InvalidateEvalSummary(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate eval summary cache", "error", err.Error())
	}
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
