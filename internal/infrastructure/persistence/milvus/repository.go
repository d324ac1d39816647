// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"compliance-qa-api/pkg/metrics"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// SearchParams 检索参数
type SearchParams struct {
	QueryVector  []float32
	TopK         int
	ContentTypes []string
	// AmendmentsOnly 仅召回修订条目
	AmendmentsOnly bool
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	ContentType string
	Clause      string
	ClauseType  string
	TextContent string
	IsAmendment bool
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// searchFilterExpr 构建检索过滤表达式
// 类型过滤避免依赖 IN 语法差异，用 OR 条件构建；修订过滤与类型过滤取交集
func searchFilterExpr(params *SearchParams) string {
	var clauses []string

	if len(params.ContentTypes) > 0 {
		var parts []string
		for _, ct := range params.ContentTypes {
			ct = strings.TrimSpace(ct)
			if ct == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf(`content_type == "%s"`, ct))
		}
		if len(parts) > 0 {
			clauses = append(clauses, "("+strings.Join(parts, " || ")+")")
		}
	}
	if params.AmendmentsOnly {
		clauses = append(clauses, "is_amendment == true")
	}

	return strings.Join(clauses, " && ")
}

// SearchContent 检索标准内容
func (r *Repository) SearchContent(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchContent",
		trace.WithAttributes(
			attribute.Int("top_k", params.TopK),
			attribute.StringSlice("content_types", params.ContentTypes),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionStandardContent)

	filter := searchFilterExpr(params)

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	start := time.Now()
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "content_type", "clause", "clause_type", "text_content", "is_amendment"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionStandardContent).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionStandardContent, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionStandardContent, "success").Inc()

	// 解析结果
	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if typeCol, ok := result.Fields.GetColumn("content_type").(*entity.ColumnVarChar); ok {
				sr.ContentType = typeCol.Data()[i]
			}
			if clauseCol, ok := result.Fields.GetColumn("clause").(*entity.ColumnVarChar); ok {
				sr.Clause = clauseCol.Data()[i]
			}
			if clauseTypeCol, ok := result.Fields.GetColumn("clause_type").(*entity.ColumnVarChar); ok {
				sr.ClauseType = clauseTypeCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}
			if amendCol, ok := result.Fields.GetColumn("is_amendment").(*entity.ColumnBool); ok {
				sr.IsAmendment = amendCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertContent 插入标准内容
func (r *Repository) InsertContent(ctx context.Context, items []*StandardContent) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertContent",
		trace.WithAttributes(attribute.Int("count", len(items))))
	defer span.End()

	if len(items) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionStandardContent)

	ids := make([]string, len(items))
	vectors := make([][]float32, len(items))
	contentTypes := make([]string, len(items))
	clauses := make([]string, len(items))
	clauseTypes := make([]string, len(items))
	textContents := make([]string, len(items))
	amendments := make([]bool, len(items))

	for i, item := range items {
		ids[i] = item.ID
		vectors[i] = item.Vector
		contentTypes[i] = item.ContentType
		clauses[i] = item.Clause
		clauseTypes[i] = item.ClauseType
		textContents[i] = item.TextContent
		amendments[i] = item.IsAmendment
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, vectors)
	typeCol := entity.NewColumnVarChar("content_type", contentTypes)
	clauseCol := entity.NewColumnVarChar("clause", clauses)
	clauseTypeCol := entity.NewColumnVarChar("clause_type", clauseTypes)
	textCol := entity.NewColumnVarChar("text_content", textContents)
	amendCol := entity.NewColumnBool("is_amendment", amendments)

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, typeCol, clauseCol, clauseTypeCol, textCol, amendCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert content: %w", err)
	}

	return nil
}

// DeleteContentByIDs 按内容 ID 删除，同时删除其切分产生的 id#N 子条目。
// 长文本入库时单条内容会展开为多个带序号后缀的主键，覆盖写入与
// 对外删除都以原始 ID 为入口，这里负责把整棵前缀都清掉。
func (r *Repository) DeleteContentByIDs(ctx context.Context, contentIDs []string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	if len(contentIDs) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.DeleteContentByIDs",
		trace.WithAttributes(attribute.Int("count", len(contentIDs))))
	defer span.End()

	collName := r.client.CollectionName(CollectionStandardContent)

	filter := contentDeleteExpr(contentIDs)
	if filter == "" {
		return nil
	}

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// contentDeleteExpr 构建精确主键加 id#N 子条目前缀的删除表达式
func contentDeleteExpr(contentIDs []string) string {
	var exact []string
	var likes []string
	for _, id := range contentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		exact = append(exact, fmt.Sprintf(`"%s"`, id))
		likes = append(likes, fmt.Sprintf(`id like "%s#%%"`, id))
	}
	if len(exact) == 0 {
		return ""
	}
	parts := append([]string{"id in [" + strings.Join(exact, ", ") + "]"}, likes...)
	return strings.Join(parts, " || ")
}

// RebuildIndex 重建索引
func (r *Repository) RebuildIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.RebuildIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	// 1. 释放集合
	if err := r.client.milvus.ReleaseCollection(ctx, collName); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release collection: %w", err)
	}

	// 2. 删除旧索引
	if err := r.client.milvus.DropIndex(ctx, collName, "vector"); err != nil {
		// 忽略索引不存在的错误
	}

	// 3. 创建新索引
	if err := r.CreateIndex(ctx, collection); err != nil {
		return err
	}

	// 4. 重新加载集合
	return r.client.milvus.LoadCollection(ctx, collName, false)
}

// EnsureStandardContentCollection 确保 standard_content 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureStandardContentCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionStandardContent)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, StandardContentSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionStandardContent)
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionStandardContent)
}
