package retrieval

import "context"

// VectorRepository 定义应用层对"向量存储/检索"的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureContentCollection(ctx context.Context) error
	SearchContent(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
	InsertContent(ctx context.Context, items []*VectorContentItem) error
	// DeleteContentByIDs 删除指定内容 ID 及其切分产生的 id#N 子条目
	DeleteContentByIDs(ctx context.Context, contentIDs []string) error
}

// Embedder 定义应用层对向量化能力的最小依赖（port）。
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// VectorSearchParams 向量检索参数
type VectorSearchParams struct {
	QueryVector []float32
	TopK        int
	// ContentTypes 为空表示不过滤；非空则仅检索指定 content_type
	ContentTypes []string
	// AmendmentsOnly 仅召回标记为修订的条目
	AmendmentsOnly bool
}

// VectorSearchResult 向量检索结果
type VectorSearchResult struct {
	ID          string
	Score       float32
	ContentType string
	Clause      string
	ClauseType  string
	TextContent string
	IsAmendment bool
}

// VectorContentItem 待入库的内容条目
type VectorContentItem struct {
	ID          string
	ContentType string
	Clause      string
	ClauseType  string
	TextContent string
	IsAmendment bool
	Vector      []float32
}
