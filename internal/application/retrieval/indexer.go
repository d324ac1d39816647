package retrieval

import (
	"context"
	"fmt"
	"strings"

	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/pkg/logger"
)

const (
	// maxTextRunes 单条内容写入向量库的文本上限，超出按段切分
	maxTextRunes      = 3000
	chunkOverlapRunes = 200
)

// BatchEmbedder 批量向量化能力（port）
type BatchEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestItem 待入库的标准内容条目
type IngestItem struct {
	ID          string
	ContentType selection.ContentType
	Clause      string
	ClauseType  string
	Class       selection.NormativityClass
	Text        string
	Source      string
	IsAmendment bool
}

// Indexer 将标准内容向量化并写入向量库
// 重复入库按内容 ID 覆盖，保证幂等
type Indexer struct {
	embedder BatchEmbedder
	vector   VectorRepository
}

// NewIndexer 创建内容索引器
func NewIndexer(embedder BatchEmbedder, vector VectorRepository) *Indexer {
	return &Indexer{
		embedder: embedder,
		vector:   vector,
	}
}

// Enabled 索引能力是否可用
func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

// IngestContent 向量化并写入一批标准内容
// 先删后插实现覆盖语义；长文本按段切分为带序号后缀的子条目
func (i *Indexer) IngestContent(ctx context.Context, items []*IngestItem) (int, error) {
	if !i.Enabled() {
		return 0, ErrVectorDisabled
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := i.vector.EnsureContentCollection(ctx); err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(items))
	embedInputs := make([]string, 0, len(items))
	contents := make([]*VectorContentItem, 0, len(items))

	for _, item := range items {
		if err := validateIngestItem(item); err != nil {
			return 0, err
		}
		ids = append(ids, item.ID)

		chunks := splitByRunes(item.Text, maxTextRunes, chunkOverlapRunes)
		for idx, chunk := range chunks {
			contentID := item.ID
			if len(chunks) > 1 {
				contentID = fmt.Sprintf("%s#%d", item.ID, idx)
			}
			embedInputs = append(embedInputs, embedText(item, chunk))
			contents = append(contents, &VectorContentItem{
				ID:          contentID,
				ContentType: string(item.ContentType),
				Clause:      item.Clause,
				ClauseType:  item.ClauseType,
				TextContent: chunk,
				IsAmendment: item.IsAmendment,
			})
		}
	}

	// 按原始 ID 删除，存储层会连同 id#N 子条目一并清掉，
	// 重新入库后切块数变化也不会留下孤儿条目
	if err := i.vector.DeleteContentByIDs(ctx, ids); err != nil {
		return 0, err
	}

	vectors, err := i.embedder.Embed(ctx, embedInputs)
	if err != nil {
		return 0, fmt.Errorf("embed content batch: %w", err)
	}
	if len(vectors) != len(contents) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(contents))
	}
	for idx := range contents {
		contents[idx].Vector = vectors[idx]
	}

	if err := i.vector.InsertContent(ctx, contents); err != nil {
		return 0, err
	}

	logger.Info(ctx, "content batch ingested",
		"items", len(items),
		"vectors", len(contents),
	)
	return len(contents), nil
}

// DeleteContent 按内容 ID 删除向量条目
func (i *Indexer) DeleteContent(ctx context.Context, contentIDs []string) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	if len(contentIDs) == 0 {
		return nil
	}
	return i.vector.DeleteContentByIDs(ctx, contentIDs)
}

func validateIngestItem(item *IngestItem) error {
	if item == nil {
		return fmt.Errorf("ingest item is nil")
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("ingest item id is required")
	}
	if strings.TrimSpace(item.Text) == "" {
		return fmt.Errorf("ingest item %s: text is required", item.ID)
	}
	switch item.ContentType {
	case selection.ContentTextChunk, selection.ContentStructuredTable, selection.ContentVisual:
	default:
		return fmt.Errorf("ingest item %s: unsupported content_type %q", item.ID, item.ContentType)
	}
	return nil
}

// embedText 为向量化拼接条款号与类型前缀，提升条款定位类查询的召回
func embedText(item *IngestItem, chunk string) string {
	var b strings.Builder
	if item.Clause != "" {
		b.WriteString("Clause ")
		b.WriteString(item.Clause)
		if item.ClauseType != "" {
			b.WriteString(" (")
			b.WriteString(item.ClauseType)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(chunk))
	return b.String()
}
