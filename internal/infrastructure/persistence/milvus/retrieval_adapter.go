package milvus

import (
	"context"

	"compliance-qa-api/internal/application/retrieval"
)

// RetrievalVectorRepository 将 Milvus 仓储适配为应用层的向量存储 port
// 负责应用层与存储层参数/结果结构的互转
type RetrievalVectorRepository struct {
	repo *Repository
}

// NewRetrievalVectorRepository 创建向量存储 port 的 Milvus 适配器
func NewRetrievalVectorRepository(repo *Repository) *RetrievalVectorRepository {
	return &RetrievalVectorRepository{repo: repo}
}

var _ retrieval.VectorRepository = (*RetrievalVectorRepository)(nil)

func (r *RetrievalVectorRepository) EnsureContentCollection(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.EnsureStandardContentCollection(ctx)
}

func (r *RetrievalVectorRepository) SearchContent(ctx context.Context, params *retrieval.VectorSearchParams) ([]*retrieval.VectorSearchResult, error) {
	if r == nil || r.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	if params == nil {
		return nil, nil
	}

	out, err := r.repo.SearchContent(ctx, &SearchParams{
		QueryVector:    params.QueryVector,
		TopK:           params.TopK,
		ContentTypes:   params.ContentTypes,
		AmendmentsOnly: params.AmendmentsOnly,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*retrieval.VectorSearchResult, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		results = append(results, &retrieval.VectorSearchResult{
			ID:          v.ID,
			Score:       v.Score,
			ContentType: v.ContentType,
			Clause:      v.Clause,
			ClauseType:  v.ClauseType,
			TextContent: v.TextContent,
			IsAmendment: v.IsAmendment,
		})
	}
	return results, nil
}

func (r *RetrievalVectorRepository) InsertContent(ctx context.Context, items []*retrieval.VectorContentItem) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	if len(items) == 0 {
		return nil
	}

	out := make([]*StandardContent, 0, len(items))
	for i := range items {
		item := items[i]
		if item == nil {
			continue
		}
		out = append(out, &StandardContent{
			ID:          item.ID,
			Vector:      item.Vector,
			ContentType: item.ContentType,
			Clause:      item.Clause,
			ClauseType:  item.ClauseType,
			TextContent: item.TextContent,
			IsAmendment: item.IsAmendment,
		})
	}
	return r.repo.InsertContent(ctx, out)
}

func (r *RetrievalVectorRepository) DeleteContentByIDs(ctx context.Context, contentIDs []string) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.DeleteContentByIDs(ctx, contentIDs)
}
