package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/domain/entity"
)

type fakeQueryEmbedder struct {
	vector []float32
}

func (f *fakeQueryEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vector, nil
}

type fakeSearchRepo struct {
	fakeVectorRepo
	textResults   []*VectorSearchResult
	visualResults []*VectorSearchResult
	textParams    *VectorSearchParams
}

func (f *fakeSearchRepo) SearchContent(_ context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error) {
	for _, ct := range params.ContentTypes {
		if ct == string(selection.ContentTextChunk) {
			f.textParams = params
			results := f.textResults
			if params.AmendmentsOnly {
				filtered := make([]*VectorSearchResult, 0, len(results))
				for _, r := range results {
					if r.IsAmendment {
						filtered = append(filtered, r)
					}
				}
				results = filtered
			}
			return results, nil
		}
	}
	return f.visualResults, nil
}

type fakeClauseMetaRepo struct {
	metas map[string]*entity.ClauseMeta
}

func (f *fakeClauseMetaRepo) Upsert(context.Context, *entity.ClauseMeta) error { return nil }

func (f *fakeClauseMetaRepo) GetByContentID(_ context.Context, id string) (*entity.ClauseMeta, error) {
	return f.metas[id], nil
}

func (f *fakeClauseMetaRepo) GetByContentIDs(_ context.Context, ids []string) (map[string]*entity.ClauseMeta, error) {
	out := make(map[string]*entity.ClauseMeta)
	for _, id := range ids {
		if m, ok := f.metas[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func TestEngineSearch(t *testing.T) {
	repo := &fakeSearchRepo{
		textResults: []*VectorSearchResult{
			{ID: "a", Score: 0.92, ContentType: string(selection.ContentTextChunk), Clause: "2.5.1", TextContent: "Switchboards shall be accessible."},
			{ID: "b", Score: 0.88, ContentType: string(selection.ContentTextChunk), Clause: "2.5.2", TextContent: "A note about switchboards."},
		},
		visualResults: []*VectorSearchResult{
			{ID: "t", Score: 0.80, ContentType: string(selection.ContentStructuredTable), Clause: "4.1", TextContent: "| size | rating |"},
		},
	}
	metas := &fakeClauseMetaRepo{metas: map[string]*entity.ClauseMeta{
		"a": {ContentID: "a", Clause: "2.5.1", Class: "A"},
		"b": {ContentID: "b", Clause: "2.5.2", Class: "C"},
	}}

	engine := NewEngine(&fakeQueryEmbedder{vector: []float32{0.1, 0.2}}, repo, metas, selection.DefaultPolicy())

	out, err := engine.Search(context.Background(), SearchInput{Query: "switchboard access", IncludeDebug: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)

	// A 类文本加权后排到 C 类之前，表格按 Unknown 中性分参与
	assert.Equal(t, "a", out.Items[0].ID)
	assert.Equal(t, selection.ClassA, out.Items[0].Class)
	assert.Equal(t, 1, out.Items[0].Rank)

	// 向量库缺失元数据的条目按 Unknown 处理
	var tableItem *ContentItem
	for i := range out.Items {
		if out.Items[i].ID == "t" {
			tableItem = &out.Items[i]
		}
	}
	require.NotNil(t, tableItem)
	assert.Equal(t, selection.ClassUnknown, tableItem.Class)

	assert.NotEmpty(t, out.PromptContext)
	assert.Contains(t, out.PromptContext, "Clause 2.5.1")
	require.NotNil(t, out.Debug)
	assert.Equal(t, 3, out.Debug.TotalCandidates)
}

func TestEngineSearchAmendmentFilter(t *testing.T) {
	repo := &fakeSearchRepo{
		textResults: []*VectorSearchResult{
			{ID: "am-1", Score: 0.85, ContentType: string(selection.ContentTextChunk), Clause: "2.6.3", TextContent: "Amended RCD requirements.", IsAmendment: true},
			{ID: "old-1", Score: 0.90, ContentType: string(selection.ContentTextChunk), Clause: "2.6.1", TextContent: "Unchanged clause."},
		},
	}
	engine := NewEngine(&fakeQueryEmbedder{vector: []float32{0.1}}, repo, &fakeClauseMetaRepo{}, selection.DefaultPolicy())

	out, err := engine.Search(context.Background(), SearchInput{Query: "What has changed for RCD protection?"})
	require.NoError(t, err)

	// 修订类查询只召回修订条目
	assert.Equal(t, string(QueryTypeAmendment), out.QueryType)
	require.NotNil(t, repo.textParams)
	assert.True(t, repo.textParams.AmendmentsOnly)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "am-1", out.Items[0].ID)
	assert.True(t, out.Items[0].IsAmendment)
}

func TestEngineSearchGeneralQueryNoAmendmentFilter(t *testing.T) {
	repo := &fakeSearchRepo{
		textResults: []*VectorSearchResult{
			{ID: "a", Score: 0.9, ContentType: string(selection.ContentTextChunk), TextContent: "text"},
		},
	}
	engine := NewEngine(&fakeQueryEmbedder{vector: []float32{0.1}}, repo, &fakeClauseMetaRepo{}, selection.DefaultPolicy())

	_, err := engine.Search(context.Background(), SearchInput{Query: "switchboard clearance"})
	require.NoError(t, err)
	require.NotNil(t, repo.textParams)
	assert.False(t, repo.textParams.AmendmentsOnly)
}

func TestEngineSearchTableBoost(t *testing.T) {
	repo := &fakeSearchRepo{
		textResults: []*VectorSearchResult{
			{ID: "txt", Score: 0.85, ContentType: string(selection.ContentTextChunk), TextContent: "Conductor sizing prose."},
		},
		visualResults: []*VectorSearchResult{
			{ID: "tab", Score: 0.80, ContentType: string(selection.ContentStructuredTable), Clause: "3.1", TextContent: "| size | rating |"},
		},
	}
	engine := NewEngine(&fakeQueryEmbedder{vector: []float32{0.1}}, repo, &fakeClauseMetaRepo{}, selection.DefaultPolicy())

	out, err := engine.Search(context.Background(), SearchInput{Query: "Show me Table 3 for conductor sizes"})
	require.NoError(t, err)

	// 表格类查询下结构化表格获得加成，越过原始得分更高的文本
	assert.Equal(t, string(QueryTypeTable), out.QueryType)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "tab", out.Items[0].ID)
	assert.Greater(t, out.Items[0].Similarity, 0.85)
}

func TestEngineSearchEmptyQuery(t *testing.T) {
	engine := NewEngine(&fakeQueryEmbedder{}, &fakeSearchRepo{}, &fakeClauseMetaRepo{}, selection.DefaultPolicy())

	_, err := engine.Search(context.Background(), SearchInput{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestEngineSearchDisabled(t *testing.T) {
	engine := NewEngine(nil, nil, nil, selection.DefaultPolicy())

	out, err := engine.Search(context.Background(), SearchInput{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.NotEmpty(t, out.DisabledReason)
}

func TestEngineSearchTopKOverride(t *testing.T) {
	results := make([]*VectorSearchResult, 0, 10)
	for i := 0; i < 10; i++ {
		results = append(results, &VectorSearchResult{
			ID:          string(rune('a' + i)),
			Score:       float32(0.9) - float32(i)*0.01,
			ContentType: string(selection.ContentTextChunk),
			TextContent: "text",
		})
	}
	repo := &fakeSearchRepo{textResults: results}
	engine := NewEngine(&fakeQueryEmbedder{vector: []float32{0.1}}, repo, &fakeClauseMetaRepo{}, selection.DefaultPolicy())

	out, err := engine.Search(context.Background(), SearchInput{Query: "clearance", TopK: 3})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
}
