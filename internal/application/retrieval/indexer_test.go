package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-qa-api/internal/application/selection"
)

type fakeEmbedder struct {
	calls [][]string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type fakeVectorRepo struct {
	deleted  []string
	inserted []*VectorContentItem
	store    map[string]*VectorContentItem
}

func (f *fakeVectorRepo) EnsureContentCollection(context.Context) error { return nil }

func (f *fakeVectorRepo) SearchContent(context.Context, *VectorSearchParams) ([]*VectorSearchResult, error) {
	return nil, nil
}

func (f *fakeVectorRepo) InsertContent(_ context.Context, items []*VectorContentItem) error {
	f.inserted = append(f.inserted, items...)
	if f.store == nil {
		f.store = make(map[string]*VectorContentItem)
	}
	for _, item := range items {
		f.store[item.ID] = item
	}
	return nil
}

// DeleteContentByIDs 与存储层契约一致：精确 ID 与 id#N 子条目一并删除
func (f *fakeVectorRepo) DeleteContentByIDs(_ context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	for _, id := range ids {
		delete(f.store, id)
		for key := range f.store {
			if strings.HasPrefix(key, id+"#") {
				delete(f.store, key)
			}
		}
	}
	return nil
}

func TestIndexerIngestContent(t *testing.T) {
	t.Run("inserts one vector per short item", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		repo := &fakeVectorRepo{}
		indexer := NewIndexer(embedder, repo)

		count, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "c-1.5.4", ContentType: selection.ContentTextChunk, Clause: "1.5.4", Text: "All switchboards shall..."},
			{ID: "t-4.1", ContentType: selection.ContentStructuredTable, Clause: "4.1", Text: "| size | rating |"},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, []string{"c-1.5.4", "t-4.1"}, repo.deleted)
		require.Len(t, repo.inserted, 2)
		assert.Equal(t, "c-1.5.4", repo.inserted[0].ID)
		assert.NotNil(t, repo.inserted[0].Vector)
	})

	t.Run("chunks long text into suffixed ids", func(t *testing.T) {
		repo := &fakeVectorRepo{}
		indexer := NewIndexer(&fakeEmbedder{}, repo)

		long := strings.Repeat("conductor sizing rules ", 400)
		count, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "c-3.4", ContentType: selection.ContentTextChunk, Clause: "3.4", Text: long},
		})

		require.NoError(t, err)
		assert.Greater(t, count, 1)
		assert.Equal(t, "c-3.4#0", repo.inserted[0].ID)
		// 覆盖语义按原始 ID 删除，子条目由存储层按前缀清理
		assert.Equal(t, []string{"c-3.4"}, repo.deleted)
	})

	t.Run("re-ingest with fewer chunks leaves no orphans", func(t *testing.T) {
		repo := &fakeVectorRepo{}
		indexer := NewIndexer(&fakeEmbedder{}, repo)

		long := strings.Repeat("conductor sizing rules ", 400)
		_, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "c-3.4", ContentType: selection.ContentTextChunk, Clause: "3.4", Text: long},
		})
		require.NoError(t, err)
		require.Greater(t, len(repo.store), 1)

		_, err = indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "c-3.4", ContentType: selection.ContentTextChunk, Clause: "3.4", Text: "short replacement"},
		})
		require.NoError(t, err)

		// 切块数从多条降为一条，不留重复或孤儿子条目
		require.Len(t, repo.store, 1)
		stored, ok := repo.store["c-3.4"]
		require.True(t, ok)
		assert.Equal(t, "short replacement", stored.TextContent)
	})

	t.Run("embeds clause prefix with the text", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		indexer := NewIndexer(embedder, &fakeVectorRepo{})

		_, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "d-1.4.60", ContentType: selection.ContentTextChunk, Clause: "1.4.60", ClauseType: "definition", Text: "means a device that..."},
		})

		require.NoError(t, err)
		require.Len(t, embedder.calls, 1)
		assert.Contains(t, embedder.calls[0][0], "Clause 1.4.60 (definition)")
	})

	t.Run("rejects unknown content type", func(t *testing.T) {
		indexer := NewIndexer(&fakeEmbedder{}, &fakeVectorRepo{})

		_, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "x", ContentType: "audio", Text: "something"},
		})
		assert.ErrorContains(t, err, "unsupported content_type")
	})

	t.Run("rejects empty text", func(t *testing.T) {
		indexer := NewIndexer(&fakeEmbedder{}, &fakeVectorRepo{})

		_, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "x", ContentType: selection.ContentTextChunk, Text: "   "},
		})
		assert.ErrorContains(t, err, "text is required")
	})

	t.Run("disabled without vector repo", func(t *testing.T) {
		indexer := NewIndexer(&fakeEmbedder{}, nil)

		_, err := indexer.IngestContent(context.Background(), []*IngestItem{
			{ID: "x", ContentType: selection.ContentTextChunk, Text: "abc"},
		})
		assert.ErrorIs(t, err, ErrVectorDisabled)
	})
}

func TestBuildPromptContext(t *testing.T) {
	items := []ContentItem{
		{ID: "a", Clause: "2.5.1", ClauseType: "requirement", Text: "Switchboards shall be\naccessible."},
		{ID: "b", Text: "Unreferenced note."},
	}

	out := BuildPromptContext(items, 10, 100)

	assert.Contains(t, out, "[1] (Clause 2.5.1 requirement) Switchboards shall be accessible.")
	assert.Contains(t, out, "[2] (Context) Unreferenced note.")
}

func TestBuildPromptContextTruncates(t *testing.T) {
	items := []ContentItem{
		{ID: "a", Clause: "1.1", Text: strings.Repeat("x", 500)},
	}

	out := BuildPromptContext(items, 10, 50)
	assert.Contains(t, out, "…")
	assert.Less(t, len(out), 200)
}
