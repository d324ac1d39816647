package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerank(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("boosts normative text above non-normative at equal similarity", func(t *testing.T) {
		candidates := []Candidate{
			NewCandidate("c-a", ContentTextChunk, ClassA, 0.5),
			NewCandidate("c-c", ContentTextChunk, ClassC, 0.5),
		}

		out := Rerank(candidates, policy)

		require.Len(t, out, 2)
		assert.Equal(t, "c-a", out[0].ID)
		assert.InDelta(t, 0.65, out[0].RerankScore, 1e-9)
		assert.Equal(t, "c-c", out[1].ID)
		assert.InDelta(t, 0.40, out[1].RerankScore, 1e-9)
		assert.Equal(t, 1, out[0].Rank)
		assert.Equal(t, 2, out[1].Rank)
	})

	t.Run("non-text content is never adjusted", func(t *testing.T) {
		candidates := []Candidate{
			// 非文本内容即使带着分类标签也不加权
			{ID: "tbl", ContentType: ContentStructuredTable, Class: ClassA, Similarity: 0.7},
			{ID: "vis", ContentType: ContentVisual, Class: ClassC, Similarity: 0.6},
		}

		out := Rerank(candidates, policy)

		assert.InDelta(t, 0.7, out[0].RerankScore, 1e-9)
		assert.InDelta(t, 0.6, out[1].RerankScore, 1e-9)
	})

	t.Run("unknown text class gets no adjustment", func(t *testing.T) {
		out := Rerank([]Candidate{NewCandidate("u", ContentTextChunk, ClassUnknown, 0.42)}, policy)
		assert.InDelta(t, 0.42, out[0].RerankScore, 1e-9)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		candidates := []Candidate{
			NewCandidate("first", ContentTextChunk, ClassA, 0.5),
			NewCandidate("second", ContentTextChunk, ClassA, 0.5),
		}

		out := Rerank(candidates, policy)

		assert.Equal(t, "first", out[0].ID)
		assert.Equal(t, "second", out[1].ID)
	})

	t.Run("caps input at candidate_set_size", func(t *testing.T) {
		p := policy
		p.CandidateSetSize = 3
		candidates := make([]Candidate, 5)
		for i := range candidates {
			candidates[i] = NewCandidate("c", ContentTextChunk, ClassA, 0.5)
		}

		assert.Len(t, Rerank(candidates, p), 3)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		candidates := []Candidate{NewCandidate("c", ContentTextChunk, ClassA, 0.5)}
		Rerank(candidates, policy)
		assert.Zero(t, candidates[0].RerankScore)
		assert.Zero(t, candidates[0].Rank)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, Rerank(nil, policy))
	})
}
