package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCandidates 构造带均匀递减相似度的候选
func makeCandidates(spec ...[2]string) []Candidate {
	out := make([]Candidate, 0, len(spec))
	for i, s := range spec {
		sim := 1.0 - float64(i)*0.01
		out = append(out, NewCandidate(
			fmt.Sprintf("%s-%d", s[0], i),
			ContentType(s[0]),
			NormativityClass(s[1]),
			sim,
		))
	}
	return out
}

func countWhere(cands []Candidate, match func(Candidate) bool) int {
	n := 0
	for _, c := range cands {
		if match(c) {
			n++
		}
	}
	return n
}

func TestSelectQuota(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("output never exceeds final_size", func(t *testing.T) {
		spec := make([][2]string, 40)
		for i := range spec {
			spec[i] = [2]string{string(ContentTextChunk), "A"}
		}
		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)
		assert.LessOrEqual(t, len(out), policy.FinalSize)
	})

	t.Run("guarantees normative text minimum when available", func(t *testing.T) {
		spec := [][2]string{
			{string(ContentStructuredTable), ""},
			{string(ContentStructuredTable), ""},
			{string(ContentVisual), ""},
		}
		for i := 0; i < 6; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), "A"})
		}
		p := policy
		p.FinalSize = 6

		out := SelectQuota(Rerank(makeCandidates(spec...), p), p)

		assert.GreaterOrEqual(t, countWhere(out, isNormativeText), p.MinNormativeText)
	})

	t.Run("guarantees non-text minimum when available", func(t *testing.T) {
		spec := make([][2]string, 0, 25)
		for i := 0; i < 22; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), "A"})
		}
		// 非文本候选相似度垫底，纯 top-K 会把它们全部挤掉
		spec = append(spec, [2]string{string(ContentStructuredTable), ""})
		spec = append(spec, [2]string{string(ContentVisual), ""})

		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)

		assert.GreaterOrEqual(t, countWhere(out, isNonText), policy.MinUnknownNonText)
	})

	t.Run("caps non-normative text even when retrieval found more", func(t *testing.T) {
		spec := make([][2]string, 0, 15)
		for i := 0; i < 10; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), "C"})
		}
		for i := 0; i < 5; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), "A"})
		}

		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)

		assert.LessOrEqual(t, countWhere(out, isNonNormativeText), policy.MaxNonNormativeText)
	})

	t.Run("unknown text counts as normative", func(t *testing.T) {
		spec := [][2]string{
			{string(ContentTextChunk), "UNKNOWN"},
			{string(ContentTextChunk), "UNKNOWN"},
		}
		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)
		require.Len(t, out, 2)
		assert.Equal(t, 2, countWhere(out, isNormativeText))
	})

	t.Run("short candidate list returns everything permitted without padding", func(t *testing.T) {
		spec := [][2]string{
			{string(ContentTextChunk), "A"},
			{string(ContentTextChunk), "C"},
			{string(ContentVisual), ""},
		}
		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)
		assert.Len(t, out, 3)
	})

	t.Run("result is a subset of the reranked input", func(t *testing.T) {
		spec := make([][2]string, 0, 30)
		classes := []string{"A", "B", "C", "UNKNOWN"}
		for i := 0; i < 26; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), classes[i%len(classes)]})
		}
		spec = append(spec, [2]string{string(ContentStructuredTable), ""})
		spec = append(spec, [2]string{string(ContentVisual), ""})

		reranked := Rerank(makeCandidates(spec...), policy)
		inputIDs := make(map[string]struct{}, len(reranked))
		for _, c := range reranked {
			inputIDs[c.ID] = struct{}{}
		}

		out := SelectQuota(reranked, policy)
		for _, c := range out {
			assert.Contains(t, inputIDs, c.ID)
		}
	})

	t.Run("final set sorted by rerank score with ranks renumbered", func(t *testing.T) {
		spec := make([][2]string, 0, 30)
		for i := 0; i < 24; i++ {
			spec = append(spec, [2]string{string(ContentTextChunk), "A"})
		}
		spec = append(spec, [2]string{string(ContentStructuredTable), ""})
		spec = append(spec, [2]string{string(ContentVisual), ""})

		out := SelectQuota(Rerank(makeCandidates(spec...), policy), policy)

		require.NotEmpty(t, out)
		for i := range out {
			assert.Equal(t, i+1, out[i].Rank)
			if i > 0 {
				assert.GreaterOrEqual(t, out[i-1].RerankScore, out[i].RerankScore)
			}
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, SelectQuota(nil, policy))
	})
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"default policy is valid", func(p *Policy) {}, false},
		{"negative final size", func(p *Policy) { p.FinalSize = -1 }, true},
		{"zero candidate set", func(p *Policy) { p.CandidateSetSize = 0 }, true},
		{"final size above candidate set", func(p *Policy) { p.FinalSize = 50 }, true},
		{"negative quota", func(p *Policy) { p.MinNormativeText = -2 }, true},
		{"minimum quotas above final size", func(p *Policy) {
			p.MinNormativeText = 15
			p.MinUnknownNonText = 10
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
