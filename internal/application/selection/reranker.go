package selection

import (
	"sort"
)

// Rerank 对候选施加规范性加权并按加权后得分降序排列
//
// 输出为新切片，输入不被修改。排序为稳定排序，得分相同的候选
// 保持输入顺序，保证审计可复现。对自身输出重复调用会叠加加权，
// 调用方不应这样使用。
func Rerank(candidates []Candidate, p Policy) []Candidate {
	if len(candidates) == 0 {
		return []Candidate{}
	}

	n := len(candidates)
	if p.CandidateSetSize > 0 && n > p.CandidateSetSize {
		n = p.CandidateSetSize
	}

	reranked := make([]Candidate, n)
	copy(reranked, candidates[:n])

	for i := range reranked {
		reranked[i].RerankScore = reranked[i].Similarity + p.adjustment(reranked[i])
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})

	for i := range reranked {
		reranked[i].Rank = i + 1
	}

	return reranked
}
