// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"compliance-qa-api/internal/application/retrieval"
	"compliance-qa-api/internal/application/selection"
)

// SearchRequest 检索请求
type SearchRequest struct {
	Query            string `json:"query" binding:"required,max=5000"`
	TopK             int    `json:"top_k,omitempty"`
	IncludeEmbedding bool   `json:"include_embedding,omitempty"`
	IncludeDebug     bool   `json:"include_debug,omitempty"`
}

// ToSearchInput 转换为应用层检索输入
func (r *SearchRequest) ToSearchInput() *retrieval.SearchInput {
	return &retrieval.SearchInput{
		Query:            r.Query,
		TopK:             r.TopK,
		IncludeEmbedding: r.IncludeEmbedding,
		IncludeDebug:     r.IncludeDebug,
	}
}

// ContentItemResponse 检索内容条目
type ContentItemResponse struct {
	ID          string  `json:"id"`
	ContentType string  `json:"content_type"`
	Class       string  `json:"normativity_class"`
	Clause      string  `json:"clause,omitempty"`
	ClauseType  string  `json:"clause_type,omitempty"`
	Text        string  `json:"text,omitempty"`
	Similarity  float64 `json:"similarity"`
	RerankScore float64 `json:"rerank_score"`
	Rank        int     `json:"rank"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Items          []*ContentItemResponse `json:"items"`
	QueryType      string                 `json:"query_type"`
	ExpandedQuery  string                 `json:"expanded_query,omitempty"`
	PromptContext  string                 `json:"prompt_context,omitempty"`
	QueryEmbedding []float32              `json:"query_embedding,omitempty"`
	Debug          *SearchDebugInfo       `json:"debug,omitempty"`
}

// SearchDebugInfo 检索调试信息
type SearchDebugInfo struct {
	VectorSearchTimeMs int64    `json:"vector_search_time_ms"`
	TotalCandidates    int      `json:"total_candidates"`
	SelectedCandidates int      `json:"selected_candidates"`
	QueryType          string   `json:"query_type"`
	MatchedTerms       []string `json:"matched_terms,omitempty"`
}

// FromSearchOutput 从应用层检索输出构造响应
func FromSearchOutput(out *retrieval.SearchOutput) *SearchResponse {
	resp := &SearchResponse{
		Items:          make([]*ContentItemResponse, 0, len(out.Items)),
		QueryType:      out.QueryType,
		ExpandedQuery:  out.ExpandedQuery,
		PromptContext:  out.PromptContext,
		QueryEmbedding: out.QueryEmbedding,
	}
	for i := range out.Items {
		item := out.Items[i]
		resp.Items = append(resp.Items, &ContentItemResponse{
			ID:          item.ID,
			ContentType: string(item.ContentType),
			Class:       string(item.Class),
			Clause:      item.Clause,
			ClauseType:  item.ClauseType,
			Text:        item.Text,
			Similarity:  item.Similarity,
			RerankScore: item.RerankScore,
			Rank:        item.Rank,
		})
	}
	if out.Debug != nil {
		resp.Debug = &SearchDebugInfo{
			VectorSearchTimeMs: out.Debug.VectorSearchTimeMs,
			TotalCandidates:    out.Debug.TotalCandidates,
			SelectedCandidates: out.Debug.SelectedCandidates,
			QueryType:          out.Debug.QueryType,
			MatchedTerms:       out.Debug.MatchedTerms,
		}
	}
	return resp
}

// SelectCandidateRequest 待选择的候选
type SelectCandidateRequest struct {
	ID          string  `json:"id" binding:"required"`
	ContentType string  `json:"content_type,omitempty"`
	Class       string  `json:"normativity_class,omitempty"`
	Similarity  float64 `json:"similarity"`
}

// SelectRequest 重排与配额选择请求
type SelectRequest struct {
	Candidates []SelectCandidateRequest `json:"candidates" binding:"required"`
	FinalSize  int                      `json:"final_size,omitempty"`
}

// ToCandidates 转换为应用层候选列表
func (r *SelectRequest) ToCandidates() []selection.Candidate {
	out := make([]selection.Candidate, 0, len(r.Candidates))
	for i := range r.Candidates {
		c := r.Candidates[i]
		out = append(out, selection.NewCandidate(
			c.ID,
			selection.ContentType(c.ContentType),
			selection.NormativityClass(c.Class),
			c.Similarity,
		))
	}
	return out
}

// SelectedCandidateResponse 选择结果条目
type SelectedCandidateResponse struct {
	ID          string  `json:"id"`
	ContentType string  `json:"content_type"`
	Class       string  `json:"normativity_class"`
	Similarity  float64 `json:"similarity"`
	RerankScore float64 `json:"rerank_score"`
	Rank        int     `json:"rank"`
}

// SelectResponse 重排与配额选择响应
type SelectResponse struct {
	Selected []*SelectedCandidateResponse `json:"selected"`
}

// FromSelected 从应用层选择结果构造响应
func FromSelected(selected []selection.Candidate) *SelectResponse {
	resp := &SelectResponse{
		Selected: make([]*SelectedCandidateResponse, 0, len(selected)),
	}
	for i := range selected {
		c := selected[i]
		resp.Selected = append(resp.Selected, &SelectedCandidateResponse{
			ID:          c.ID,
			ContentType: string(c.ContentType),
			Class:       string(c.Class),
			Similarity:  c.Similarity,
			RerankScore: c.RerankScore,
			Rank:        c.Rank,
		})
	}
	return resp
}
