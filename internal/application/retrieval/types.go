package retrieval

import (
	"compliance-qa-api/internal/application/selection"
)

// SearchInput 检索输入
type SearchInput struct {
	Query string
	// TopK 最终返回条数上限，0 表示使用策略的 FinalSize
	TopK int

	IncludeEmbedding bool
	IncludeDebug     bool
}

// ContentItem 检索返回的内容条目
type ContentItem struct {
	ID          string                     `json:"id"`
	ContentType selection.ContentType      `json:"content_type"`
	Class       selection.NormativityClass `json:"normativity_class"`
	Clause      string                     `json:"clause,omitempty"`
	ClauseType  string                     `json:"clause_type,omitempty"`
	Text        string                     `json:"text,omitempty"`
	IsAmendment bool                       `json:"is_amendment,omitempty"`
	Similarity  float64                    `json:"similarity"`
	RerankScore float64                    `json:"rerank_score"`
	Rank        int                        `json:"rank"`
}

// DebugInfo 检索调试信息
type DebugInfo struct {
	VectorSearchTimeMs int64    `json:"vector_search_time_ms"`
	TotalCandidates    int      `json:"total_candidates"`
	SelectedCandidates int      `json:"selected_candidates"`
	QueryType          string   `json:"query_type"`
	MatchedTerms       []string `json:"matched_terms,omitempty"`
}

// SearchOutput 检索输出
type SearchOutput struct {
	Items []ContentItem `json:"items"`

	QueryType     string `json:"query_type"`
	ExpandedQuery string `json:"expanded_query,omitempty"`
	// PromptContext 选中内容格式化后的可注入 Prompt 块
	PromptContext string `json:"prompt_context,omitempty"`

	DisabledReason string     `json:"disabled_reason,omitempty"`
	QueryEmbedding []float32  `json:"query_embedding,omitempty"`
	Debug          *DebugInfo `json:"debug,omitempty"`
}
