// Package retrieval 提供条款内容检索与候选选择编排
package retrieval

import (
	"context"
	"strings"
	"time"

	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
	"compliance-qa-api/pkg/logger"
)

const (
	// maxVisuals 单次检索中非文本内容的召回上限，防止稀释文本候选
	maxVisuals = 3
	// definitionBoost 定义类查询命中定义条目时的相似度加成
	definitionBoost = 0.1
	// tableBoost 表格类查询命中结构化表格时的相似度加成
	tableBoost = 0.1
	// maxPromptRunesPerItem Prompt 上下文中单条内容的长度上限
	maxPromptRunesPerItem = 600
)

// Engine 检索引擎
// 负责查询扩展、向量召回、规范性元数据附加与配额选择的编排
type Engine struct {
	embedder   Embedder
	vector     VectorRepository
	clauseMeta repository.ClauseMetaRepository
	expander   *QueryExpander
	policy     selection.Policy
}

// NewEngine 构造检索引擎
func NewEngine(embedder Embedder, vector VectorRepository, clauseMeta repository.ClauseMetaRepository, policy selection.Policy) *Engine {
	return &Engine{
		embedder:   embedder,
		vector:     vector,
		clauseMeta: clauseMeta,
		expander:   NewQueryExpander(nil),
		policy:     policy,
	}
}

// Enabled 检索能力是否可用
func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Policy 返回引擎使用的选择策略
func (e *Engine) Policy() selection.Policy {
	return e.policy
}

// Search 执行检索并返回配额选择后的最终内容集
func (e *Engine) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, ErrEmptyQuery
	}
	if !e.Enabled() {
		return &SearchOutput{QueryType: string(QueryTypeGeneral), DisabledReason: ErrVectorDisabled.Error()}, nil
	}
	if err := e.vector.EnsureContentCollection(ctx); err != nil {
		return &SearchOutput{QueryType: string(QueryTypeGeneral), DisabledReason: err.Error()}, nil
	}

	queryInfo := DetectQueryType(in.Query)
	expanded, matchedTerms := e.expander.Expand(in.Query)

	// 定义类查询用简化形式补强，长自然语言查询对定义检索效果较差
	if queryInfo.Type == QueryTypeDefinition && queryInfo.Term != "" {
		expanded = queryInfo.Term + " definition " + expanded
	}

	out := &SearchOutput{
		QueryType:     string(queryInfo.Type),
		ExpandedQuery: expanded,
	}
	var dbg *DebugInfo
	if in.IncludeDebug {
		dbg = &DebugInfo{QueryType: string(queryInfo.Type), MatchedTerms: matchedTerms}
	}

	emb, err := e.embedder.EmbedQuery(ctx, expanded)
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}
	if in.IncludeEmbedding {
		out.QueryEmbedding = emb
	}

	start := time.Now()
	raw, err := e.searchCandidates(ctx, emb, queryInfo)
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}
	if dbg != nil {
		dbg.VectorSearchTimeMs = time.Since(start).Milliseconds()
		dbg.TotalCandidates = len(raw)
	}

	metaByID := e.lookupClauseMeta(ctx, raw)
	candidates, items := e.buildCandidates(raw, metaByID, queryInfo)

	policy := e.policy
	if in.TopK > 0 && in.TopK < policy.FinalSize {
		policy.FinalSize = in.TopK
	}

	final := selection.SelectQuota(selection.Rerank(candidates, policy), policy)
	if dbg != nil {
		dbg.SelectedCandidates = len(final)
		out.Debug = dbg
	}

	out.Items = make([]ContentItem, 0, len(final))
	for _, c := range final {
		item := items[c.ID]
		item.Class = c.EffectiveClass()
		item.Similarity = c.Similarity
		item.RerankScore = c.RerankScore
		item.Rank = c.Rank
		out.Items = append(out.Items, item)
	}
	out.PromptContext = BuildPromptContext(out.Items, policy.FinalSize, maxPromptRunesPerItem)
	return out, nil
}

// searchCandidates 召回文本候选并补充有限数量的非文本候选
// 修订类查询在文本召回上附加 is_amendment 标量过滤
func (e *Engine) searchCandidates(ctx context.Context, queryVector []float32, queryInfo QueryInfo) ([]*VectorSearchResult, error) {
	textResults, err := e.vector.SearchContent(ctx, &VectorSearchParams{
		QueryVector:    queryVector,
		TopK:           e.policy.CandidateSetSize,
		ContentTypes:   []string{string(selection.ContentTextChunk)},
		AmendmentsOnly: queryInfo.FilterAmendments,
	})
	if err != nil {
		return nil, err
	}

	visualResults, err := e.vector.SearchContent(ctx, &VectorSearchParams{
		QueryVector: queryVector,
		TopK:        maxVisuals,
		ContentTypes: []string{
			string(selection.ContentStructuredTable),
			string(selection.ContentVisual),
		},
	})
	if err != nil {
		// 非文本召回失败只降级，不影响文本结果
		logger.Warn(ctx, "visual content search failed", "error", err.Error())
		visualResults = nil
	}

	return append(textResults, visualResults...), nil
}

// lookupClauseMeta 批量查询候选的规范性元数据
func (e *Engine) lookupClauseMeta(ctx context.Context, results []*VectorSearchResult) map[string]*entity.ClauseMeta {
	if e.clauseMeta == nil || len(results) == 0 {
		return nil
	}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	metaByID, err := e.clauseMeta.GetByContentIDs(ctx, ids)
	if err != nil {
		// 元数据缺失按 Unknown 处理，检索自身不失败
		logger.Warn(ctx, "clause metadata lookup failed", "error", err.Error())
		return nil
	}
	return metaByID
}

// buildCandidates 将召回结果转换为选择候选并附加内容视图
func (e *Engine) buildCandidates(raw []*VectorSearchResult, metaByID map[string]*entity.ClauseMeta, queryInfo QueryInfo) ([]selection.Candidate, map[string]ContentItem) {
	candidates := make([]selection.Candidate, 0, len(raw))
	items := make(map[string]ContentItem, len(raw))

	for _, r := range raw {
		if r == nil || strings.TrimSpace(r.ID) == "" {
			continue
		}

		class := selection.ClassUnknown
		if meta, ok := metaByID[r.ID]; ok && meta != nil && meta.Class != "" {
			class = selection.NormativityClass(meta.Class)
		}

		// COSINE 度量下 Milvus 返回的 score 即相似度
		similarity := float64(r.Score)
		if queryInfo.BoostDefinitions && r.ClauseType == "definition" {
			similarity += definitionBoost
		}
		if queryInfo.BoostTables && r.ContentType == string(selection.ContentStructuredTable) {
			similarity += tableBoost
		}

		c := selection.NewCandidate(r.ID, selection.ContentType(r.ContentType), class, similarity)
		candidates = append(candidates, c)
		items[c.ID] = ContentItem{
			ID:          c.ID,
			ContentType: c.ContentType,
			Clause:      strings.TrimSpace(r.Clause),
			ClauseType:  strings.TrimSpace(r.ClauseType),
			Text:        strings.TrimSpace(r.TextContent),
			IsAmendment: r.IsAmendment,
		}
	}
	return candidates, items
}
