// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"compliance-qa-api/internal/application/grading"
	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
)

// GradeCitationsRequest 引用评分请求
// Answer 给定时先从答案中提取条款引用，否则直接使用 CitedClauses
type GradeCitationsRequest struct {
	Answer         string   `json:"answer,omitempty"`
	CitedClauses   []string `json:"cited_clauses,omitempty"`
	ExpectedClause string   `json:"expected_clause"`
}

// GradeCitationsResponse 引用评分响应
type GradeCitationsResponse struct {
	CitedClauses []string `json:"cited_clauses"`
	Accuracy     float64  `json:"accuracy"`
	Correct      bool     `json:"correct"`
	Diagnostics  string   `json:"diagnostics,omitempty"`
}

// CoverageCandidateRequest 覆盖度评测的检索候选
type CoverageCandidateRequest struct {
	ID          string  `json:"id" binding:"required"`
	ContentType string  `json:"content_type,omitempty"`
	Class       string  `json:"normativity_class,omitempty"`
	Similarity  float64 `json:"similarity"`
	Text        string  `json:"text,omitempty"`
}

// ComputeCoverageRequest 覆盖度评测请求
type ComputeCoverageRequest struct {
	Answer          string                     `json:"answer" binding:"required"`
	Retrieved       []CoverageCandidateRequest `json:"retrieved" binding:"required"`
	CitedIDs        []string                   `json:"cited_ids,omitempty"`
	RequiresTable   bool                       `json:"requires_table,omitempty"`
	RequiresDiagram bool                       `json:"requires_diagram,omitempty"`
}

// ToCandidates 转换为应用层候选列表
func (r *ComputeCoverageRequest) ToCandidates() []selection.Candidate {
	out := make([]selection.Candidate, 0, len(r.Retrieved))
	for i := range r.Retrieved {
		c := r.Retrieved[i]
		out = append(out, selection.NewCandidate(
			c.ID,
			selection.ContentType(c.ContentType),
			selection.NormativityClass(c.Class),
			c.Similarity,
		))
	}
	return out
}

// ToRetrievedContents 转换为带文本的检索内容列表
func (r *ComputeCoverageRequest) ToRetrievedContents() []grading.RetrievedContent {
	candidates := r.ToCandidates()
	out := make([]grading.RetrievedContent, 0, len(candidates))
	for i := range candidates {
		out = append(out, grading.RetrievedContent{
			Candidate: candidates[i],
			Text:      r.Retrieved[i].Text,
		})
	}
	return out
}

// CoverageResponse 覆盖度评测响应
type CoverageResponse struct {
	NormativeCoverage    float64 `json:"normative_coverage"`
	NonNormativeReliance float64 `json:"non_normative_reliance"`
	ConditionalRisk      float64 `json:"conditional_risk"`
	MultimodalStarvation float64 `json:"multimodal_starvation"`

	CitedIDs []string `json:"cited_ids"`

	NormativeCoverageDetails    string `json:"normative_coverage_details,omitempty"`
	NonNormativeRelianceDetails string `json:"non_normative_reliance_details,omitempty"`
	ConditionalRiskDetails      string `json:"conditional_risk_details,omitempty"`
	MultimodalStarvationDetails string `json:"multimodal_starvation_details,omitempty"`
}

// FromCoverageReport 从应用层覆盖度报告构造响应
func FromCoverageReport(report grading.CoverageReport, citedIDs []string) *CoverageResponse {
	return &CoverageResponse{
		NormativeCoverage:           report.NormativeCoverage,
		NonNormativeReliance:        report.NonNormativeReliance,
		ConditionalRisk:             report.ConditionalRisk,
		MultimodalStarvation:        report.MultimodalStarvation,
		CitedIDs:                    citedIDs,
		NormativeCoverageDetails:    report.NormativeCoverageDetails,
		NonNormativeRelianceDetails: report.NonNormativeRelianceDetails,
		ConditionalRiskDetails:      report.ConditionalRiskDetails,
		MultimodalStarvationDetails: report.MultimodalStarvationDetails,
	}
}

// EvalResultResponse 评测结果响应
type EvalResultResponse struct {
	ID            string `json:"id"`
	InteractionID string `json:"interaction_id"`

	CitationAccuracy float64 `json:"citation_accuracy"`
	CorrectClauseRef bool    `json:"correct_clause_ref"`
	CitationDetails  string  `json:"citation_details,omitempty"`

	NormativeCoverage    float64 `json:"normative_coverage"`
	NonNormativeReliance float64 `json:"non_normative_reliance"`
	ConditionalRisk      float64 `json:"conditional_risk"`
	MultimodalStarvation float64 `json:"multimodal_starvation"`

	JudgeFaithfulness *float64 `json:"judge_faithfulness,omitempty"`
	JudgeRelevance    *float64 `json:"judge_relevance,omitempty"`
	JudgeReasoning    string   `json:"judge_reasoning,omitempty"`
	JudgeModel        string   `json:"judge_model,omitempty"`

	CreatedAt string `json:"created_at"`
}

// FromEvalResult 从实体构造评测结果响应
func FromEvalResult(result *entity.EvalResult) *EvalResultResponse {
	if result == nil {
		return nil
	}
	return &EvalResultResponse{
		ID:                   result.ID,
		InteractionID:        result.InteractionID,
		CitationAccuracy:     result.CitationAccuracy,
		CorrectClauseRef:     result.CorrectClauseRef,
		CitationDetails:      result.CitationDetails,
		NormativeCoverage:    result.NormativeCoverage,
		NonNormativeReliance: result.NonNormativeReliance,
		ConditionalRisk:      result.ConditionalRisk,
		MultimodalStarvation: result.MultimodalStarvation,
		JudgeFaithfulness:    result.JudgeFaithfulness,
		JudgeRelevance:       result.JudgeRelevance,
		JudgeReasoning:       result.JudgeReasoning,
		JudgeModel:           result.JudgeModel,
		CreatedAt:            result.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// EvalSummaryResponse 聚合评测统计响应
type EvalSummaryResponse struct {
	TotalEvaluated          int64   `json:"total_evaluated"`
	AvgCitationAccuracy     float64 `json:"avg_citation_accuracy"`
	CorrectClauseRefRate    float64 `json:"correct_clause_ref_rate"`
	AvgNormativeCoverage    float64 `json:"avg_normative_coverage"`
	AvgNonNormativeReliance float64 `json:"avg_non_normative_reliance"`
	AvgConditionalRisk      float64 `json:"avg_conditional_risk"`
	AvgMultimodalStarvation float64 `json:"avg_multimodal_starvation"`
}

// FromEvalSummary 从仓储统计构造响应
func FromEvalSummary(summary *repository.EvalSummary) *EvalSummaryResponse {
	if summary == nil {
		return nil
	}
	return &EvalSummaryResponse{
		TotalEvaluated:          summary.TotalEvaluated,
		AvgCitationAccuracy:     summary.AvgCitationAccuracy,
		CorrectClauseRefRate:    summary.CorrectClauseRefRate,
		AvgNormativeCoverage:    summary.AvgNormativeCoverage,
		AvgNonNormativeReliance: summary.AvgNonNormativeReliance,
		AvgConditionalRisk:      summary.AvgConditionalRisk,
		AvgMultimodalStarvation: summary.AvgMultimodalStarvation,
	}
}
