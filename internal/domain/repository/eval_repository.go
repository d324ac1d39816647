package repository

import (
	"context"

	"compliance-qa-api/internal/domain/entity"
)

// EvalSummary 聚合评测统计
type EvalSummary struct {
	TotalEvaluated          int64   `json:"total_evaluated"`
	AvgCitationAccuracy     float64 `json:"avg_citation_accuracy"`
	CorrectClauseRefRate    float64 `json:"correct_clause_ref_rate"`
	AvgNormativeCoverage    float64 `json:"avg_normative_coverage"`
	AvgNonNormativeReliance float64 `json:"avg_non_normative_reliance"`
	AvgConditionalRisk      float64 `json:"avg_conditional_risk"`
	AvgMultimodalStarvation float64 `json:"avg_multimodal_starvation"`
}

// EvalResultRepository 评测结果仓储接口
type EvalResultRepository interface {
	// Create 创建评测结果
	Create(ctx context.Context, result *entity.EvalResult) error

	// GetByInteractionID 获取指定交互的评测结果
	GetByInteractionID(ctx context.Context, interactionID string) (*entity.EvalResult, error)

	// List 分页列出评测结果
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.EvalResult], error)

	// GetSummary 获取聚合统计
	GetSummary(ctx context.Context) (*EvalSummary, error)
}
