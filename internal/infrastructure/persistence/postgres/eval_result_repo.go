// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
)

// EvalResultRepository 评测结果仓储实现
type EvalResultRepository struct {
	client *Client
}

// NewEvalResultRepository 创建评测结果仓储
func NewEvalResultRepository(client *Client) *EvalResultRepository {
	return &EvalResultRepository{client: client}
}

var _ repository.EvalResultRepository = (*EvalResultRepository)(nil)

// Create 创建评测结果
func (r *EvalResultRepository) Create(ctx context.Context, result *entity.EvalResult) error {
	ctx, span := tracer.Start(ctx, "postgres.EvalResultRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(result).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create eval result: %w", err)
	}
	return nil
}

// GetByInteractionID 获取指定交互的评测结果
func (r *EvalResultRepository) GetByInteractionID(ctx context.Context, interactionID string) (*entity.EvalResult, error) {
	ctx, span := tracer.Start(ctx, "postgres.EvalResultRepository.GetByInteractionID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var result entity.EvalResult
	if err := db.Order("created_at DESC").First(&result, "interaction_id = ?", interactionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get eval result: %w", err)
	}
	return &result, nil
}

// List 分页列出评测结果
func (r *EvalResultRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.EvalResult], error) {
	ctx, span := tracer.Start(ctx, "postgres.EvalResultRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.EvalResult{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count eval results: %w", err)
	}

	var results []*entity.EvalResult
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&results).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list eval results: %w", err)
	}

	return repository.NewPagedResult(results, total, pagination), nil
}

// GetSummary 获取聚合统计
func (r *EvalResultRepository) GetSummary(ctx context.Context) (*repository.EvalSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.EvalResultRepository.GetSummary")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summary repository.EvalSummary

	row := db.Model(&entity.EvalResult{}).Select(
		"COUNT(*) AS total_evaluated, " +
			"COALESCE(AVG(citation_accuracy), 0) AS avg_citation_accuracy, " +
			"COALESCE(AVG(CASE WHEN correct_clause_ref THEN 1.0 ELSE 0.0 END), 0) AS correct_clause_ref_rate, " +
			"COALESCE(AVG(normative_coverage), 0) AS avg_normative_coverage, " +
			"COALESCE(AVG(non_normative_reliance), 0) AS avg_non_normative_reliance, " +
			"COALESCE(AVG(conditional_risk), 0) AS avg_conditional_risk, " +
			"COALESCE(AVG(multimodal_starvation), 0) AS avg_multimodal_starvation",
	).Row()

	if err := row.Scan(
		&summary.TotalEvaluated,
		&summary.AvgCitationAccuracy,
		&summary.CorrectClauseRefRate,
		&summary.AvgNormativeCoverage,
		&summary.AvgNonNormativeReliance,
		&summary.AvgConditionalRisk,
		&summary.AvgMultimodalStarvation,
	); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get eval summary: %w", err)
	}

	return &summary, nil
}
