// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
)

// InteractionRepository 交互仓储实现
type InteractionRepository struct {
	client *Client
}

// NewInteractionRepository 创建交互仓储
func NewInteractionRepository(client *Client) *InteractionRepository {
	return &InteractionRepository{client: client}
}

var _ repository.InteractionRepository = (*InteractionRepository)(nil)

// Create 创建交互记录
func (r *InteractionRepository) Create(ctx context.Context, interaction *entity.Interaction) error {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(interaction).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取交互
func (r *InteractionRepository) GetByID(ctx context.Context, id string) (*entity.Interaction, error) {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var interaction entity.Interaction
	if err := db.First(&interaction, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return &interaction, nil
}

// Update 更新交互
func (r *InteractionRepository) Update(ctx context.Context, interaction *entity.Interaction) error {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(interaction).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update interaction: %w", err)
	}
	return nil
}

// List 按条件分页列出交互
func (r *InteractionRepository) List(ctx context.Context, filter *repository.InteractionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Interaction], error) {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Interaction{})

	if filter != nil {
		if filter.EvalStatus != "" {
			query = query.Where("eval_status = ?", filter.EvalStatus)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}

	var interactions []*entity.Interaction
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&interactions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	return repository.NewPagedResult(interactions, total, pagination), nil
}

// UpdateEvalStatus 更新评测状态
func (r *InteractionRepository) UpdateEvalStatus(ctx context.Context, id string, status entity.EvalStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.UpdateEvalStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Interaction{}).Where("id = ?", id).Update("eval_status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update eval status: %w", err)
	}
	return nil
}

// GetPendingEval 获取待评测的交互
func (r *InteractionRepository) GetPendingEval(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.GetPendingEval")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var interactions []*entity.Interaction

	if err := db.Where("eval_status = ?", entity.EvalStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&interactions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get pending interactions: %w", err)
	}

	return interactions, nil
}

// GetRetryableEval 获取可重试的失败交互
func (r *InteractionRepository) GetRetryableEval(ctx context.Context, maxRetries int, limit int) ([]*entity.Interaction, error) {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.GetRetryableEval")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var interactions []*entity.Interaction

	if err := db.Where("eval_status = ? AND eval_retry_count < ?", entity.EvalStatusFailed, maxRetries).
		Order("created_at ASC").
		Limit(limit).
		Find(&interactions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get retryable interactions: %w", err)
	}

	return interactions, nil
}

// CountPendingEval 统计待评测数量
func (r *InteractionRepository) CountPendingEval(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.InteractionRepository.CountPendingEval")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Interaction{}).Where("eval_status = ?", entity.EvalStatusPending).Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count pending interactions: %w", err)
	}
	return count, nil
}
