// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"compliance-qa-api/internal/domain/entity"
)

// InteractionFilter 交互过滤条件
type InteractionFilter struct {
	EvalStatus entity.EvalStatus
}

// InteractionRepository 交互仓储接口
type InteractionRepository interface {
	// Create 创建交互记录
	Create(ctx context.Context, interaction *entity.Interaction) error

	// GetByID 根据 ID 获取交互
	GetByID(ctx context.Context, id string) (*entity.Interaction, error)

	// Update 更新交互
	Update(ctx context.Context, interaction *entity.Interaction) error

	// List 按条件分页列出交互
	List(ctx context.Context, filter *InteractionFilter, pagination Pagination) (*PagedResult[*entity.Interaction], error)

	// UpdateEvalStatus 更新评测状态
	UpdateEvalStatus(ctx context.Context, id string, status entity.EvalStatus) error

	// GetPendingEval 获取待评测的交互
	GetPendingEval(ctx context.Context, limit int) ([]*entity.Interaction, error)

	// GetRetryableEval 获取可重试的失败交互
	GetRetryableEval(ctx context.Context, maxRetries int, limit int) ([]*entity.Interaction, error)

	// CountPendingEval 统计待评测数量
	CountPendingEval(ctx context.Context) (int64, error)
}
