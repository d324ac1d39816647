package repository

import (
	"context"

	"compliance-qa-api/internal/domain/entity"
)

// ClauseMetaRepository 规范性元数据仓储接口
type ClauseMetaRepository interface {
	// Upsert 写入或更新元数据
	Upsert(ctx context.Context, meta *entity.ClauseMeta) error

	// GetByContentID 获取单条元数据
	GetByContentID(ctx context.Context, contentID string) (*entity.ClauseMeta, error)

	// GetByContentIDs 批量获取元数据，返回 content_id 到元数据的映射
	GetByContentIDs(ctx context.Context, contentIDs []string) (map[string]*entity.ClauseMeta, error)
}
