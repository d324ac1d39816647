// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
)

// ClauseMetaRepository 规范性元数据仓储实现
type ClauseMetaRepository struct {
	client *Client
}

// NewClauseMetaRepository 创建规范性元数据仓储
func NewClauseMetaRepository(client *Client) *ClauseMetaRepository {
	return &ClauseMetaRepository{client: client}
}

var _ repository.ClauseMetaRepository = (*ClauseMetaRepository)(nil)

// Upsert 写入或更新元数据
func (r *ClauseMetaRepository) Upsert(ctx context.Context, meta *entity.ClauseMeta) error {
	ctx, span := tracer.Start(ctx, "postgres.ClauseMetaRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"clause", "content_type", "class", "is_amendment", "source", "updated_at"}),
	}).Create(meta).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert clause meta: %w", err)
	}
	return nil
}

// GetByContentID 获取单条元数据
func (r *ClauseMetaRepository) GetByContentID(ctx context.Context, contentID string) (*entity.ClauseMeta, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClauseMetaRepository.GetByContentID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var meta entity.ClauseMeta
	if err := db.First(&meta, "content_id = ?", contentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get clause meta: %w", err)
	}
	return &meta, nil
}

// GetByContentIDs 批量获取元数据
func (r *ClauseMetaRepository) GetByContentIDs(ctx context.Context, contentIDs []string) (map[string]*entity.ClauseMeta, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClauseMetaRepository.GetByContentIDs")
	defer span.End()

	result := make(map[string]*entity.ClauseMeta, len(contentIDs))
	if len(contentIDs) == 0 {
		return result, nil
	}

	db := getDB(ctx, r.client.db)
	var metas []*entity.ClauseMeta
	if err := db.Where("content_id IN ?", contentIDs).Find(&metas).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get clause meta batch: %w", err)
	}

	for _, m := range metas {
		result[m.ContentID] = m
	}
	return result, nil
}
