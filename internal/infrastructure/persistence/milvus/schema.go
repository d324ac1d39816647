// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionStandardContent 标准内容集合
	CollectionStandardContent = "standard_content"

	// VectorDimension 向量维度
	VectorDimension = 1024
)

// StandardContentSchema 标准内容 Collection Schema
func StandardContentSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionStandardContent,
		Description:    "Wiring standard content chunks for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "content_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "clause",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "clause_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				// 修订条目标记，用于 "what changed" 类查询的标量过滤
				Name:     "is_amendment",
				DataType: entity.FieldTypeBool,
			},
		},
	}
}

// StandardContent 标准内容数据结构
type StandardContent struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	ContentType string    `json:"content_type"`
	Clause      string    `json:"clause"`
	ClauseType  string    `json:"clause_type"`
	TextContent string    `json:"text_content"`
	IsAmendment bool      `json:"is_amendment"`
}
