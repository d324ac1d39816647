package dto

import (
	"compliance-qa-api/internal/infrastructure/messaging"
)

// ContentIngestItemRequest 单条待入库的标准内容
type ContentIngestItemRequest struct {
	ContentID   string `json:"content_id" binding:"required,max=64"`
	ContentType string `json:"content_type" binding:"required,oneof=text_chunk structured_table visual_content"`
	Clause      string `json:"clause,omitempty" binding:"max=64"`
	ClauseType  string `json:"clause_type,omitempty" binding:"max=32"`
	Class       string `json:"normativity_class,omitempty" binding:"omitempty,oneof=A B C UNKNOWN"`
	IsAmendment bool   `json:"is_amendment,omitempty"`
	Text        string `json:"text" binding:"required"`
}

// ContentIngestRequest 内容入库请求
type ContentIngestRequest struct {
	Source string                     `json:"source,omitempty" binding:"max=255"`
	Items  []ContentIngestItemRequest `json:"items" binding:"required,min=1,max=500,dive"`
}

// ToMessage 转换为入库消息
func (r *ContentIngestRequest) ToMessage(batchID string) *messaging.ContentIngestMessage {
	items := make([]messaging.ContentIngestItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, messaging.ContentIngestItem{
			ContentID:   item.ContentID,
			ContentType: item.ContentType,
			Clause:      item.Clause,
			ClauseType:  item.ClauseType,
			Class:       item.Class,
			IsAmendment: item.IsAmendment,
			Text:        item.Text,
		})
	}
	return &messaging.ContentIngestMessage{
		BatchID: batchID,
		Source:  r.Source,
		Items:   items,
	}
}

// ContentIngestResponse 内容入库受理响应
type ContentIngestResponse struct {
	BatchID string `json:"batch_id"`
	Items   int    `json:"items"`
}

// ContentDeleteResponse 内容删除响应
type ContentDeleteResponse struct {
	ContentID string `json:"content_id"`
}
