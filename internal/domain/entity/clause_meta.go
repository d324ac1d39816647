package entity

import (
	"time"
)

// ClauseMeta 内容条目的规范性元数据
// 按 content_id 维护，检索后用于给候选附加规范性分类
type ClauseMeta struct {
	ContentID   string    `json:"content_id" gorm:"type:varchar(64);primaryKey"`
	Clause      string    `json:"clause,omitempty" gorm:"type:varchar(64);index"`
	ContentType string    `json:"content_type" gorm:"type:varchar(32);not null"`
	Class       string    `json:"normativity_class" gorm:"type:varchar(16);not null"`
	IsAmendment bool      `json:"is_amendment" gorm:"not null;default:false"`
	Source      string    `json:"source,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ClauseMeta) TableName() string {
	return "clause_meta"
}
