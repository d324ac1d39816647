// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// EvalStatus 评测状态
type EvalStatus string

const (
	EvalStatusPending   EvalStatus = "pending"
	EvalStatusRunning   EvalStatus = "running"
	EvalStatusCompleted EvalStatus = "completed"
	EvalStatusFailed    EvalStatus = "failed"
	EvalStatusSkipped   EvalStatus = "skipped"
)

// Interaction 一次问答交互
// 保存问题、生成的答案与检索上下文快照，供异步评测消费
type Interaction struct {
	ID       string `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question string `json:"question" gorm:"type:text;not null"`
	Answer   string `json:"answer" gorm:"type:text;not null"`

	// RetrievedContext 检索候选快照，含内容文本与规范性元数据
	RetrievedContext json.RawMessage `json:"retrieved_context" gorm:"type:jsonb"`

	// 标准答案信息，可缺失
	ExpectedClause  string `json:"expected_clause,omitempty" gorm:"type:varchar(64)"`
	ExpectedAnswer  string `json:"expected_answer,omitempty" gorm:"type:text"`
	RequiresTable   bool   `json:"requires_table" gorm:"default:false"`
	RequiresDiagram bool   `json:"requires_diagram" gorm:"default:false"`

	EvalStatus     EvalStatus `json:"eval_status" gorm:"type:varchar(32);index;default:'pending'"`
	EvalRetryCount int        `json:"eval_retry_count" gorm:"default:0"`
	ErrorMessage   string     `json:"error_message,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
}

// TableName 指定表名
func (Interaction) TableName() string {
	return "interactions"
}

// NewInteraction 创建交互记录
func NewInteraction(question, answer string, retrievedContext json.RawMessage) *Interaction {
	return &Interaction{
		Question:         question,
		Answer:           answer,
		RetrievedContext: retrievedContext,
		EvalStatus:       EvalStatusPending,
		CreatedAt:        time.Now(),
	}
}

// StartEval 标记评测开始
func (i *Interaction) StartEval() {
	i.EvalStatus = EvalStatusRunning
	i.UpdatedAt = time.Now()
}

// CompleteEval 标记评测完成
func (i *Interaction) CompleteEval() {
	now := time.Now()
	i.EvalStatus = EvalStatusCompleted
	i.EvaluatedAt = &now
	i.UpdatedAt = now
	i.ErrorMessage = ""
}

// FailEval 标记评测失败
func (i *Interaction) FailEval(errMsg string) {
	i.EvalStatus = EvalStatusFailed
	i.ErrorMessage = errMsg
	i.UpdatedAt = time.Now()
}

// RetryEval 重置评测状态以便重试
func (i *Interaction) RetryEval() {
	i.EvalRetryCount++
	i.EvalStatus = EvalStatusPending
	i.ErrorMessage = ""
	i.UpdatedAt = time.Now()
}

// CanRetryEval 检查是否还可以重试评测
func (i *Interaction) CanRetryEval(maxRetries int) bool {
	return i.EvalRetryCount < maxRetries && i.EvalStatus == EvalStatusFailed
}
