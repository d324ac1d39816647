// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"

	"compliance-qa-api/internal/domain/entity"
)

// CreateInteractionRequest 创建交互请求
type CreateInteractionRequest struct {
	Question string `json:"question" binding:"required,max=10000"`
	Answer   string `json:"answer" binding:"required"`

	// RetrievedContext 检索候选快照，整体透传存储
	RetrievedContext json.RawMessage `json:"retrieved_context,omitempty"`

	ExpectedClause  string `json:"expected_clause,omitempty"`
	ExpectedAnswer  string `json:"expected_answer,omitempty"`
	RequiresTable   bool   `json:"requires_table,omitempty"`
	RequiresDiagram bool   `json:"requires_diagram,omitempty"`
}

// ToEntity 转换为领域实体
func (r *CreateInteractionRequest) ToEntity() *entity.Interaction {
	interaction := entity.NewInteraction(r.Question, r.Answer, r.RetrievedContext)
	interaction.ExpectedClause = r.ExpectedClause
	interaction.ExpectedAnswer = r.ExpectedAnswer
	interaction.RequiresTable = r.RequiresTable
	interaction.RequiresDiagram = r.RequiresDiagram
	return interaction
}

// InteractionResponse 交互响应
type InteractionResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	ExpectedClause  string `json:"expected_clause,omitempty"`
	ExpectedAnswer  string `json:"expected_answer,omitempty"`
	RequiresTable   bool   `json:"requires_table"`
	RequiresDiagram bool   `json:"requires_diagram"`

	EvalStatus     string `json:"eval_status"`
	EvalRetryCount int    `json:"eval_retry_count"`
	ErrorMessage   string `json:"error_message,omitempty"`

	CreatedAt   string `json:"created_at"`
	EvaluatedAt string `json:"evaluated_at,omitempty"`
}

// FromInteraction 从实体构造交互响应
func FromInteraction(interaction *entity.Interaction) *InteractionResponse {
	if interaction == nil {
		return nil
	}
	resp := &InteractionResponse{
		ID:              interaction.ID,
		Question:        interaction.Question,
		Answer:          interaction.Answer,
		ExpectedClause:  interaction.ExpectedClause,
		ExpectedAnswer:  interaction.ExpectedAnswer,
		RequiresTable:   interaction.RequiresTable,
		RequiresDiagram: interaction.RequiresDiagram,
		EvalStatus:      string(interaction.EvalStatus),
		EvalRetryCount:  interaction.EvalRetryCount,
		ErrorMessage:    interaction.ErrorMessage,
		CreatedAt:       interaction.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if interaction.EvaluatedAt != nil {
		resp.EvaluatedAt = interaction.EvaluatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// InteractionListResponse 交互列表响应
type InteractionListResponse struct {
	Interactions []*InteractionResponse `json:"interactions"`
}

// FromInteractions 从实体列表构造响应
func FromInteractions(interactions []*entity.Interaction) *InteractionListResponse {
	resp := &InteractionListResponse{
		Interactions: make([]*InteractionResponse, 0, len(interactions)),
	}
	for i := range interactions {
		resp.Interactions = append(resp.Interactions, FromInteraction(interactions[i]))
	}
	return resp
}
