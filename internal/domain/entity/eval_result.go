package entity

import (
	"time"
)

// EvalResult 一次交互的评测结果
type EvalResult struct {
	ID            string `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InteractionID string `json:"interaction_id" gorm:"type:uuid;index;not null"`

	// 引用评分
	CitationAccuracy float64 `json:"citation_accuracy" gorm:"default:0"`
	CorrectClauseRef bool    `json:"correct_clause_ref" gorm:"default:false"`
	CitationDetails  string  `json:"citation_details,omitempty" gorm:"type:text"`

	// 覆盖度指标
	NormativeCoverage    float64 `json:"normative_coverage" gorm:"default:0"`
	NonNormativeReliance float64 `json:"non_normative_reliance" gorm:"default:0"`
	ConditionalRisk      float64 `json:"conditional_risk" gorm:"default:0"`
	MultimodalStarvation float64 `json:"multimodal_starvation" gorm:"default:0"`
	CoverageDetails      string  `json:"coverage_details,omitempty" gorm:"type:text"`

	// 裁判模型评分，可缺失
	JudgeFaithfulness *float64 `json:"judge_faithfulness,omitempty"`
	JudgeRelevance    *float64 `json:"judge_relevance,omitempty"`
	JudgeReasoning    string   `json:"judge_reasoning,omitempty" gorm:"type:text"`

	JudgeModel       string `json:"judge_model,omitempty" gorm:"type:varchar(100)"`
	TokensPrompt     int    `json:"tokens_prompt,omitempty" gorm:"default:0"`
	TokensCompletion int    `json:"tokens_completion,omitempty" gorm:"default:0"`
	DurationMs       int    `json:"duration_ms,omitempty" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (EvalResult) TableName() string {
	return "eval_results"
}

// NewEvalResult 创建评测结果
func NewEvalResult(interactionID string) *EvalResult {
	return &EvalResult{
		InteractionID: interactionID,
		CreatedAt:     time.Now(),
	}
}

// SetJudgeMetrics 设置裁判模型用量指标
func (r *EvalResult) SetJudgeMetrics(model string, promptTokens, completionTokens, durationMs int) {
	r.JudgeModel = model
	r.TokensPrompt = promptTokens
	r.TokensCompletion = completionTokens
	r.DurationMs = durationMs
}
