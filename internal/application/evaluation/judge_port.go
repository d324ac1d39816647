// Package evaluation 提供交互评测的编排逻辑
package evaluation

import "context"

// JudgeRequest 裁判模型评测请求
type JudgeRequest struct {
	Question       string
	Answer         string
	ExpectedAnswer string
	ExpectedClause string
	ContextText    string
	CitedClauses   []string
}

// JudgeResponse 裁判模型评测结果
type JudgeResponse struct {
	// Faithfulness 答案对检索内容的忠实度，0-1，越高幻觉越少
	Faithfulness float64
	// Relevance 答案与问题的相关度，0-1
	Relevance float64
	Reasoning string

	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Judge 裁判模型端口，由基础设施层实现
type Judge interface {
	Grade(ctx context.Context, req JudgeRequest) (*JudgeResponse, error)
}
