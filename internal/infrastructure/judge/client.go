// Package judge 提供裁判模型客户端
// 通过 OpenAI 兼容的 chat completions 接口对答案做忠实度与相关度评分
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"compliance-qa-api/internal/application/evaluation"
	"compliance-qa-api/internal/config"
	"compliance-qa-api/pkg/metrics"
)

type Client struct {
	provider    string
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewClient(cfg *config.JudgeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		provider:    cfg.Provider,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// judgeVerdict 裁判模型输出的结构化评分
type judgeVerdict struct {
	Faithfulness float64 `json:"faithfulness"`
	Relevance    float64 `json:"relevance"`
	Reasoning    string  `json:"reasoning"`
}

// Grade 实现 evaluation.Judge
func (c *Client) Grade(ctx context.Context, req evaluation.JudgeRequest) (*evaluation.JudgeResponse, error) {
	start := time.Now()
	resp, err := c.doChat(ctx, buildPrompt(req))
	metrics.JudgeCallDuration.WithLabelValues(c.provider, c.model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JudgeCallTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return nil, err
	}
	metrics.JudgeCallTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.JudgeTokensUsed.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.JudgeTokensUsed.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("judge returned no choices")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse judge verdict: %w", err)
	}

	return &evaluation.JudgeResponse{
		Faithfulness:     clamp01(verdict.Faithfulness),
		Relevance:        clamp01(verdict.Relevance),
		Reasoning:        verdict.Reasoning,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *Client) doChat(ctx context.Context, prompt string) (*chatResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("judge base url is empty")
	}

	reqBody, err := json.Marshal(&chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal judge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create judge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("judge request failed: status=%d", httpResp.StatusCode)
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode judge response: %w", err)
	}
	return &resp, nil
}

func buildPrompt(req evaluation.JudgeRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert evaluator for a question-answering system over electrical wiring standards.\n\n")
	b.WriteString("Evaluate the generated answer on two dimensions:\n")
	b.WriteString("1. faithfulness: are the factual claims supported by the retrieved context or the expected answer? (0.0-1.0)\n")
	b.WriteString("2. relevance: does the answer address the question? (0.0-1.0)\n\n")

	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", req.Question)
	fmt.Fprintf(&b, "ANSWER:\n%s\n\n", req.Answer)
	if req.ExpectedAnswer != "" {
		fmt.Fprintf(&b, "EXPECTED ANSWER (verified correct):\n%s\n\n", req.ExpectedAnswer)
		b.WriteString("If the answer aligns with the expected answer, it is not a hallucination even when the retrieved context missed it.\n\n")
	}
	fmt.Fprintf(&b, "RETRIEVED CONTEXT:\n%s\n", req.ContextText)
	if req.ExpectedClause != "" {
		fmt.Fprintf(&b, "EXPECTED CLAUSE: %s\n", req.ExpectedClause)
	}
	if len(req.CitedClauses) > 0 {
		fmt.Fprintf(&b, "CITED CLAUSES: %s\n", strings.Join(req.CitedClauses, ", "))
	}

	b.WriteString("\nRespond with JSON only: {\"faithfulness\": <float>, \"relevance\": <float>, \"reasoning\": \"<short explanation>\"}\n")
	return b.String()
}

var codeFencePattern = regexp.MustCompile("(?m)^```(?:json)?\\s*")

// parseVerdict 解析裁判模型输出，容忍 markdown 代码块包装
func parseVerdict(text string) (*judgeVerdict, error) {
	text = codeFencePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
