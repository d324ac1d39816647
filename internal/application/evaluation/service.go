package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"compliance-qa-api/internal/application/grading"
	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
	"compliance-qa-api/pkg/logger"
	"compliance-qa-api/pkg/metrics"
)

// RetrievedItem 交互记录中保存的检索上下文条目
type RetrievedItem struct {
	ID          string  `json:"id"`
	ContentType string  `json:"content_type"`
	Class       string  `json:"normativity_class"`
	Similarity  float64 `json:"similarity"`
	Text        string  `json:"text,omitempty"`
}

// Service 评测服务
// 对单个交互执行引用评分、覆盖度计算与可选的裁判模型评测
type Service struct {
	interactions repository.InteractionRepository
	results      repository.EvalResultRepository
	judge        Judge
	enableJudge  bool
}

// NewService 构造评测服务
// judge 可以为 nil，此时只产出确定性指标
func NewService(interactions repository.InteractionRepository, results repository.EvalResultRepository, judge Judge, enableJudge bool) *Service {
	return &Service{
		interactions: interactions,
		results:      results,
		judge:        judge,
		enableJudge:  enableJudge && judge != nil,
	}
}

// Evaluate 评测一个交互并返回结果，不做持久化
func (s *Service) Evaluate(ctx context.Context, interaction *entity.Interaction) (*entity.EvalResult, error) {
	retrieved, err := decodeRetrievedContext(interaction.RetrievedContext)
	if err != nil {
		return nil, fmt.Errorf("decode retrieved context: %w", err)
	}

	result := entity.NewEvalResult(interaction.ID)

	// 引用评分
	citedClauses := grading.ExtractClauseRefs(interaction.Answer)
	grade := grading.GradeCitations(citedClauses, interaction.ExpectedClause)
	result.CitationAccuracy = grade.Accuracy
	result.CorrectClauseRef = grade.Correct
	result.CitationDetails = grade.Diagnostics
	metrics.CitationAccuracy.Observe(grade.Accuracy)

	// 覆盖度指标
	candidates := make([]selection.Candidate, 0, len(retrieved))
	contents := make([]grading.RetrievedContent, 0, len(retrieved))
	for _, item := range retrieved {
		c := selection.NewCandidate(item.ID, selection.ContentType(item.ContentType),
			selection.NormativityClass(item.Class), item.Similarity)
		candidates = append(candidates, c)
		contents = append(contents, grading.RetrievedContent{Candidate: c, Text: item.Text})
	}

	citedIDs := grading.ExtractCitedContentIDs(interaction.Answer, contents)
	coverage := grading.ComputeCoverage(candidates, citedIDs, interaction.Answer, grading.GroundTruthFlags{
		RequiresTable:   interaction.RequiresTable,
		RequiresDiagram: interaction.RequiresDiagram,
	})
	result.NormativeCoverage = coverage.NormativeCoverage
	result.NonNormativeReliance = coverage.NonNormativeReliance
	result.ConditionalRisk = coverage.ConditionalRisk
	result.MultimodalStarvation = coverage.MultimodalStarvation
	result.CoverageDetails = strings.Join([]string{
		coverage.NormativeCoverageDetails,
		coverage.NonNormativeRelianceDetails,
		coverage.ConditionalRiskDetails,
		coverage.MultimodalStarvationDetails,
	}, "; ")

	metrics.CoverageScore.WithLabelValues("normative_coverage").Observe(coverage.NormativeCoverage)
	metrics.CoverageScore.WithLabelValues("non_normative_reliance").Observe(coverage.NonNormativeReliance)
	metrics.CoverageScore.WithLabelValues("conditional_risk").Observe(coverage.ConditionalRisk)
	metrics.CoverageScore.WithLabelValues("multimodal_starvation").Observe(coverage.MultimodalStarvation)

	// 裁判模型评分，失败时降级为仅确定性指标
	if s.enableJudge {
		s.gradeWithJudge(ctx, interaction, contents, citedClauses, result)
	}

	return result, nil
}

// Process 评测交互并持久化结果与状态迁移
func (s *Service) Process(ctx context.Context, interaction *entity.Interaction) error {
	ctx = logger.WithContext(ctx, logger.InteractionIDKey, interaction.ID)

	interaction.StartEval()
	if err := s.interactions.Update(ctx, interaction); err != nil {
		return fmt.Errorf("mark interaction running: %w", err)
	}

	result, err := s.Evaluate(ctx, interaction)
	if err != nil {
		interaction.FailEval(err.Error())
		if updateErr := s.interactions.Update(ctx, interaction); updateErr != nil {
			logger.Error(ctx, "failed to mark interaction failed", updateErr)
		}
		return err
	}

	if err := s.results.Create(ctx, result); err != nil {
		interaction.FailEval(err.Error())
		if updateErr := s.interactions.Update(ctx, interaction); updateErr != nil {
			logger.Error(ctx, "failed to mark interaction failed", updateErr)
		}
		return fmt.Errorf("persist eval result: %w", err)
	}

	interaction.CompleteEval()
	if err := s.interactions.Update(ctx, interaction); err != nil {
		return fmt.Errorf("mark interaction completed: %w", err)
	}

	logger.Info(ctx, "interaction evaluated",
		"citation_accuracy", result.CitationAccuracy,
		"correct_clause_ref", result.CorrectClauseRef,
		"normative_coverage", result.NormativeCoverage,
	)
	return nil
}

// gradeWithJudge 调用裁判模型并将评分并入结果
func (s *Service) gradeWithJudge(ctx context.Context, interaction *entity.Interaction, contents []grading.RetrievedContent, citedClauses []string, result *entity.EvalResult) {
	var contextText strings.Builder
	for i, item := range contents {
		fmt.Fprintf(&contextText, "[%d] (id=%s, class=%s) %s\n",
			i+1, item.Candidate.ID, item.Candidate.EffectiveClass(), item.Text)
	}

	start := time.Now()
	resp, err := s.judge.Grade(ctx, JudgeRequest{
		Question:       interaction.Question,
		Answer:         interaction.Answer,
		ExpectedAnswer: interaction.ExpectedAnswer,
		ExpectedClause: interaction.ExpectedClause,
		ContextText:    contextText.String(),
		CitedClauses:   citedClauses,
	})
	duration := time.Since(start)

	if err != nil {
		logger.Warn(ctx, "judge call failed, keeping deterministic metrics only", "error", err.Error())
		return
	}

	result.JudgeFaithfulness = &resp.Faithfulness
	result.JudgeRelevance = &resp.Relevance
	result.JudgeReasoning = resp.Reasoning
	result.SetJudgeMetrics(resp.Model, resp.PromptTokens, resp.CompletionTokens, int(duration.Milliseconds()))
}

// decodeRetrievedContext 解析检索上下文快照
func decodeRetrievedContext(raw json.RawMessage) ([]RetrievedItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []RetrievedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
