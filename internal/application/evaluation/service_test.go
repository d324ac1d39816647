package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
)

type stubInteractionRepo struct {
	updated []entity.EvalStatus
}

func (s *stubInteractionRepo) Create(ctx context.Context, i *entity.Interaction) error { return nil }
func (s *stubInteractionRepo) GetByID(ctx context.Context, id string) (*entity.Interaction, error) {
	return nil, nil
}
func (s *stubInteractionRepo) Update(ctx context.Context, i *entity.Interaction) error {
	s.updated = append(s.updated, i.EvalStatus)
	return nil
}
func (s *stubInteractionRepo) List(ctx context.Context, f *repository.InteractionFilter, p repository.Pagination) (*repository.PagedResult[*entity.Interaction], error) {
	return nil, nil
}
func (s *stubInteractionRepo) UpdateEvalStatus(ctx context.Context, id string, st entity.EvalStatus) error {
	return nil
}
func (s *stubInteractionRepo) GetPendingEval(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	return nil, nil
}
func (s *stubInteractionRepo) GetRetryableEval(ctx context.Context, maxRetries, limit int) ([]*entity.Interaction, error) {
	return nil, nil
}
func (s *stubInteractionRepo) CountPendingEval(ctx context.Context) (int64, error) { return 0, nil }

type stubResultRepo struct {
	created *entity.EvalResult
	fail    bool
}

func (s *stubResultRepo) Create(ctx context.Context, r *entity.EvalResult) error {
	if s.fail {
		return errors.New("insert failed")
	}
	s.created = r
	return nil
}
func (s *stubResultRepo) GetByInteractionID(ctx context.Context, id string) (*entity.EvalResult, error) {
	return nil, nil
}
func (s *stubResultRepo) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.EvalResult], error) {
	return nil, nil
}
func (s *stubResultRepo) GetSummary(ctx context.Context) (*repository.EvalSummary, error) {
	return nil, nil
}

type stubJudge struct {
	resp *JudgeResponse
	err  error
}

func (s *stubJudge) Grade(ctx context.Context, req JudgeRequest) (*JudgeResponse, error) {
	return s.resp, s.err
}

func testInteraction(t *testing.T) *entity.Interaction {
	t.Helper()
	contextJSON, err := json.Marshal([]RetrievedItem{
		{ID: "TEXT_aa11", ContentType: "text_chunk", Class: "A", Similarity: 0.9,
			Text: "Clause 3.7.2.1 requires switchboards in damp situations to be protected against corrosion."},
		{ID: "TEXT_bb22", ContentType: "text_chunk", Class: "C", Similarity: 0.7,
			Text: "Appendix note discussing common installation practice in residential work."},
	})
	require.NoError(t, err)

	interaction := entity.NewInteraction(
		"What protection is required for switchboards in damp situations?",
		"According to Clause 3.7.2.1, the switchboard must be protected against corrosion where damp situations occur.",
		contextJSON,
	)
	interaction.ID = "int-1"
	interaction.ExpectedClause = "3.7.2.1"
	return interaction
}

func TestServiceEvaluate(t *testing.T) {
	svc := NewService(&stubInteractionRepo{}, &stubResultRepo{}, nil, false)

	result, err := svc.Evaluate(context.Background(), testInteraction(t))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.CitationAccuracy, 1e-9)
	assert.True(t, result.CorrectClauseRef)
	// A 类内容被引用，规范性覆盖满分
	assert.InDelta(t, 1.0, result.NormativeCoverage, 1e-9)
	// 答案含条件性措辞但没有 B 类内容
	assert.InDelta(t, 1.0, result.ConditionalRisk, 1e-9)
	assert.Nil(t, result.JudgeFaithfulness)
}

func TestServiceEvaluateWithJudge(t *testing.T) {
	judge := &stubJudge{resp: &JudgeResponse{
		Faithfulness: 0.95, Relevance: 0.9, Reasoning: "grounded",
		Model: "gpt-4o-mini", PromptTokens: 800, CompletionTokens: 120,
	}}
	svc := NewService(&stubInteractionRepo{}, &stubResultRepo{}, judge, true)

	result, err := svc.Evaluate(context.Background(), testInteraction(t))
	require.NoError(t, err)

	require.NotNil(t, result.JudgeFaithfulness)
	assert.InDelta(t, 0.95, *result.JudgeFaithfulness, 1e-9)
	assert.Equal(t, "gpt-4o-mini", result.JudgeModel)
	assert.Equal(t, 800, result.TokensPrompt)
}

func TestServiceEvaluateJudgeFailureDegrades(t *testing.T) {
	svc := NewService(&stubInteractionRepo{}, &stubResultRepo{}, &stubJudge{err: errors.New("timeout")}, true)

	result, err := svc.Evaluate(context.Background(), testInteraction(t))
	require.NoError(t, err)

	// 裁判失败只丢失裁判分，确定性指标保留
	assert.Nil(t, result.JudgeFaithfulness)
	assert.True(t, result.CorrectClauseRef)
}

func TestServiceProcess(t *testing.T) {
	t.Run("happy path persists result and completes", func(t *testing.T) {
		interactions := &stubInteractionRepo{}
		results := &stubResultRepo{}
		svc := NewService(interactions, results, nil, false)

		interaction := testInteraction(t)
		require.NoError(t, svc.Process(context.Background(), interaction))

		assert.Equal(t, entity.EvalStatusCompleted, interaction.EvalStatus)
		require.NotNil(t, results.created)
		assert.Equal(t, "int-1", results.created.InteractionID)
		assert.Equal(t, []entity.EvalStatus{entity.EvalStatusRunning, entity.EvalStatusCompleted}, interactions.updated)
	})

	t.Run("persistence failure marks interaction failed", func(t *testing.T) {
		interactions := &stubInteractionRepo{}
		svc := NewService(interactions, &stubResultRepo{fail: true}, nil, false)

		interaction := testInteraction(t)
		err := svc.Process(context.Background(), interaction)

		assert.Error(t, err)
		assert.Equal(t, entity.EvalStatusFailed, interaction.EvalStatus)
	})
}
