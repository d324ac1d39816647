// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-qa-api/internal/application/grading"
	"compliance-qa-api/internal/domain/repository"
	"compliance-qa-api/internal/infrastructure/persistence/redis"
	"compliance-qa-api/internal/interfaces/http/dto"
	"compliance-qa-api/pkg/logger"
)

// evalSummaryTTL 聚合统计缓存时长，新结果落库时由 worker 主动失效
const evalSummaryTTL = 5 * time.Minute

// EvalHandler 评测处理器
type EvalHandler struct {
	results repository.EvalResultRepository
	cache   *redis.Cache
}

// NewEvalHandler 创建评测处理器
func NewEvalHandler(results repository.EvalResultRepository, cache *redis.Cache) *EvalHandler {
	return &EvalHandler{
		results: results,
		cache:   cache,
	}
}

// GradeCitations 引用评分
// @Summary 引用评分
// @Description 对答案中的条款引用按分级规则评分
// @Tags Eval
// @Accept json
// @Produce json
// @Param body body dto.GradeCitationsRequest true "引用评分请求"
// @Success 200 {object} dto.Response[dto.GradeCitationsResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/eval/citations [post]
func (h *EvalHandler) GradeCitations(c *gin.Context) {
	var req dto.GradeCitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid grade request: "+err.Error())
		return
	}

	cited := req.CitedClauses
	if len(cited) == 0 && req.Answer != "" {
		cited = grading.ExtractClauseRefs(req.Answer)
	}

	grade := grading.GradeCitations(cited, req.ExpectedClause)

	dto.Success(c, &dto.GradeCitationsResponse{
		CitedClauses: cited,
		Accuracy:     grade.Accuracy,
		Correct:      grade.Correct,
		Diagnostics:  grade.Diagnostics,
	})
}

// ComputeCoverage 覆盖度评测
// @Summary 覆盖度评测
// @Description 基于检索候选与答案计算覆盖度指标
// @Tags Eval
// @Accept json
// @Produce json
// @Param body body dto.ComputeCoverageRequest true "覆盖度评测请求"
// @Success 200 {object} dto.Response[dto.CoverageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/eval/coverage [post]
func (h *EvalHandler) ComputeCoverage(c *gin.Context) {
	var req dto.ComputeCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid coverage request: "+err.Error())
		return
	}

	citedIDs := req.CitedIDs
	if len(citedIDs) == 0 {
		citedIDs = grading.ExtractCitedContentIDs(req.Answer, req.ToRetrievedContents())
	}

	report := grading.ComputeCoverage(req.ToCandidates(), citedIDs, req.Answer, grading.GroundTruthFlags{
		RequiresTable:   req.RequiresTable,
		RequiresDiagram: req.RequiresDiagram,
	})

	dto.Success(c, dto.FromCoverageReport(report, citedIDs))
}

// ListResults 分页列出评测结果
// @Summary 评测结果列表
// @Description 分页列出已完成的评测结果
// @Tags Eval
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.EvalResultResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/eval/results [get]
func (h *EvalHandler) ListResults(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	paged, err := h.results.List(ctx, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list eval results", err)
		respondError(c, err, "failed to list eval results")
		return
	}

	items := make([]*dto.EvalResultResponse, 0, len(paged.Items))
	for i := range paged.Items {
		items = append(items, dto.FromEvalResult(paged.Items[i]))
	}

	dto.SuccessWithPage(c, items, dto.NewPageMeta(page.Page, page.PageSize, int(paged.Total)))
}

// GetSummary 聚合评测统计
// @Summary 聚合评测统计
// @Description 返回所有评测结果的均值统计
// @Tags Eval
// @Produce json
// @Success 200 {object} dto.Response[dto.EvalSummaryResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/eval/summary [get]
func (h *EvalHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	loader := func() (interface{}, error) {
		summary, err := h.results.GetSummary(ctx)
		if err != nil {
			return nil, err
		}
		return dto.FromEvalSummary(summary), nil
	}

	var data []byte
	var err error
	if h.cache != nil {
		data, err = h.cache.GetOrLoadSafe(ctx, redis.BuildEvalSummaryKey(), evalSummaryTTL, loader)
	} else {
		var raw interface{}
		if raw, err = loader(); err == nil {
			data, err = json.Marshal(raw)
		}
	}
	if err != nil {
		logger.Error(ctx, "failed to get eval summary", err)
		respondError(c, err, "failed to get eval summary")
		return
	}

	var resp dto.EvalSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Error(ctx, "failed to decode eval summary", err)
		respondError(c, err, "failed to get eval summary")
		return
	}

	dto.Success(c, &resp)
}
