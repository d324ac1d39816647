// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"compliance-qa-api/internal/application/retrieval"
	"compliance-qa-api/internal/application/selection"
	"compliance-qa-api/internal/interfaces/http/dto"
	"compliance-qa-api/pkg/logger"
	"compliance-qa-api/pkg/metrics"
)

// RetrievalHandler 检索处理器
type RetrievalHandler struct {
	engine *retrieval.Engine
}

// NewRetrievalHandler 创建检索处理器
func NewRetrievalHandler(engine *retrieval.Engine) *RetrievalHandler {
	return &RetrievalHandler{
		engine: engine,
	}
}

// Search 语义检索
// @Summary 语义检索
// @Description 检索与查询相关的标准内容，结果已完成重排与配额选择
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/retrieval/search [post]
func (h *RetrievalHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid search request: "+err.Error())
		return
	}

	if h.engine == nil || !h.engine.Enabled() {
		dto.ServiceUnavailable(c, "retrieval backend not configured")
		return
	}

	out, err := h.engine.Search(ctx, *req.ToSearchInput())
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			dto.BadRequest(c, "query must not be empty")
			return
		}
		if errors.Is(err, retrieval.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "retrieval backend not configured")
			return
		}
		logger.Error(ctx, "retrieval search failed", err)
		respondError(c, err, "retrieval search failed")
		return
	}

	dto.Success(c, dto.FromSearchOutput(out))
}

// Select 候选重排与配额选择
// @Summary 候选重排与配额选择
// @Description 对给定候选执行规范性重排和配额选择，返回最终候选集
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.SelectRequest true "选择请求"
// @Success 200 {object} dto.Response[dto.SelectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/retrieval/select [post]
func (h *RetrievalHandler) Select(c *gin.Context) {
	var req dto.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid select request: "+err.Error())
		return
	}

	policy := selection.DefaultPolicy()
	if h.engine != nil {
		policy = h.engine.Policy()
	}
	if req.FinalSize > 0 && req.FinalSize < policy.FinalSize {
		policy.FinalSize = req.FinalSize
	}
	if err := policy.Validate(); err != nil {
		dto.BadRequest(c, "invalid selection policy: "+err.Error())
		return
	}

	reranked := selection.Rerank(req.ToCandidates(), policy)
	selected := selection.SelectQuota(reranked, policy)
	metrics.SelectionTotal.WithLabelValues("success").Inc()

	dto.Success(c, dto.FromSelected(selected))
}
