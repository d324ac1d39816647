// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"compliance-qa-api/internal/domain/entity"
	"compliance-qa-api/internal/domain/repository"
	"compliance-qa-api/internal/infrastructure/messaging"
	"compliance-qa-api/internal/interfaces/http/dto"
	"compliance-qa-api/pkg/logger"
)

// InteractionHandler 交互处理器
type InteractionHandler struct {
	interactions repository.InteractionRepository
	results      repository.EvalResultRepository
	producer     *messaging.Producer
}

// NewInteractionHandler 创建交互处理器
func NewInteractionHandler(
	interactions repository.InteractionRepository,
	results repository.EvalResultRepository,
	producer *messaging.Producer,
) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		results:      results,
		producer:     producer,
	}
}

// Create 创建交互并入队评测
// @Summary 创建交互
// @Description 记录一次问答交互并异步触发评测
// @Tags Interactions
// @Accept json
// @Produce json
// @Param body body dto.CreateInteractionRequest true "交互请求"
// @Success 201 {object} dto.Response[dto.InteractionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/interactions [post]
func (h *InteractionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid interaction request: "+err.Error())
		return
	}

	interaction := req.ToEntity()
	if err := h.interactions.Create(ctx, interaction); err != nil {
		logger.Error(ctx, "failed to create interaction", err)
		respondError(c, err, "failed to create interaction")
		return
	}

	// 入队失败不阻塞创建，worker 的兜底轮询会接手 pending 状态的交互
	if h.producer != nil {
		if _, err := h.producer.PublishEvalJob(ctx, &messaging.EvalJobMessage{
			InteractionID: interaction.ID,
			RequestID:     c.GetString("request_id"),
		}); err != nil {
			logger.Warn(ctx, "failed to publish eval job", "error", err, "interaction_id", interaction.ID)
		}
	}

	dto.Created(c, dto.FromInteraction(interaction))
}

// Get 获取交互详情
// @Summary 获取交互详情
// @Tags Interactions
// @Produce json
// @Param id path string true "交互 ID"
// @Success 200 {object} dto.Response[dto.InteractionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/interactions/{id} [get]
func (h *InteractionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := dto.BindInteractionID(c)

	interaction, err := h.interactions.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get interaction", err)
		respondError(c, err, "failed to get interaction")
		return
	}
	if interaction == nil {
		dto.NotFound(c, "interaction not found")
		return
	}

	dto.Success(c, dto.FromInteraction(interaction))
}

// List 分页列出交互
// @Summary 交互列表
// @Tags Interactions
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param eval_status query string false "评测状态过滤"
// @Success 200 {object} dto.Response[dto.InteractionListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/interactions [get]
func (h *InteractionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	filter := &repository.InteractionFilter{
		EvalStatus: entity.EvalStatus(c.Query("eval_status")),
	}

	paged, err := h.interactions.List(ctx, filter, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list interactions", err)
		respondError(c, err, "failed to list interactions")
		return
	}

	dto.SuccessWithPage(c, dto.FromInteractions(paged.Items),
		dto.NewPageMeta(page.Page, page.PageSize, int(paged.Total)))
}

// GetResult 获取交互的评测结果
// @Summary 获取评测结果
// @Tags Interactions
// @Produce json
// @Param id path string true "交互 ID"
// @Success 200 {object} dto.Response[dto.EvalResultResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/interactions/{id}/result [get]
func (h *InteractionHandler) GetResult(c *gin.Context) {
	ctx := c.Request.Context()
	id := dto.BindInteractionID(c)

	result, err := h.results.GetByInteractionID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get eval result", err)
		respondError(c, err, "failed to get eval result")
		return
	}
	if result == nil {
		dto.NotFound(c, "eval result not found")
		return
	}

	dto.Success(c, dto.FromEvalResult(result))
}

// Requeue 重新入队评测
// @Summary 重新评测
// @Description 将失败或已完成的交互重新入队评测
// @Tags Interactions
// @Produce json
// @Param id path string true "交互 ID"
// @Success 202 {object} dto.Response[dto.InteractionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/interactions/{id}/evaluate [post]
func (h *InteractionHandler) Requeue(c *gin.Context) {
	ctx := c.Request.Context()
	id := dto.BindInteractionID(c)

	interaction, err := h.interactions.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to get interaction", err)
		respondError(c, err, "failed to get interaction")
		return
	}
	if interaction == nil {
		dto.NotFound(c, "interaction not found")
		return
	}

	if interaction.EvalStatus == entity.EvalStatusRunning {
		dto.Conflict(c, "evaluation already running")
		return
	}

	interaction.EvalStatus = entity.EvalStatusPending
	interaction.ErrorMessage = ""
	if err := h.interactions.Update(ctx, interaction); err != nil {
		logger.Error(ctx, "failed to requeue interaction", err)
		respondError(c, err, "failed to requeue interaction")
		return
	}

	if h.producer != nil {
		if _, err := h.producer.PublishEvalJob(ctx, &messaging.EvalJobMessage{
			InteractionID: interaction.ID,
			RequestID:     c.GetString("request_id"),
			Reason:        "manual_requeue",
		}); err != nil {
			logger.Warn(ctx, "failed to publish eval job", "error", err, "interaction_id", interaction.ID)
		}
	}

	dto.Accepted(c, dto.FromInteraction(interaction))
}
