package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"compliance-qa-api/internal/application/retrieval"
	"compliance-qa-api/internal/infrastructure/messaging"
	"compliance-qa-api/internal/interfaces/http/dto"
	"compliance-qa-api/pkg/logger"
)

// ContentHandler 标准内容管理处理器
type ContentHandler struct {
	producer *messaging.Producer
	indexer  *retrieval.Indexer
}

// NewContentHandler 创建内容管理处理器
func NewContentHandler(producer *messaging.Producer, indexer *retrieval.Indexer) *ContentHandler {
	return &ContentHandler{
		producer: producer,
		indexer:  indexer,
	}
}

// Ingest 批量入库标准内容
// @Summary 批量入库标准内容
// @Description 将标准内容批次发布到入库流，由 worker 异步向量化写入
// @Tags Content
// @Accept json
// @Produce json
// @Param body body dto.ContentIngestRequest true "入库请求"
// @Success 202 {object} dto.Response[dto.ContentIngestResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/content/ingest [post]
func (h *ContentHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ContentIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	batchID := uuid.NewString()
	if _, err := h.producer.PublishContentIngest(ctx, req.ToMessage(batchID)); err != nil {
		logger.Error(ctx, "failed to publish content ingest batch", err, "batch_id", batchID)
		respondError(c, err, "failed to enqueue content batch")
		return
	}

	dto.Accepted(c, &dto.ContentIngestResponse{
		BatchID: batchID,
		Items:   len(req.Items),
	})
}

// Delete 删除单条标准内容
// @Summary 删除标准内容
// @Description 按内容 ID 删除向量库中的条目
// @Tags Content
// @Produce json
// @Param id path string true "内容 ID"
// @Success 200 {object} dto.Response[dto.ContentDeleteResponse]
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	contentID := strings.TrimSpace(c.Param("id"))
	if contentID == "" {
		dto.BadRequest(c, "content id is required")
		return
	}

	if err := h.indexer.DeleteContent(ctx, []string{contentID}); err != nil {
		if errors.Is(err, retrieval.ErrVectorDisabled) {
			dto.ServiceUnavailable(c, "vector storage is not available")
			return
		}
		respondError(c, err, "failed to delete content")
		return
	}

	dto.Success(c, &dto.ContentDeleteResponse{ContentID: contentID})
}
