package handler

import (
	"github.com/gin-gonic/gin"

	"compliance-qa-api/internal/interfaces/http/dto"
	"compliance-qa-api/pkg/errors"
)

// respondError 将应用错误映射为 HTTP 响应，未知错误按 500 处理
func respondError(c *gin.Context, err error, fallbackMessage string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	dto.InternalError(c, fallbackMessage)
}
