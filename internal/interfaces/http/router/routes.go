// Package router 提供 HTTP 路由配置
package router

import (
	"compliance-qa-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	retrievalHandler *handler.RetrievalHandler,
	evalHandler *handler.EvalHandler,
	interactionHandler *handler.InteractionHandler,
	contentHandler *handler.ContentHandler,
) {
	// 检索与筛选
	retrieval := v1.Group("/retrieval")
	{
		retrieval.POST("/search", retrievalHandler.Search)
		retrieval.POST("/select", retrievalHandler.Select)
	}

	// 离线评测工具
	eval := v1.Group("/eval")
	{
		eval.POST("/citations", evalHandler.GradeCitations)
		eval.POST("/coverage", evalHandler.ComputeCoverage)
		eval.GET("/results", evalHandler.ListResults)
		eval.GET("/summary", evalHandler.GetSummary)
	}

	// 标准内容管理
	content := v1.Group("/content")
	{
		content.POST("/ingest", contentHandler.Ingest)
		content.DELETE("/:id", contentHandler.Delete)
	}

	// 交互记录管理
	interactions := v1.Group("/interactions")
	{
		interactions.POST("", interactionHandler.Create)
		interactions.GET("", interactionHandler.List)
		interactions.GET("/:id", interactionHandler.Get)
		interactions.GET("/:id/result", interactionHandler.GetResult)
		interactions.POST("/:id/evaluate", interactionHandler.Requeue)
	}
}
