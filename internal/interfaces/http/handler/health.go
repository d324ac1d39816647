// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-qa-api/internal/infrastructure/persistence/milvus"
	"compliance-qa-api/internal/infrastructure/persistence/postgres"
	"compliance-qa-api/internal/infrastructure/persistence/redis"
)

const readyProbeTimeout = 2 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg     *postgres.Client
	redis  *redis.Client
	milvus *milvus.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client) *HealthHandler {
	return &HealthHandler{
		pg:     pg,
		redis:  redisClient,
		milvus: milvusClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// probe 单个依赖的就绪探测定义
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Ready 就绪检查接口，Milvus 降级不影响就绪态
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyProbeTimeout)
	defer cancel()

	probes := []probe{
		{name: "postgres", required: true},
		{name: "redis", required: true},
		{name: "milvus", required: false},
	}
	if h.pg != nil {
		probes[0].check = h.pg.HealthCheck
	}
	if h.redis != nil {
		probes[1].check = h.redis.HealthCheck
	}
	if h.milvus != nil {
		probes[2].check = h.milvus.HealthCheck
	}

	checks := make(map[string]*readinessCheck, len(probes))
	ready := true

	for _, p := range probes {
		result := &readinessCheck{Status: "ok"}
		checks[p.name] = result

		if p.check == nil {
			if p.required {
				result.Status = "missing"
				result.Error = p.name + " client not configured"
				ready = false
			} else {
				result.Status = "disabled"
			}
			continue
		}

		start := time.Now()
		err := p.check(ctx)
		result.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			result.Error = err.Error()
			if p.required {
				result.Status = "error"
				ready = false
			} else {
				result.Status = "degraded"
			}
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 检查服务是否存活
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
