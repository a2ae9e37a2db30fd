/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供服务存活与就绪检查
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow HTTP请求处理流程
 * @rules 就绪检查要求编排器已装配
 * @dependencies net/http
 */

package controllers

import (
	"context"
	"net/http"
	"time"

	"dataquality-service/service/monitoring"

	"github.com/go-chi/render"
)

const (
	ServiceName    = "dataquality-service"
	ServiceVersion = "1.0.0"
)

// DependencyChecker 依赖健康检查
type DependencyChecker interface {
	Check(ctx context.Context) *monitoring.HealthStatus
}

// HealthController 健康检查控制器
type HealthController struct {
	ready   func() bool
	checker DependencyChecker
}

// NewHealthController 创建健康检查控制器实例，ready 为空时始终就绪
func NewHealthController(ready func() bool, checker DependencyChecker) *HealthController {
	return &HealthController{ready: ready, checker: checker}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"dataquality-service"`
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, newHealthResponse("ok"))
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查服务是否就绪
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	if c.ready != nil && !c.ready() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, newHealthResponse("not_ready"))
		return
	}
	render.JSON(w, r, newHealthResponse("ready"))
}

// Dependencies 依赖健康检查
// @Summary 依赖健康检查
// @Description 探测 Redis、数据库与数据目录等依赖，全部不可用时返回503
// @Tags 系统
// @Produce json
// @Success 200 {object} APIResponse{data=monitoring.HealthStatus}
// @Failure 503 {object} APIResponse{data=monitoring.HealthStatus}
// @Router /health/dependencies [get]
func (c *HealthController) Dependencies(w http.ResponseWriter, r *http.Request) {
	if c.checker == nil {
		render.JSON(w, r, SuccessResponse("未配置依赖检查", nil))
		return
	}

	status := c.checker.Check(r.Context())
	if status.Overall == monitoring.HealthCritical {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, &APIResponse{Status: http.StatusServiceUnavailable, Msg: "依赖不可用", Data: status})
		return
	}
	render.JSON(w, r, SuccessResponse("依赖检查完成", status))
}

func newHealthResponse(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   ServiceVersion,
		Service:   ServiceName,
	}
}
