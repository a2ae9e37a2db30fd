/*
 * @module api/controllers/scheduler_controller
 * @description 定时质量检查控制器，查询最近执行记录并支持手动触发
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @rules 调度器未启用时返回404
 * @dependencies dataquality-service/service/scheduler
 * @refs service/scheduler/quality_scheduler.go
 */

package controllers

import (
	"context"
	"net/http"
	"time"

	"dataquality-service/service/scheduler"

	"github.com/go-chi/render"
)

// QualityRunner 定时质量检查执行器
type QualityRunner interface {
	RunOnce(ctx context.Context) []scheduler.RunRecord
	LastRuns() map[string]scheduler.RunRecord
	NextRun() time.Time
}

// SchedulerController 定时质量检查控制器
type SchedulerController struct {
	runner QualityRunner
}

// NewSchedulerController 创建控制器，runner 为空表示调度器未启用
func NewSchedulerController(runner QualityRunner) *SchedulerController {
	return &SchedulerController{runner: runner}
}

// SchedulerStatusResponse 调度状态
type SchedulerStatusResponse struct {
	NextRun *time.Time                     `json:"nextRun,omitempty"`
	Runs    map[string]scheduler.RunRecord `json:"runs"`
}

// Status 查询调度状态
// @Summary 查询定时质量检查状态
// @Tags 定时检查
// @Produce json
// @Success 200 {object} APIResponse{data=SchedulerStatusResponse}
// @Failure 404 {object} APIResponse "调度器未启用"
// @Router /scheduler/runs [get]
func (c *SchedulerController) Status(w http.ResponseWriter, r *http.Request) {
	if !c.enabled(w, r) {
		return
	}

	resp := &SchedulerStatusResponse{Runs: c.runner.LastRuns()}
	if next := c.runner.NextRun(); !next.IsZero() {
		resp.NextRun = &next
	}
	render.JSON(w, r, SuccessResponse("获取调度状态成功", resp))
}

// Run 立即执行一轮质量检查
// @Summary 手动触发定时质量检查
// @Tags 定时检查
// @Produce json
// @Success 200 {object} APIResponse{data=[]scheduler.RunRecord}
// @Failure 404 {object} APIResponse "调度器未启用"
// @Router /scheduler/run [post]
func (c *SchedulerController) Run(w http.ResponseWriter, r *http.Request) {
	if !c.enabled(w, r) {
		return
	}
	render.JSON(w, r, SuccessResponse("质量检查执行完成", c.runner.RunOnce(r.Context())))
}

func (c *SchedulerController) enabled(w http.ResponseWriter, r *http.Request) bool {
	if c.runner != nil {
		return true
	}
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, ErrorResponse(http.StatusNotFound, "定时质量检查未启用", nil))
	return false
}
