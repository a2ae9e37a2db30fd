/*
 * @module api/controllers/source_controller
 * @description 数据源控制器，列出可用的文件或数据表并对其执行数据质量处理
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 列出来源 | 加载来源 -> 编排器处理 -> 报告合并来源元数据
 * @rules 名称非法或不存在返回404；格式不支持返回415；超限返回413
 * @dependencies dataquality-service/service/datasource, github.com/go-chi/chi/v5
 * @refs service/datasource/file_source.go, service/datasource/table_source.go
 */

package controllers

import (
	"log/slog"
	"net/http"

	"dataquality-service/service/datasource"
	"dataquality-service/service/orchestration"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SourceController 数据源控制器，文件与数据表共用
type SourceController struct {
	source       datasource.DatasetSource
	orchestrator *orchestration.Orchestrator
	metadataKey  string
}

// NewFileSourceController 文件数据源控制器，报告元数据写入 sourceFile
func NewFileSourceController(source datasource.DatasetSource, orchestrator *orchestration.Orchestrator) *SourceController {
	return &SourceController{source: source, orchestrator: orchestrator, metadataKey: "sourceFile"}
}

// NewTableSourceController 数据表数据源控制器，报告元数据写入 sourceTable
func NewTableSourceController(source datasource.DatasetSource, orchestrator *orchestration.Orchestrator) *SourceController {
	return &SourceController{source: source, orchestrator: orchestrator, metadataKey: "sourceTable"}
}

// List 列出可用来源
// @Summary 列出可用数据源
// @Description 列出数据目录中的文件或数据库中的表
// @Tags 数据源
// @Produce json
// @Success 200 {object} APIResponse{data=[]datasource.SourceEntry} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /files [get]
// @Router /tables [get]
func (c *SourceController) List(w http.ResponseWriter, r *http.Request) {
	entries, err := c.source.List(r.Context())
	if err != nil {
		writeError(w, r, "获取数据源列表失败", err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取数据源列表成功", entries))
}

// Analyze 加载来源并执行完整处理
// @Summary 分析指定数据源
// @Description 加载文件或数据表为数据集，执行分析与修复，报告元数据记录来源名称
// @Tags 数据源
// @Produce json
// @Param name path string true "文件名或表名"
// @Success 200 {object} APIResponse{data=models.DataQualityReport} "处理成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 413 {object} APIResponse "文件过大"
// @Failure 415 {object} APIResponse "格式不支持"
// @Router /files/{name}/analyze [post]
// @Router /tables/{name}/analyze [post]
func (c *SourceController) Analyze(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("数据源名称不能为空", nil))
		return
	}

	dataset, err := c.source.Load(r.Context(), name)
	if err != nil {
		writeError(w, r, "加载数据源失败", err)
		return
	}

	slog.Info("分析数据源", c.metadataKey, name, "rows", dataset.RowCount)

	report, err := c.orchestrator.ProcessDataset(r.Context(), dataset)
	if err != nil {
		writeError(w, r, "数据质量处理失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("数据质量处理完成", report.WithMetadata(c.metadataKey, name)))
}
