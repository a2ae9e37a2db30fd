/*
 * @module api/controllers/data_quality_controller
 * @description 数据质量控制器，提供分析、评分、建议、指标目录与智能问答接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow HTTP请求 -> 解析数据集 -> 编排器处理 -> 统一响应
 * @rules 空数据集返回400；业务错误按哨兵错误映射状态码；响应统一使用 APIResponse
 * @dependencies dataquality-service/service/orchestration, github.com/go-chi/render
 * @refs service/orchestration/orchestrator.go, service/models/report.go
 */

package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dataquality-service/service/agents"
	"dataquality-service/service/config"
	"dataquality-service/service/datasource"
	"dataquality-service/service/models"
	"dataquality-service/service/orchestration"

	"github.com/go-chi/render"
	"github.com/samber/lo"
)

// DataQualityController 数据质量控制器
type DataQualityController struct {
	orchestrator *orchestration.Orchestrator
	config       *config.QualityConfig
}

// NewDataQualityController 创建数据质量控制器实例
func NewDataQualityController(orchestrator *orchestration.Orchestrator, cfg *config.QualityConfig) *DataQualityController {
	return &DataQualityController{
		orchestrator: orchestrator,
		config:       cfg,
	}
}

// AnalyzeOnlyResponse 仅分析响应
type AnalyzeOnlyResponse struct {
	Results []*models.DataQualityResult `json:"results"`
	Score   *models.DataQualityScore    `json:"score"`
}

// RecommendationsResponse 改进建议响应
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// MetricInfo 质量维度说明
type MetricInfo struct {
	Name        string  `json:"name" example:"COMPLETENESS"`
	DisplayName string  `json:"displayName" example:"Completeness"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold" example:"0.95"`
	Weight      float64 `json:"weight" example:"0.15"`
	Implemented bool    `json:"implemented"`
}

// MetricsCatalogResponse 指标目录响应
type MetricsCatalogResponse struct {
	Metrics      []MetricInfo      `json:"metrics"`
	Descriptions map[string]string `json:"descriptions"`
}

// PromptRequest 智能问答请求
type PromptRequest struct {
	Prompt string `json:"prompt" example:"How can I improve completeness?"`
}

// PromptResponse 智能问答响应
type PromptResponse struct {
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status" example:"success"`
}

// QualityHealthResponse 数据质量服务健康响应
type QualityHealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Service   string `json:"service" example:"Data Quality Orchestration Agent"`
	Version   string `json:"version" example:"1.0.0"`
	Agents    int    `json:"agents" example:"6"`
	Timestamp int64  `json:"timestamp"`
}

// Analyze 完整处理数据集
// @Summary 分析并修复数据集
// @Description 并发分析全部质量维度，修复未通过的维度并生成处理报告
// @Tags 数据质量
// @Accept json
// @Produce json
// @Param dataset body models.Dataset true "数据集"
// @Success 200 {object} APIResponse{data=models.DataQualityReport} "处理成功"
// @Failure 400 {object} APIResponse "数据集为空"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /data-quality/analyze [post]
func (c *DataQualityController) Analyze(w http.ResponseWriter, r *http.Request) {
	dataset, ok := decodeDataset(w, r)
	if !ok {
		return
	}

	slog.Info("收到数据质量分析请求", "dataset", dataset.Name, "rows", dataset.RowCount)

	report, err := c.orchestrator.ProcessDataset(r.Context(), dataset)
	if err != nil {
		writeError(w, r, "数据质量处理失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("数据质量处理完成", report))
}

// Score 计算质量评分
// @Summary 计算数据质量评分
// @Description 分析数据集并返回加权总分、各维度得分与等级
// @Tags 数据质量
// @Accept json
// @Produce json
// @Param dataset body models.Dataset true "数据集"
// @Success 200 {object} APIResponse{data=models.DataQualityScore} "计算成功"
// @Failure 400 {object} APIResponse "数据集为空"
// @Router /data-quality/score [post]
func (c *DataQualityController) Score(w http.ResponseWriter, r *http.Request) {
	dataset, ok := decodeDataset(w, r)
	if !ok {
		return
	}

	score, err := c.orchestrator.CalculateDataQualityScore(r.Context(), dataset)
	if err != nil {
		writeError(w, r, "计算数据质量评分失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("计算数据质量评分成功", score))
}

// AnalyzeOnly 仅分析不修复
// @Summary 仅分析数据集
// @Description 返回各维度分析结果与评分，不执行修复
// @Tags 数据质量
// @Accept json
// @Produce json
// @Param dataset body models.Dataset true "数据集"
// @Success 200 {object} APIResponse{data=AnalyzeOnlyResponse} "分析成功"
// @Failure 400 {object} APIResponse "数据集为空"
// @Router /data-quality/analyze-only [post]
func (c *DataQualityController) AnalyzeOnly(w http.ResponseWriter, r *http.Request) {
	dataset, ok := decodeDataset(w, r)
	if !ok {
		return
	}

	results, err := c.orchestrator.AnalyzeDataQuality(r.Context(), dataset)
	if err != nil {
		writeError(w, r, "数据质量分析失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("数据质量分析完成", &AnalyzeOnlyResponse{
		Results: results,
		Score:   c.orchestrator.Scorer().CalculateScore(results),
	}))
}

// Recommendations 生成改进建议
// @Summary 生成改进建议
// @Description 根据分析结果生成改进建议，模型不可用时汇总未通过维度的建议
// @Tags 数据质量
// @Accept json
// @Produce json
// @Param results body []models.DataQualityResult true "分析结果"
// @Success 200 {object} APIResponse{data=RecommendationsResponse} "生成成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /data-quality/recommendations [post]
func (c *DataQualityController) Recommendations(w http.ResponseWriter, r *http.Request) {
	var results []*models.DataQualityResult
	if err := render.DecodeJSON(r.Body, &results); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	results = lo.Compact(results)

	recommendations := c.orchestrator.GenerateRecommendations(r.Context(), results)
	render.JSON(w, r, SuccessResponse("生成改进建议成功", &RecommendationsResponse{
		Recommendations: recommendations,
	}))
}

// Metrics 质量维度目录
// @Summary 获取质量维度目录
// @Description 返回全部质量维度的名称、说明、阈值、权重以及是否已实现
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=MetricsCatalogResponse} "获取成功"
// @Router /data-quality/metrics [get]
func (c *DataQualityController) Metrics(w http.ResponseWriter, r *http.Request) {
	implemented := lo.Map(c.orchestrator.Agents(), func(a agents.DataQualityAgent, _ int) models.DataQualityMetric {
		return a.GetMetric()
	})

	catalog := &MetricsCatalogResponse{Descriptions: make(map[string]string)}
	for _, metric := range models.AllMetrics() {
		catalog.Metrics = append(catalog.Metrics, MetricInfo{
			Name:        string(metric),
			DisplayName: metric.DisplayName(),
			Description: metric.Description(),
			Threshold:   c.config.Threshold(metric),
			Weight:      c.config.Weight(metric),
			Implemented: lo.Contains(implemented, metric),
		})
		catalog.Descriptions[string(metric)] = metric.Description()
	}

	render.JSON(w, r, SuccessResponse("获取质量维度目录成功", catalog))
}

// Health 数据质量服务健康检查
// @Summary 数据质量服务健康检查
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=QualityHealthResponse}
// @Router /data-quality/health [get]
func (c *DataQualityController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("服务正常", &QualityHealthResponse{
		Status:    "healthy",
		Service:   "Data Quality Orchestration Agent",
		Version:   ServiceVersion,
		Agents:    len(c.orchestrator.Agents()),
		Timestamp: time.Now().UnixMilli(),
	}))
}

// SampleDataset 生成示例数据集
// @Summary 生成示例数据集
// @Description 返回包含空值、重复、非法邮箱与离群值的示例员工数据集
// @Tags 数据质量
// @Produce json
// @Success 200 {object} APIResponse{data=models.Dataset} "生成成功"
// @Router /data-quality/sample-dataset [post]
func (c *DataQualityController) SampleDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("生成示例数据集成功", models.SampleDataset()))
}

// Prompt 智能问答
// @Summary 数据质量智能问答
// @Description 将用户问题交给大模型回答，模型不可用时返回固定提示
// @Tags 数据质量
// @Accept json
// @Produce json
// @Param request body PromptRequest true "问题"
// @Success 200 {object} APIResponse{data=PromptResponse} "回答成功"
// @Failure 400 {object} APIResponse "问题为空"
// @Failure 429 {object} APIResponse "请求过于频繁"
// @Router /data-quality/prompt [post]
func (c *DataQualityController) Prompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("Prompt is required and cannot be empty", nil))
		return
	}

	slog.Info("处理用户问题", "prompt", truncate(prompt, 100))

	render.JSON(w, r, SuccessResponse("处理成功", &PromptResponse{
		Response:  c.orchestrator.AnswerPrompt(r.Context(), prompt),
		Timestamp: time.Now().UnixMilli(),
		Status:    "success",
	}))
}

// decodeDataset 解析请求体中的数据集，失败时直接写出400
func decodeDataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
	var dataset *models.Dataset
	if err := render.DecodeJSON(r.Body, &dataset); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return nil, false
	}
	if dataset == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("数据集校验失败", orchestration.ErrNilDataset))
		return nil, false
	}
	dataset.Normalize()
	return dataset, true
}

// writeError 按错误类型映射状态码
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
	}
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse(code, msg, err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, orchestration.ErrNilDataset), errors.Is(err, orchestration.ErrEmptyDataset):
		return http.StatusBadRequest
	case errors.Is(err, datasource.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, datasource.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, datasource.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
