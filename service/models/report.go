/*
 * @module service/models/report
 * @description 数据质量处理报告及其构建器
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 编排器组装 -> 资源层合并元数据 -> 返回客户端
 * @rules 报告组装后不可变，元数据合并返回新报告
 * @dependencies github.com/google/uuid
 * @refs service/orchestration
 */

package models

import (
	"time"

	"github.com/google/uuid"
)

// DataQualityReport 数据质量处理报告
type DataQualityReport struct {
	ID                   string                 `json:"id"`
	DatasetName          string                 `json:"datasetName"`
	PreProcessingScore   *DataQualityScore      `json:"preProcessingScore"`
	PostProcessingScore  *DataQualityScore      `json:"postProcessingScore"`
	PreProcessingResults []*DataQualityResult   `json:"preProcessingResults,omitempty"`
	Results              []*DataQualityResult   `json:"results"`
	RectificationActions []string               `json:"rectificationActions"`
	Summary              string                 `json:"summary"`
	Timestamp            time.Time              `json:"timestamp"`
	ProcessingTimeMs     int64                  `json:"processingTimeMs"`
	Metadata             map[string]interface{} `json:"metadata"`
}

// WithMetadata 合并一项元数据并返回新的报告，原报告不变
func (r *DataQualityReport) WithMetadata(key string, value interface{}) *DataQualityReport {
	copied := *r
	copied.Metadata = make(map[string]interface{}, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		copied.Metadata[k] = v
	}
	copied.Metadata[key] = value
	return &copied
}

// ImprovementPoints 前后总分差值（百分点）
func (r *DataQualityReport) ImprovementPoints() float64 {
	if r.PreProcessingScore == nil || r.PostProcessingScore == nil {
		return 0
	}
	return (r.PostProcessingScore.OverallScore - r.PreProcessingScore.OverallScore) * 100
}

// ReportBuilder 报告构建器
type ReportBuilder struct {
	report DataQualityReport
}

// NewReportBuilder 创建报告构建器
func NewReportBuilder(datasetName string) *ReportBuilder {
	return &ReportBuilder{
		report: DataQualityReport{
			ID:                   uuid.New().String(),
			DatasetName:          datasetName,
			Results:              []*DataQualityResult{},
			RectificationActions: []string{},
			Metadata:             make(map[string]interface{}),
		},
	}
}

// PreProcessing 设置修复前评分与结果
func (b *ReportBuilder) PreProcessing(score *DataQualityScore, results []*DataQualityResult) *ReportBuilder {
	b.report.PreProcessingScore = score
	b.report.PreProcessingResults = results
	return b
}

// PostProcessing 设置修复后评分与结果
func (b *ReportBuilder) PostProcessing(score *DataQualityScore, results []*DataQualityResult) *ReportBuilder {
	b.report.PostProcessingScore = score
	if results != nil {
		b.report.Results = results
	}
	return b
}

// RectificationActions 设置修复动作描述
func (b *ReportBuilder) RectificationActions(actions []string) *ReportBuilder {
	if actions != nil {
		b.report.RectificationActions = actions
	}
	return b
}

// Summary 设置摘要
func (b *ReportBuilder) Summary(summary string) *ReportBuilder {
	b.report.Summary = summary
	return b
}

// ProcessingTime 设置处理耗时
func (b *ReportBuilder) ProcessingTime(d time.Duration) *ReportBuilder {
	b.report.ProcessingTimeMs = d.Milliseconds()
	return b
}

// Metadata 写入元数据
func (b *ReportBuilder) Metadata(key string, value interface{}) *ReportBuilder {
	b.report.Metadata[key] = value
	return b
}

// Build 生成报告，构建器之后的修改不影响已生成的报告
func (b *ReportBuilder) Build() *DataQualityReport {
	report := b.report
	report.Timestamp = time.Now()
	report.Metadata = make(map[string]interface{}, len(b.report.Metadata))
	for k, v := range b.report.Metadata {
		report.Metadata[k] = v
	}
	report.RectificationActions = append([]string(nil), b.report.RectificationActions...)
	return &report
}
