/*
 * @module service/models/result
 * @description 单个质量维度的分析结果
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 智能体分析 -> 生成结果 -> 评分/修复消费
 * @rules Passed 始终等于 Score >= Threshold，评分不做截断
 * @dependencies 无
 * @refs service/agents
 */

package models

import "time"

// DataQualityResult 质量维度分析结果
type DataQualityResult struct {
	Metric          DataQualityMetric      `json:"metric"`
	Score           float64                `json:"score"`
	Threshold       float64                `json:"threshold"`
	Passed          bool                   `json:"passed"`
	Issues          []string               `json:"issues"`
	Recommendations []string               `json:"recommendations"`
	Details         map[string]interface{} `json:"details"`
	Timestamp       time.Time              `json:"timestamp"`
}

// NewDataQualityResult 创建分析结果
func NewDataQualityResult(metric DataQualityMetric, score, threshold float64) *DataQualityResult {
	return &DataQualityResult{
		Metric:          metric,
		Score:           score,
		Threshold:       threshold,
		Passed:          score >= threshold,
		Issues:          []string{},
		Recommendations: []string{},
		Details:         make(map[string]interface{}),
		Timestamp:       time.Now(),
	}
}

// SetScore 更新评分并重新计算是否通过
func (r *DataQualityResult) SetScore(score float64) {
	r.Score = score
	r.Passed = r.Score >= r.Threshold
}

// SetThreshold 更新阈值并重新计算是否通过
func (r *DataQualityResult) SetThreshold(threshold float64) {
	r.Threshold = threshold
	r.Passed = r.Score >= r.Threshold
}

// AddIssue 追加问题描述
func (r *DataQualityResult) AddIssue(issue string) {
	r.Issues = append(r.Issues, issue)
}

// AddRecommendation 追加修复建议
func (r *DataQualityResult) AddRecommendation(recommendation string) {
	r.Recommendations = append(r.Recommendations, recommendation)
}

// AddDetail 写入明细
func (r *DataQualityResult) AddDetail(key string, value interface{}) {
	if r.Details == nil {
		r.Details = make(map[string]interface{})
	}
	r.Details[key] = value
}
