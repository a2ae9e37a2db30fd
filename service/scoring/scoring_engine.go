/*
 * @module service/scoring/scoring_engine
 * @description 评分引擎，按配置权重聚合各维度评分并计算等级与提升幅度
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 维度结果 -> 加权平均 -> 等级
 * @rules 总分 = Σ(评分·权重)/Σ(权重)，按每条结果累加，无权重时为0；不截断；未出现的维度不参与加权
 * @dependencies dataquality-service/service/config, dataquality-service/service/models
 * @refs service/orchestration/orchestrator.go
 */

package scoring

import (
	"dataquality-service/service/config"
	"dataquality-service/service/models"
)

// ScoringEngine 评分引擎
type ScoringEngine struct {
	cfg *config.QualityConfig
}

// NewScoringEngine 创建评分引擎
func NewScoringEngine(cfg *config.QualityConfig) *ScoringEngine {
	return &ScoringEngine{cfg: cfg}
}

// CalculateScore 逐条结果累加加权总分，同一维度的多条结果分别计入；metricScores 中同一维度以最后一条为准
func (e *ScoringEngine) CalculateScore(results []*models.DataQualityResult) *models.DataQualityScore {
	metricScores := make(map[models.DataQualityMetric]float64, len(results))
	totalScore := 0.0
	totalWeight := 0.0
	for _, result := range results {
		if result == nil {
			continue
		}
		metricScores[result.Metric] = result.Score

		weight := e.cfg.Weight(result.Metric)
		if weight <= 0 {
			continue
		}
		totalScore += result.Score * weight
		totalWeight += weight
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = totalScore / totalWeight
	}

	return models.NewDataQualityScore(overall, metricScores)
}

// CalculateImprovement 前后总分差值，任一为空时为0
func (e *ScoringEngine) CalculateImprovement(pre, post *models.DataQualityScore) float64 {
	if pre == nil || post == nil {
		return 0
	}
	return post.OverallScore - pre.OverallScore
}

// CalculateMetricImprovements 前后均存在的维度的评分差值
func (e *ScoringEngine) CalculateMetricImprovements(pre, post *models.DataQualityScore) map[models.DataQualityMetric]float64 {
	improvements := make(map[models.DataQualityMetric]float64)
	if pre == nil || post == nil {
		return improvements
	}
	for metric, before := range pre.MetricScores {
		if after, ok := post.MetricScores[metric]; ok {
			improvements[metric] = after - before
		}
	}
	return improvements
}
