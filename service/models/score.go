/*
 * @module service/models/score
 * @description 加权质量总分与等级
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 评分引擎计算 -> 报告引用
 * @rules 设置总分时同步重算等级，等级阶梯边界为闭区间下限
 * @dependencies 无
 * @refs service/scoring
 */

package models

// DataQualityScore 数据质量总分
type DataQualityScore struct {
	OverallScore float64                       `json:"overallScore"`
	MetricScores map[DataQualityMetric]float64 `json:"metricScores"`
	Grade        string                        `json:"grade"`
}

// NewDataQualityScore 创建质量总分
func NewDataQualityScore(overall float64, metricScores map[DataQualityMetric]float64) *DataQualityScore {
	if metricScores == nil {
		metricScores = make(map[DataQualityMetric]float64)
	}
	s := &DataQualityScore{MetricScores: metricScores}
	s.SetOverallScore(overall)
	return s
}

// SetOverallScore 设置总分并重算等级
func (s *DataQualityScore) SetOverallScore(score float64) {
	s.OverallScore = score
	s.Grade = CalculateGrade(score)
}

// CalculateGrade 根据总分计算等级
func CalculateGrade(score float64) string {
	switch {
	case score >= 0.95:
		return "A+"
	case score >= 0.90:
		return "A"
	case score >= 0.85:
		return "B+"
	case score >= 0.80:
		return "B"
	case score >= 0.75:
		return "C+"
	case score >= 0.70:
		return "C"
	case score >= 0.65:
		return "D+"
	case score >= 0.60:
		return "D"
	default:
		return "F"
	}
}
