/*
 * @module service/models/metric
 * @description 数据质量维度枚举及其展示名称、描述
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 无状态
 * @rules 枚举封闭，声明顺序即目录顺序
 * @dependencies 无
 * @refs service/scoring, service/agents
 */

package models

import (
	"fmt"
	"strings"
)

// DataQualityMetric 数据质量维度
type DataQualityMetric string

const (
	MetricCompleteness DataQualityMetric = "COMPLETENESS"
	MetricUniqueness   DataQualityMetric = "UNIQUENESS"
	MetricConsistency  DataQualityMetric = "CONSISTENCY"
	MetricValidity     DataQualityMetric = "VALIDITY"
	MetricAccuracy     DataQualityMetric = "ACCURACY"
	MetricIntegrity    DataQualityMetric = "INTEGRITY"
	MetricTimeliness   DataQualityMetric = "TIMELINESS"
	MetricConformity   DataQualityMetric = "CONFORMITY"
	MetricRange        DataQualityMetric = "RANGE"
	MetricBlanks       DataQualityMetric = "BLANKS"
	MetricOutliers     DataQualityMetric = "OUTLIERS"
)

type metricInfo struct {
	displayName string
	description string
}

var metricCatalog = map[DataQualityMetric]metricInfo{
	MetricCompleteness: {"Completeness", "Measures the percentage of non-null values"},
	MetricUniqueness:   {"Uniqueness", "Measures the percentage of unique values"},
	MetricConsistency:  {"Consistency", "Measures data format and value consistency"},
	MetricValidity:     {"Validity", "Measures adherence to defined formats and rules"},
	MetricAccuracy:     {"Accuracy", "Measures correctness of data values"},
	MetricIntegrity:    {"Integrity", "Measures referential integrity and constraints"},
	MetricTimeliness:   {"Timeliness", "Measures data freshness and currency"},
	MetricConformity:   {"Conformity", "Measures adherence to business rules"},
	MetricRange:        {"Range", "Measures values within expected ranges"},
	MetricBlanks:       {"Blanks", "Measures presence of blank or empty values"},
	MetricOutliers:     {"Outliers", "Measures statistical outliers in numeric data"},
}

// AllMetrics 按声明顺序返回全部质量维度
func AllMetrics() []DataQualityMetric {
	return []DataQualityMetric{
		MetricCompleteness,
		MetricUniqueness,
		MetricConsistency,
		MetricValidity,
		MetricAccuracy,
		MetricIntegrity,
		MetricTimeliness,
		MetricConformity,
		MetricRange,
		MetricBlanks,
		MetricOutliers,
	}
}

// DisplayName 展示名称
func (m DataQualityMetric) DisplayName() string {
	if info, ok := metricCatalog[m]; ok {
		return info.displayName
	}
	return string(m)
}

// Description 维度描述
func (m DataQualityMetric) Description() string {
	return metricCatalog[m].description
}

// IsValid 是否为已知维度
func (m DataQualityMetric) IsValid() bool {
	_, ok := metricCatalog[m]
	return ok
}

// ParseMetric 解析维度名称，大小写不敏感，同时接受展示名称
func ParseMetric(name string) (DataQualityMetric, error) {
	candidate := DataQualityMetric(strings.ToUpper(strings.TrimSpace(name)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("未知的数据质量维度: %s", name)
}
