/*
 * @module service/agents/completeness_agent
 * @description 完整性智能体，统计各列非空比例并对空值进行插补
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 逐列统计非空 -> 计算均值 -> 低于阈值记录问题 -> 插补空值
 * @rules 仅 nil 与空白字符串视为空；数值列（>=50%可解析）用均值插补，否则用众数，无值时填 UNKNOWN
 * @dependencies dataquality-service/service/models
 * @refs service/agents/blanks_agent.go
 */

package agents

import (
	"fmt"
	"log/slog"

	"dataquality-service/service/models"
)

// UnknownPlaceholder 整列无值时的插补内容
const UnknownPlaceholder = "UNKNOWN"

// CompletenessAgent 完整性智能体
type CompletenessAgent struct {
	BaseAgent
}

// NewCompletenessAgent 创建完整性智能体
func NewCompletenessAgent(threshold float64) *CompletenessAgent {
	return &CompletenessAgent{
		BaseAgent: newBaseAgent(models.MetricCompleteness, "CompletenessAgent", threshold),
	}
}

// Analyze 分析完整性
func (a *CompletenessAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	totalRows := len(dataset.Data)
	perColumn := make(map[string]float64, len(dataset.Columns))
	rates := make([]float64, 0, len(dataset.Columns))
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		present := 0
		for _, row := range dataset.Data {
			if !isBlank(row[column]) {
				present++
			}
		}

		completeness := float64(present) / float64(totalRows)
		perColumn[column] = completeness
		rates = append(rates, completeness)

		if completeness < a.threshold {
			issues = append(issues, fmt.Sprintf("Column '%s' has low completeness: %.2f%%", column, completeness*100))
			recommendations = append(recommendations, fmt.Sprintf("Consider data imputation or collection improvement for column '%s'", column))
		}
	}

	overall := meanOf(rates)
	result := a.createResult(overall)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", totalRows)
	result.AddDetail("completenessPerColumn", perColumn)
	result.AddDetail("overallCompleteness", overall)
	return result, nil
}

// Rectify 插补空值
func (a *CompletenessAgent) Rectify(dataset *models.Dataset, _ *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	rows := dataset.CopyRows()
	filled := 0
	for _, column := range dataset.Columns {
		replacement := a.imputationValue(dataset, column)
		for _, row := range rows {
			if isBlank(row[column]) {
				row[column] = replacement
				filled++
			}
		}
	}

	slog.Info("完整性修复完成", "dataset", dataset.Name, "filled_cells", filled)
	return dataset.WithData(rows), nil
}

// imputationValue 计算列的插补值
func (a *CompletenessAgent) imputationValue(dataset *models.Dataset, column string) interface{} {
	var present []interface{}
	for _, row := range dataset.Data {
		if v := row[column]; !isBlank(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return UnknownPlaceholder
	}

	nums := numericValues(present)
	if len(nums)*2 >= len(present) {
		return mean(nums)
	}

	value, _ := mode(present)
	return value
}
