/*
 * @module service/agents/blanks_agent
 * @description 空白值智能体，除 nil/空串外还识别 N/A、unknown 等占位符并进行填充
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 统计空白率 -> 评分 1-均值 -> 中位数/众数/列名默认值填充
 * @rules 空白定义与完整性智能体不同，二者独立计算；数值占多数（>50%）的列用中位数填充
 * @dependencies dataquality-service/service/models
 * @refs service/agents/completeness_agent.go
 */

package agents

import (
	"fmt"
	"log/slog"
	"strings"

	"dataquality-service/service/models"
)

// BlanksAgent 空白值智能体
type BlanksAgent struct {
	BaseAgent
}

// NewBlanksAgent 创建空白值智能体
func NewBlanksAgent(threshold float64) *BlanksAgent {
	return &BlanksAgent{
		BaseAgent: newBaseAgent(models.MetricBlanks, "BlanksAgent", threshold),
	}
}

// Analyze 分析空白值
func (a *BlanksAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	totalRows := len(dataset.Data)
	ceiling := 1 - a.threshold
	blankRates := make(map[string]float64, len(dataset.Columns))
	blankCounts := make(map[string]int, len(dataset.Columns))
	rates := make([]float64, 0, len(dataset.Columns))
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		blanks := 0
		for _, row := range dataset.Data {
			if isEffectivelyBlank(row[column]) {
				blanks++
			}
		}

		rate := float64(blanks) / float64(totalRows)
		blankRates[column] = rate
		blankCounts[column] = blanks
		rates = append(rates, rate)

		if rate-ceiling > rateTolerance {
			issues = append(issues, fmt.Sprintf("Column '%s' has high blank rate: %.2f%% (%d blanks)", column, rate*100, blanks))
			recommendations = append(recommendations, fmt.Sprintf("Reduce blank values in column '%s' through better data collection", column))
		}
	}

	overallRate := 0.0
	if len(rates) > 0 {
		overallRate = mean(rates)
	}

	result := a.createResult(1 - overallRate)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", totalRows)
	result.AddDetail("blankRatesPerColumn", blankRates)
	result.AddDetail("blankCounts", blankCounts)
	result.AddDetail("overallBlankRate", overallRate)
	return result, nil
}

// Rectify 填充空白值
func (a *BlanksAgent) Rectify(dataset *models.Dataset, _ *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	rows := dataset.CopyRows()
	filled := 0
	for _, column := range dataset.Columns {
		replacement := a.replacementValue(dataset, column)
		for _, row := range rows {
			if isEffectivelyBlank(row[column]) {
				row[column] = replacement
				filled++
			}
		}
	}

	slog.Info("空白值修复完成", "dataset", dataset.Name, "filled_cells", filled)
	return dataset.WithData(rows), nil
}

// replacementValue 数值占多数取中位数，否则取众数，整列无值时取列名默认值
func (a *BlanksAgent) replacementValue(dataset *models.Dataset, column string) interface{} {
	var present []interface{}
	for _, row := range dataset.Data {
		if v := row[column]; !isEffectivelyBlank(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return defaultValueFor(column)
	}

	nums := numericValues(present)
	if len(nums)*2 > len(present) {
		return median(nums)
	}

	value, _ := mode(present)
	return value
}

// defaultValueFor 按列名推断默认值
func defaultValueFor(column string) interface{} {
	name := strings.ToLower(column)
	switch {
	case strings.Contains(name, "name"):
		return "Unknown"
	case strings.Contains(name, "email"):
		return "unknown@example.com"
	case strings.Contains(name, "phone"):
		return "000-000-0000"
	case strings.Contains(name, "age"):
		return 0
	case strings.Contains(name, "salary") || strings.Contains(name, "amount") || strings.Contains(name, "price"):
		return 0.0
	case strings.Contains(name, "date"):
		return "1900-01-01"
	case strings.Contains(name, "id"), strings.Contains(name, "count"), strings.Contains(name, "number"):
		return 0
	default:
		return "Unknown"
	}
}
