/*
 * @module service/agents/uniqueness_agent
 * @description 唯一性智能体，统计各列去重比例并删除整行重复记录
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 逐列统计去重值 -> 记录重复值 -> 按整行组合键保留首行
 * @rules 修复会改变行数；值按字符串表示比较，整行键逐格加引号且空值单独标记
 * @dependencies dataquality-service/service/models
 * @refs service/agents/agent.go
 */

package agents

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dataquality-service/service/models"
)

// rowKeySeparator 整行组合键分隔符，各单元格已加引号，分隔符不会与内容混淆
const rowKeySeparator = ","

// nilCellKey 空值占位，不带引号以区别于字符串 "null"
const nilCellKey = "nil"

// UniquenessAgent 唯一性智能体
type UniquenessAgent struct {
	BaseAgent
}

// NewUniquenessAgent 创建唯一性智能体
func NewUniquenessAgent(threshold float64) *UniquenessAgent {
	return &UniquenessAgent{
		BaseAgent: newBaseAgent(models.MetricUniqueness, "UniquenessAgent", threshold),
	}
}

// Analyze 分析唯一性
func (a *UniquenessAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	totalRows := len(dataset.Data)
	perColumn := make(map[string]float64, len(dataset.Columns))
	duplicates := make(map[string][]interface{})
	rates := make([]float64, 0, len(dataset.Columns))
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		frequency := make(map[string]int)
		var order []string
		firstValue := make(map[string]interface{})

		for _, row := range dataset.Data {
			value := row[column]
			if isBlank(value) {
				continue
			}
			key := toString(value)
			if _, seen := frequency[key]; !seen {
				order = append(order, key)
				firstValue[key] = value
			}
			frequency[key]++
		}

		uniqueness := float64(len(frequency)) / float64(totalRows)
		perColumn[column] = uniqueness
		rates = append(rates, uniqueness)

		var columnDuplicates []interface{}
		for _, key := range order {
			if frequency[key] > 1 {
				columnDuplicates = append(columnDuplicates, firstValue[key])
			}
		}
		if len(columnDuplicates) > 0 {
			duplicates[column] = columnDuplicates
		}

		if uniqueness < a.threshold {
			issues = append(issues, fmt.Sprintf("Column '%s' has low uniqueness: %.2f%% (%d duplicates)", column, uniqueness*100, len(columnDuplicates)))
			recommendations = append(recommendations, fmt.Sprintf("Review and remove duplicate values in column '%s'", column))
		}
	}

	overall := meanOf(rates)
	result := a.createResult(overall)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", totalRows)
	result.AddDetail("uniquenessPerColumn", perColumn)
	result.AddDetail("duplicates", duplicates)
	result.AddDetail("overallUniqueness", overall)
	return result, nil
}

// Rectify 删除整行重复记录，保留首次出现的行
func (a *UniquenessAgent) Rectify(dataset *models.Dataset, _ *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	seen := make(map[string]struct{}, len(dataset.Data))
	rows := make([]map[string]interface{}, 0, len(dataset.Data))
	for _, row := range dataset.CopyRows() {
		key := a.rowKey(dataset.Columns, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}

	slog.Info("唯一性修复完成", "dataset", dataset.Name, "removed_rows", len(dataset.Data)-len(rows))
	return dataset.WithData(rows), nil
}

func (a *UniquenessAgent) rowKey(columns []string, row map[string]interface{}) string {
	parts := make([]string, len(columns))
	for i, column := range columns {
		value, ok := row[column]
		if !ok || value == nil {
			parts[i] = nilCellKey
			continue
		}
		parts[i] = strconv.Quote(toString(value))
	}
	return strings.Join(parts, rowKeySeparator)
}
