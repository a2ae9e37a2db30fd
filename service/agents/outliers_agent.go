/*
 * @module service/agents/outliers_agent
 * @description 离群值智能体，基于 Tukey 围栏识别数值列离群值并以中位数替换
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 识别数值列 -> 计算四分位与围栏 -> 统计离群率 -> 中位数替换
 * @rules 至少3个数值的列才参与；离群率 = 离群值个数/总行数；无数值列时评分1.0
 * @dependencies dataquality-service/service/models, github.com/spf13/cast
 * @refs service/agents/statistics.go
 */

package agents

import (
	"fmt"
	"log/slog"

	"dataquality-service/service/models"

	"github.com/spf13/cast"
)

// minNumericValues 参与离群检测的最少数值个数
const minNumericValues = 3

// rateTolerance 比率与上限比较时的浮点容差
const rateTolerance = 1e-9

// OutlierBounds 数值列的四分位与围栏
type OutlierBounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains 值是否在围栏内
func (b OutlierBounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// OutliersAgent 离群值智能体
type OutliersAgent struct {
	BaseAgent
}

// NewOutliersAgent 创建离群值智能体
func NewOutliersAgent(threshold float64) *OutliersAgent {
	return &OutliersAgent{
		BaseAgent: newBaseAgent(models.MetricOutliers, "OutliersAgent", threshold),
	}
}

// Analyze 分析离群值
func (a *OutliersAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	totalRows := len(dataset.Data)
	ceiling := 1 - a.threshold
	ratesPerColumn := make(map[string]float64)
	outliers := make(map[string][]float64)
	bounds := make(map[string]OutlierBounds)
	numericColumns := []string{}
	rates := []float64{}
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		values := a.columnNumbers(dataset, column)
		if len(values) < minNumericValues {
			continue
		}
		numericColumns = append(numericColumns, column)

		q1, q3, lower, upper := tukeyFences(values)
		b := OutlierBounds{Q1: q1, Q3: q3, Lower: lower, Upper: upper}
		bounds[column] = b

		var flagged []float64
		for _, v := range values {
			if !b.Contains(v) {
				flagged = append(flagged, v)
			}
		}
		if len(flagged) > 0 {
			outliers[column] = flagged
		}

		rate := float64(len(flagged)) / float64(totalRows)
		ratesPerColumn[column] = rate
		rates = append(rates, rate)

		if rate-ceiling > rateTolerance {
			issues = append(issues, fmt.Sprintf("Column '%s' has high outlier rate: %.2f%% (%d outliers)", column, rate*100, len(flagged)))
			recommendations = append(recommendations, fmt.Sprintf("Review outliers in column '%s' - consider data validation or transformation", column))
		}
	}

	score := 1.0
	overallRate := 0.0
	if len(rates) > 0 {
		overallRate = mean(rates)
		score = 1 - overallRate
	}

	result := a.createResult(score)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", totalRows)
	result.AddDetail("outlierRatesPerColumn", ratesPerColumn)
	result.AddDetail("outliers", outliers)
	result.AddDetail("outlierBounds", bounds)
	result.AddDetail("numericColumns", numericColumns)
	result.AddDetail("overallOutlierRate", overallRate)
	return result, nil
}

// Rectify 将标记的离群值替换为该列其余数值的中位数
func (a *OutliersAgent) Rectify(dataset *models.Dataset, result *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	flaggedByColumn := flaggedOutliers(result)
	if flaggedByColumn == nil {
		fresh, err := a.Analyze(dataset)
		if err != nil {
			return nil, err
		}
		flaggedByColumn = flaggedOutliers(fresh)
	}

	rows := dataset.CopyRows()
	replaced := 0
	for _, column := range dataset.Columns {
		flagged := flaggedByColumn[column]
		if len(flagged) == 0 {
			continue
		}
		isFlagged := make(map[float64]bool, len(flagged))
		for _, v := range flagged {
			isFlagged[v] = true
		}

		var remaining []float64
		for _, v := range a.columnNumbers(dataset, column) {
			if !isFlagged[v] {
				remaining = append(remaining, v)
			}
		}
		if len(remaining) == 0 {
			continue
		}
		replacement := median(remaining)

		for _, row := range rows {
			if isBlank(row[column]) {
				continue
			}
			if v, ok := toFloat(row[column]); ok && isFlagged[v] {
				row[column] = replacement
				replaced++
			}
		}
	}

	slog.Info("离群值修复完成", "dataset", dataset.Name, "replaced_cells", replaced)
	return dataset.WithData(rows), nil
}

// columnNumbers 列中非空且可解析的数值
func (a *OutliersAgent) columnNumbers(dataset *models.Dataset, column string) []float64 {
	var values []float64
	for _, row := range dataset.Data {
		value := row[column]
		if isBlank(value) {
			continue
		}
		if f, ok := toFloat(value); ok {
			values = append(values, f)
		}
	}
	return values
}

// flaggedOutliers 从分析结果中读取离群值，兼容经 JSON 往返后的明细
func flaggedOutliers(result *models.DataQualityResult) map[string][]float64 {
	if result == nil || result.Details == nil {
		return nil
	}
	raw, ok := result.Details["outliers"]
	if !ok {
		return nil
	}

	switch typed := raw.(type) {
	case map[string][]float64:
		return typed
	case map[string]interface{}:
		flagged := make(map[string][]float64, len(typed))
		for column, values := range typed {
			nums, err := cast.ToSliceE(values)
			if err != nil {
				continue
			}
			for _, n := range nums {
				if f, err := cast.ToFloat64E(n); err == nil {
					flagged[column] = append(flagged[column], f)
				}
			}
		}
		return flagged
	default:
		return nil
	}
}
