/*
 * @module service/models/models_test
 * @description 数据质量模型单元测试
 * @architecture 测试层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @rules 覆盖通过判定重算、等级边界、数据集计数与报告不可变性
 * @dependencies testing, stretchr/testify
 */

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDataQualityResult_PassedRecomputation 测试评分或阈值变化后通过判定重算
func TestDataQualityResult_PassedRecomputation(t *testing.T) {
	result := NewDataQualityResult(MetricCompleteness, 0.96, 0.95)
	assert.True(t, result.Passed)

	result.SetScore(0.94)
	assert.False(t, result.Passed)

	result.SetThreshold(0.90)
	assert.True(t, result.Passed)

	result.SetScore(0.90)
	assert.True(t, result.Passed, "评分等于阈值视为通过")
}

// TestCalculateGrade 测试等级阶梯的精确边界
func TestCalculateGrade(t *testing.T) {
	testCases := []struct {
		name     string
		score    float64
		expected string
	}{
		{"满分", 1.0, "A+"},
		{"A+下限", 0.95, "A+"},
		{"A下限", 0.90, "A"},
		{"略低于A", 0.8999, "B+"},
		{"B+下限", 0.85, "B+"},
		{"B下限", 0.80, "B"},
		{"C+下限", 0.75, "C+"},
		{"C下限", 0.70, "C"},
		{"D+下限", 0.65, "D+"},
		{"D下限", 0.60, "D"},
		{"略低于D", 0.5999, "F"},
		{"零分", 0, "F"},
		{"负分", -0.2, "F"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateGrade(tc.score))
		})
	}
}

// TestDataQualityScore_SetOverallScore 测试设置总分同步更新等级
func TestDataQualityScore_SetOverallScore(t *testing.T) {
	score := NewDataQualityScore(0.5, nil)
	assert.Equal(t, "F", score.Grade)
	assert.NotNil(t, score.MetricScores)

	score.SetOverallScore(0.91)
	assert.Equal(t, "A", score.Grade)
}

// TestDataset_Counts 测试行列计数随替换重算
func TestDataset_Counts(t *testing.T) {
	ds := NewDataset("ds-1", "test", []string{"a", "b"}, []map[string]interface{}{
		{"a": 1, "b": 2},
	})
	assert.Equal(t, 1, ds.RowCount)
	assert.Equal(t, 2, ds.ColumnCount)

	ds.SetData([]map[string]interface{}{{"a": 1}, {"a": 2}, {"a": 3}})
	assert.Equal(t, 3, ds.RowCount)

	ds.SetColumns([]string{"a"})
	assert.Equal(t, 1, ds.ColumnCount)

	ds.SetData(nil)
	assert.Equal(t, 0, ds.RowCount)
	assert.True(t, ds.IsEmpty())
}

// TestDataset_WithDataDoesNotShareState 测试派生数据集不影响原数据集
func TestDataset_WithDataDoesNotShareState(t *testing.T) {
	original := NewDataset("ds-1", "test", []string{"a"}, []map[string]interface{}{{"a": 1}, {"a": 2}})
	original.Metadata["source"] = "unit"

	derived := original.WithData(original.CopyRows()[:1])
	derived.Metadata["extra"] = true
	derived.Data[0]["a"] = 100

	assert.Equal(t, 2, original.RowCount)
	assert.Equal(t, 1, derived.RowCount)
	assert.Equal(t, original.ID, derived.ID)
	assert.Equal(t, 1, original.Data[0]["a"])
	assert.NotContains(t, original.Metadata, "extra")
}

// TestDataset_Normalize 测试反序列化后修正计数
func TestDataset_Normalize(t *testing.T) {
	ds := &Dataset{
		Name:     "posted",
		Columns:  []string{"x", "y"},
		Data:     []map[string]interface{}{{"x": 1}},
		RowCount: 99,
	}
	ds.Normalize()

	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, 1, ds.RowCount)
	assert.Equal(t, 2, ds.ColumnCount)
	assert.NotNil(t, ds.Metadata)
	assert.False(t, ds.CreatedAt.IsZero())
}

// TestParseMetric 测试维度名称解析
func TestParseMetric(t *testing.T) {
	metric, err := ParseMetric(" outliers ")
	require.NoError(t, err)
	assert.Equal(t, MetricOutliers, metric)
	assert.Equal(t, "Outliers", metric.DisplayName())

	_, err = ParseMetric("freshness")
	assert.Error(t, err)

	assert.Len(t, AllMetrics(), 11)
	assert.Equal(t, MetricCompleteness, AllMetrics()[0])
	for _, m := range AllMetrics() {
		assert.NotEmpty(t, m.Description(), string(m))
	}
}

// TestReport_WithMetadata 测试元数据合并返回新报告
func TestReport_WithMetadata(t *testing.T) {
	builder := NewReportBuilder("employees").
		PreProcessing(NewDataQualityScore(0.7, nil), nil).
		PostProcessing(NewDataQualityScore(0.9, nil), []*DataQualityResult{}).
		Metadata("rows", 6)
	report := builder.Build()

	merged := report.WithMetadata("sourceFile", "employees.csv")
	assert.Equal(t, "employees.csv", merged.Metadata["sourceFile"])
	assert.NotContains(t, report.Metadata, "sourceFile")
	assert.Equal(t, report.ID, merged.ID)
	assert.InDelta(t, 20.0, merged.ImprovementPoints(), 1e-9)

	builder.Metadata("late", true)
	assert.NotContains(t, report.Metadata, "late", "构建后的修改不影响已生成的报告")
}

// TestSampleDataset 测试示例数据集结构
func TestSampleDataset(t *testing.T) {
	ds := SampleDataset()
	assert.Equal(t, 6, ds.RowCount)
	assert.Equal(t, 6, ds.ColumnCount)
	assert.Equal(t, "Sample Employee Dataset", ds.Name)
	assert.Nil(t, ds.Data[3]["salary"])
	assert.Equal(t, ds.Data[0], ds.Data[4])
}
