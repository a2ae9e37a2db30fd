package scoring

import (
	"testing"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *ScoringEngine {
	return NewScoringEngine(config.DefaultConfig())
}

// TestCalculateScore_Empty 测试空结果
func TestCalculateScore_Empty(t *testing.T) {
	engine := newEngine()

	for _, results := range [][]*models.DataQualityResult{nil, {}} {
		score := engine.CalculateScore(results)
		require.NotNil(t, score)
		assert.Equal(t, 0.0, score.OverallScore)
		assert.Equal(t, "F", score.Grade)
		assert.Empty(t, score.MetricScores)
	}
}

// TestCalculateScore_Weighted 测试按权重加权平均
func TestCalculateScore_Weighted(t *testing.T) {
	testCases := []struct {
		name     string
		results  []*models.DataQualityResult
		expected float64
		grade    string
	}{
		{
			name: "单一维度",
			results: []*models.DataQualityResult{
				models.NewDataQualityResult(models.MetricCompleteness, 0.8, 0.95),
			},
			expected: 0.8,
			grade:    "B",
		},
		{
			name: "两个维度不同权重",
			results: []*models.DataQualityResult{
				models.NewDataQualityResult(models.MetricCompleteness, 1.0, 0.95),
				models.NewDataQualityResult(models.MetricOutliers, 0.5, 0.90),
			},
			expected: (1.0*0.15 + 0.5*0.02) / (0.15 + 0.02),
			grade:    "A",
		},
		{
			name: "失败维度按0分计入",
			results: []*models.DataQualityResult{
				models.NewDataQualityResult(models.MetricValidity, 0, 0),
				models.NewDataQualityResult(models.MetricUniqueness, 1.0, 0.98),
			},
			expected: 0.5,
			grade:    "F",
		},
		{
			name: "包含空结果",
			results: []*models.DataQualityResult{
				nil,
				models.NewDataQualityResult(models.MetricBlanks, 0.9, 0.95),
			},
			expected: 0.9,
			grade:    "A",
		},
	}

	engine := newEngine()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := engine.CalculateScore(tc.results)
			assert.InDelta(t, tc.expected, score.OverallScore, 1e-9)
			assert.Equal(t, tc.grade, score.Grade)
		})
	}
}

// TestCalculateScore_ZeroWeightMetric 测试无权重维度记录评分但不参与加权
func TestCalculateScore_ZeroWeightMetric(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Weights["range"] = 0
	engine := NewScoringEngine(cfg)

	score := engine.CalculateScore([]*models.DataQualityResult{
		models.NewDataQualityResult(models.MetricRange, 0.1, 0.95),
	})
	assert.Equal(t, 0.0, score.OverallScore)
	assert.Equal(t, 0.1, score.MetricScores[models.MetricRange])
}

// TestCalculateScore_RepeatedMetric 测试同一维度多条结果均参与加权
func TestCalculateScore_RepeatedMetric(t *testing.T) {
	engine := newEngine()

	score := engine.CalculateScore([]*models.DataQualityResult{
		models.NewDataQualityResult(models.MetricCompleteness, 1.0, 0.95),
		models.NewDataQualityResult(models.MetricCompleteness, 0.5, 0.95),
		models.NewDataQualityResult(models.MetricOutliers, 0.0, 0.90),
	})

	expected := (1.0*0.15 + 0.5*0.15 + 0.0*0.02) / (0.15 + 0.15 + 0.02)
	assert.InDelta(t, expected, score.OverallScore, 1e-9)
	assert.Equal(t, 0.5, score.MetricScores[models.MetricCompleteness])
}

// TestCalculateScore_Idempotent 测试重复计算结果一致
func TestCalculateScore_Idempotent(t *testing.T) {
	results := []*models.DataQualityResult{
		models.NewDataQualityResult(models.MetricCompleteness, 0.93, 0.95),
		models.NewDataQualityResult(models.MetricUniqueness, 0.71, 0.98),
		models.NewDataQualityResult(models.MetricValidity, 0.88, 0.95),
		models.NewDataQualityResult(models.MetricConsistency, 0.97, 0.90),
		models.NewDataQualityResult(models.MetricBlanks, 0.99, 0.95),
		models.NewDataQualityResult(models.MetricOutliers, 0.83, 0.90),
	}

	engine := newEngine()
	first := engine.CalculateScore(results)
	second := engine.CalculateScore(results)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, first.MetricScores, second.MetricScores)
}

// TestCalculateImprovement 测试提升幅度
func TestCalculateImprovement(t *testing.T) {
	engine := newEngine()
	pre := models.NewDataQualityScore(0.7, map[models.DataQualityMetric]float64{
		models.MetricCompleteness: 0.8,
		models.MetricUniqueness:   0.6,
	})
	post := models.NewDataQualityScore(0.9, map[models.DataQualityMetric]float64{
		models.MetricCompleteness: 1.0,
		models.MetricBlanks:       1.0,
	})

	assert.InDelta(t, 0.2, engine.CalculateImprovement(pre, post), 1e-9)
	assert.Equal(t, 0.0, engine.CalculateImprovement(nil, post))
	assert.Equal(t, 0.0, engine.CalculateImprovement(pre, nil))

	improvements := engine.CalculateMetricImprovements(pre, post)
	assert.Len(t, improvements, 1)
	assert.InDelta(t, 0.2, improvements[models.MetricCompleteness], 1e-9)
	assert.Empty(t, engine.CalculateMetricImprovements(nil, post))
}
