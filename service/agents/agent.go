/*
 * @module service/agents/agent
 * @description 数据质量智能体接口、基础实现与默认注册表
 * @architecture 策略模式 - 每个质量维度一个智能体
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 注册智能体 -> 编排器并发分析 -> 失败维度顺序修复
 * @rules 智能体不得修改入参数据集，修复返回新数据集；空数据集评分为1.0
 * @dependencies dataquality-service/service/models, dataquality-service/service/config
 * @refs service/orchestration/orchestrator.go
 */

package agents

import (
	"errors"
	"log/slog"

	"dataquality-service/service/config"
	"dataquality-service/service/models"
)

// ErrNilDataset 数据集为空指针
var ErrNilDataset = errors.New("数据集不能为空")

// DataQualityAgent 数据质量智能体
type DataQualityAgent interface {
	// GetMetric 负责的质量维度
	GetMetric() models.DataQualityMetric
	// Analyze 分析数据集并返回该维度的结果
	Analyze(dataset *models.Dataset) (*models.DataQualityResult, error)
	// Rectify 根据分析结果修复数据集，返回新的数据集
	Rectify(dataset *models.Dataset, result *models.DataQualityResult) (*models.Dataset, error)
	// GetAgentName 智能体名称
	GetAgentName() string
	// CanHandle 是否能处理指定维度
	CanHandle(metric models.DataQualityMetric) bool
}

// BaseAgent 智能体公共实现
type BaseAgent struct {
	metric    models.DataQualityMetric
	name      string
	threshold float64
}

func newBaseAgent(metric models.DataQualityMetric, name string, threshold float64) BaseAgent {
	return BaseAgent{metric: metric, name: name, threshold: threshold}
}

// GetMetric 负责的质量维度
func (b *BaseAgent) GetMetric() models.DataQualityMetric {
	return b.metric
}

// GetAgentName 智能体名称
func (b *BaseAgent) GetAgentName() string {
	return b.name
}

// CanHandle 维度相等即可处理
func (b *BaseAgent) CanHandle(metric models.DataQualityMetric) bool {
	return b.metric == metric
}

// Threshold 当前阈值
func (b *BaseAgent) Threshold() float64 {
	return b.threshold
}

// createResult 按本智能体阈值创建结果
func (b *BaseAgent) createResult(score float64) *models.DataQualityResult {
	return models.NewDataQualityResult(b.metric, score, b.threshold)
}

// emptyResult 无数据行时的满分结果
func (b *BaseAgent) emptyResult(dataset *models.Dataset) *models.DataQualityResult {
	result := b.createResult(1.0)
	result.AddDetail("totalRows", 0)
	slog.Debug("数据集无数据行，按满分处理", "agent", b.name, "dataset", dataset.Name)
	return result
}

// DefaultAgents 按固定顺序创建全部已实现的智能体
func DefaultAgents(cfg *config.QualityConfig) []DataQualityAgent {
	return []DataQualityAgent{
		NewCompletenessAgent(cfg.Threshold(models.MetricCompleteness)),
		NewUniquenessAgent(cfg.Threshold(models.MetricUniqueness)),
		NewValidityAgent(cfg.Threshold(models.MetricValidity)),
		NewOutliersAgent(cfg.Threshold(models.MetricOutliers)),
		NewConsistencyAgent(cfg.Threshold(models.MetricConsistency)),
		NewBlanksAgent(cfg.Threshold(models.MetricBlanks)),
	}
}

// FindAgent 返回第一个能处理该维度的智能体
func FindAgent(agents []DataQualityAgent, metric models.DataQualityMetric) DataQualityAgent {
	for _, agent := range agents {
		if agent.CanHandle(metric) {
			return agent
		}
	}
	return nil
}

// meanOf 列级比率的算术平均，无列时为1.0
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
