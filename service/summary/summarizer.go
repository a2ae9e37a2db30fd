/*
 * @module service/summary/summarizer
 * @description 质量报告自然语言摘要、改进建议与问答助手的统一入口
 * @architecture 策略模式 - LLM实现与确定性实现可互换
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 读取LLM配置 -> 选择实现 -> 生成摘要/建议/回答
 * @rules 未配置模型时使用确定性实现；LLM失败由调用方降级到确定性文本
 * @dependencies github.com/tmc/langchaingo, github.com/samber/lo
 * @refs service/orchestration/orchestrator.go, api/controllers/data_quality_controller.go
 */

package summary

import (
	"context"
	"fmt"
	"strings"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/samber/lo"
)

// PromptFallbackMessage 问答不可用时返回的固定文本
const PromptFallbackMessage = "I apologize, but I'm unable to process your request at this time. Please try again later or contact support if the issue persists."

// genericRecommendations 所有指标通过时的通用建议
var genericRecommendations = []string{
	"Review data collection processes",
	"Implement data validation rules",
	"Establish regular data quality monitoring",
}

// Summarizer 报告摘要生成器
type Summarizer interface {
	Summarize(ctx context.Context, report *models.DataQualityReport) (string, error)
	Recommend(ctx context.Context, results []*models.DataQualityResult) ([]string, error)
	Answer(ctx context.Context, prompt string) (string, error)
}

// NewSummarizer 按配置创建摘要生成器，未配置 Provider 时返回确定性实现
func NewSummarizer(cfg config.LLMConfig) (Summarizer, error) {
	if strings.TrimSpace(cfg.Provider) == "" {
		return FallbackSummarizer{}, nil
	}
	return NewLLMSummarizer(cfg)
}

// FallbackSummary 生成确定性报告摘要
func FallbackSummary(report *models.DataQualityReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Data Quality Report Summary for %s:\n\n", report.DatasetName)
	if report.PreProcessingScore != nil && report.PostProcessingScore != nil {
		fmt.Fprintf(&sb, "Overall quality improved by %.1f percentage points.\n", report.ImprovementPoints())
	}
	sb.WriteString("Processing completed successfully with automated rectification applied.")
	return sb.String()
}

// FallbackRecommendations 汇总未通过指标的建议并去重，全部通过时返回通用建议
func FallbackRecommendations(results []*models.DataQualityResult) []string {
	failing := lo.Filter(results, func(r *models.DataQualityResult, _ int) bool {
		return r != nil && !r.Passed
	})
	recs := lo.Uniq(lo.FlatMap(failing, func(r *models.DataQualityResult, _ int) []string {
		return r.Recommendations
	}))
	if len(recs) == 0 {
		return append([]string(nil), genericRecommendations...)
	}
	return recs
}

// FallbackSummarizer 不依赖外部模型的确定性实现
type FallbackSummarizer struct{}

// Summarize 返回确定性摘要
func (FallbackSummarizer) Summarize(_ context.Context, report *models.DataQualityReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("报告不能为空")
	}
	return FallbackSummary(report), nil
}

// Recommend 返回去重后的失败指标建议
func (FallbackSummarizer) Recommend(_ context.Context, results []*models.DataQualityResult) ([]string, error) {
	return FallbackRecommendations(results), nil
}

// Answer 返回固定的不可用提示
func (FallbackSummarizer) Answer(context.Context, string) (string, error) {
	return PromptFallbackMessage, nil
}
