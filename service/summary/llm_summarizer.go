/*
 * @module service/summary/llm_summarizer
 * @description 基于 langchaingo 的摘要生成实现，支持 ollama、openai、anthropic
 * @architecture 适配器模式 - 封装LLM调用
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 构建提示词 -> 调用模型 -> 解析回复
 * @rules 模型错误原样返回，由调用方决定降级；建议按编号列表解析
 * @dependencies github.com/tmc/langchaingo
 * @refs service/summary/summarizer.go
 */

package summary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const systemPrompt = "You are a Data Quality Expert AI Assistant. Your role is to help users with data quality analysis, recommendations, and best practices."

// listMarker 匹配编号或符号列表项的行首
var listMarker = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*•])\s+`)

// contentGenerator llms.Model 中用到的部分
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLMSummarizer 基于大模型的摘要生成器
type LLMSummarizer struct {
	llm         contentGenerator
	modelName   string
	temperature float64
	maxTokens   int
}

// NewLLMSummarizer 根据配置创建模型客户端
func NewLLMSummarizer(cfg config.LLMConfig) (*LLMSummarizer, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("创建ollama模型失败: %w", err)
		}

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai 需要配置 api_key")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("创建openai模型失败: %w", err)
		}

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic 需要配置 api_key")
		}
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("创建anthropic模型失败: %w", err)
		}

	default:
		return nil, fmt.Errorf("不支持的LLM提供方: %s", cfg.Provider)
	}

	slog.Info("LLM摘要生成器初始化成功", "provider", cfg.Provider, "model", cfg.Model)
	return newLLMSummarizer(model, cfg), nil
}

func newLLMSummarizer(llm contentGenerator, cfg config.LLMConfig) *LLMSummarizer {
	return &LLMSummarizer{
		llm:         llm,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Model 返回模型名称
func (s *LLMSummarizer) Model() string {
	return s.modelName
}

// Summarize 生成报告摘要
func (s *LLMSummarizer) Summarize(ctx context.Context, report *models.DataQualityReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("报告不能为空")
	}
	slog.Info("生成质量报告摘要", "report_id", report.ID, "model", s.modelName)
	return s.generate(ctx, buildSummaryPrompt(report))
}

// Recommend 生成改进建议
func (s *LLMSummarizer) Recommend(ctx context.Context, results []*models.DataQualityResult) ([]string, error) {
	text, err := s.generate(ctx, buildRecommendationsPrompt(results))
	if err != nil {
		return nil, err
	}
	recs := parseRecommendations(text)
	if len(recs) == 0 {
		return nil, fmt.Errorf("模型未返回有效建议")
	}
	return recs, nil
}

// Answer 回答用户问题
func (s *LLMSummarizer) Answer(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("问题不能为空")
	}
	return s.generate(ctx, buildUserPrompt(prompt))
}

func (s *LLMSummarizer) generate(ctx context.Context, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	var opts []llms.CallOption
	if s.temperature > 0 {
		opts = append(opts, llms.WithTemperature(s.temperature))
	}
	if s.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(s.maxTokens))
	}

	response, err := s.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("调用模型失败: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("模型未返回结果")
	}

	content := strings.TrimSpace(response.Choices[0].Content)
	if content == "" {
		return "", fmt.Errorf("模型返回内容为空")
	}
	return content, nil
}

func buildSummaryPrompt(report *models.DataQualityReport) string {
	var sb strings.Builder
	sb.WriteString("Generate a comprehensive data quality summary for the following report:\n\n")
	fmt.Fprintf(&sb, "Dataset: %s\n", report.DatasetName)
	if report.PreProcessingScore != nil {
		fmt.Fprintf(&sb, "Pre-processing Score: %.2f%%\n", report.PreProcessingScore.OverallScore*100)
	}
	if report.PostProcessingScore != nil {
		fmt.Fprintf(&sb, "Post-processing Score: %.2f%%\n", report.PostProcessingScore.OverallScore*100)
	}
	sb.WriteString("\nData Quality Results:\n")
	for _, result := range report.Results {
		if result == nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %.2f%% (%s)\n", result.Metric.DisplayName(), result.Score*100, passLabel(result.Passed))
	}
	if len(report.RectificationActions) > 0 {
		sb.WriteString("\nRectification Actions:\n")
		for _, action := range report.RectificationActions {
			fmt.Fprintf(&sb, "- %s\n", action)
		}
	}
	sb.WriteString("\nPlease provide a concise summary highlighting key findings, improvements made, and overall data quality status.")
	return sb.String()
}

func buildRecommendationsPrompt(results []*models.DataQualityResult) string {
	var sb strings.Builder
	sb.WriteString("Based on the following data quality analysis results, provide specific recommendations for improvement:\n\n")
	for _, result := range results {
		if result == nil {
			continue
		}
		fmt.Fprintf(&sb, "Metric: %s\n", result.Metric.DisplayName())
		fmt.Fprintf(&sb, "Score: %.2f%%\n", result.Score*100)
		fmt.Fprintf(&sb, "Status: %s\n", passLabel(result.Passed))
		if len(result.Issues) > 0 {
			fmt.Fprintf(&sb, "Issues: %s\n", strings.Join(result.Issues, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Please provide 3-5 specific, actionable recommendations to improve data quality. Format as a numbered list.")
	return sb.String()
}

func buildUserPrompt(prompt string) string {
	var sb strings.Builder
	sb.WriteString("Context: You are part of a Data Quality Orchestration system that helps organizations analyze and improve their data quality.\n\n")
	fmt.Fprintf(&sb, "User Request: %s\n\n", prompt)
	sb.WriteString("Please provide a helpful, accurate, and actionable response. ")
	sb.WriteString("Keep your response concise but comprehensive, and format it in a user-friendly way.")
	return sb.String()
}

// parseRecommendations 将列表文本拆分为单条建议，列表前的引导语被忽略
func parseRecommendations(text string) []string {
	locs := listMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var recs []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		item := strings.Join(strings.Fields(text[loc[1]:end]), " ")
		if item != "" {
			recs = append(recs, item)
		}
	}
	return recs
}

func passLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
