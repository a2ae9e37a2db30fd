/*
 * @module service/orchestration/orchestrator
 * @description 数据质量编排器，串联并发分析、评分、顺序修复、复评与报告生成
 * @architecture 管道模式 - 分析与修复两阶段流水线
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow Idle -> Analyzing(pre) -> Scoring(pre) -> Rectifying -> Analyzing(post) -> Scoring(post) -> Summarizing -> Done | Failed
 * @rules 分析并发受 max_concurrent_workers 限制，前后两轮分析共用一次 timeout；模型调用各自受 timeout 约束；
 *        智能体失败或超时转为零分结果；修复按注册顺序串行执行，失败仅记录日志；
 *        取消只在修复步骤之间检查；摘要失败使用确定性摘要；事件发布失败不影响结果
 * @dependencies golang.org/x/sync/errgroup
 * @refs service/agents/agent.go, service/scoring/scoring_engine.go, service/summary/summarizer.go
 */

package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dataquality-service/service/agents"
	"dataquality-service/service/config"
	"dataquality-service/service/event"
	"dataquality-service/service/models"
	"dataquality-service/service/monitoring"
	"dataquality-service/service/scoring"
	"dataquality-service/service/summary"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNilDataset 数据集为空指针
	ErrNilDataset = agents.ErrNilDataset
	// ErrEmptyDataset 数据集没有数据行
	ErrEmptyDataset = errors.New("Dataset must contain data")

	errAgentPanic    = errors.New("智能体执行异常")
	errMissingResult = errors.New("智能体未返回结果")
)

// 分析失败类型，写入结果 details.error
const (
	failureTimeout   = "timeout"
	failureCancelled = "cancelled"
	failurePanic     = "panic"
	failureAnalysis  = "analysis_error"
)

// Orchestrator 数据质量编排器
type Orchestrator struct {
	agents     []agents.DataQualityAgent
	scorer     *scoring.ScoringEngine
	summarizer summary.Summarizer
	recorder   monitoring.Recorder
	publisher  event.ReportPublisher
	maxWorkers int
	timeout    time.Duration
}

// Option 编排器可选项
type Option func(*Orchestrator)

// WithAgents 替换默认智能体注册表
func WithAgents(list ...agents.DataQualityAgent) Option {
	return func(o *Orchestrator) {
		o.agents = list
	}
}

// WithSummarizer 设置摘要生成器
func WithSummarizer(s summary.Summarizer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.summarizer = s
		}
	}
}

// WithRecorder 设置指标记录器
func WithRecorder(r monitoring.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithPublisher 设置报告事件发布器
func WithPublisher(p event.ReportPublisher) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.publisher = p
		}
	}
}

// NewOrchestrator 创建编排器
func NewOrchestrator(cfg *config.QualityConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agents:     agents.DefaultAgents(cfg),
		scorer:     scoring.NewScoringEngine(cfg),
		summarizer: summary.FallbackSummarizer{},
		recorder:   monitoring.NopRecorder{},
		publisher:  event.NopPublisher{},
		maxWorkers: cfg.Processing.MaxConcurrentWorkers,
		timeout:    cfg.Timeout(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxWorkers <= 0 {
		o.maxWorkers = 1
	}
	return o
}

// Agents 已注册的智能体
func (o *Orchestrator) Agents() []agents.DataQualityAgent {
	return o.agents
}

// Scorer 评分引擎
func (o *Orchestrator) Scorer() *scoring.ScoringEngine {
	return o.scorer
}

// ProcessDataset 执行完整的分析、修复、复评流程并生成报告
func (o *Orchestrator) ProcessDataset(ctx context.Context, dataset *models.Dataset) (*models.DataQualityReport, error) {
	if err := validateDataset(dataset); err != nil {
		return nil, err
	}

	start := time.Now()
	slog.Info("开始数据质量处理",
		"dataset", dataset.Name,
		"rows", dataset.RowCount,
		"columns", dataset.ColumnCount,
		"agents", len(o.agents))

	// 前后两轮分析共用一个截止时间
	runCtx, cancel := o.withTimeout(ctx)
	defer cancel()

	preResults := o.analyze(runCtx, dataset)
	preScore := o.scorer.CalculateScore(preResults)
	o.recorder.ObserveRows(monitoring.PhasePre, dataset.RowCount)
	o.recorder.ObserveScore(monitoring.PhasePre, preScore.OverallScore)
	slog.Info("处理前评分完成", "dataset", dataset.Name, "score", preScore.OverallScore, "grade", preScore.Grade)

	rectified, err := o.RectifyDataset(ctx, dataset, preResults)
	if err != nil {
		o.recorder.ObserveRun(runStatus(err), time.Since(start))
		slog.Error("数据修复中断", "dataset", dataset.Name, "error", err)
		return nil, err
	}

	postResults := o.analyze(runCtx, rectified)
	postScore := o.scorer.CalculateScore(postResults)
	o.recorder.ObserveRows(monitoring.PhasePost, rectified.RowCount)
	o.recorder.ObserveScore(monitoring.PhasePost, postScore.OverallScore)
	slog.Info("处理后评分完成", "dataset", dataset.Name, "score", postScore.OverallScore, "grade", postScore.Grade)

	improvements := o.scorer.CalculateMetricImprovements(preScore, postScore)
	builder := models.NewReportBuilder(dataset.Name).
		PreProcessing(preScore, preResults).
		PostProcessing(postScore, postResults).
		RectificationActions(rectificationActions(preResults, improvements)).
		Metadata("metricImprovements", improvementsByName(improvements)).
		Metadata("rowsBefore", dataset.RowCount).
		Metadata("rowsAfter", rectified.RowCount).
		Metadata("datasetId", dataset.ID)

	builder.Summary(o.summarize(ctx, builder.Build()))
	report := builder.ProcessingTime(time.Since(start)).Build()

	if err := o.publisher.Publish(ctx, report); err != nil {
		slog.Warn("报告事件发布失败", "report_id", report.ID, "error", err)
	}

	o.recorder.ObserveRun(monitoring.StatusSuccess, time.Since(start))
	slog.Info("数据质量处理完成",
		"dataset", dataset.Name,
		"report_id", report.ID,
		"improvement", o.scorer.CalculateImprovement(preScore, postScore),
		"duration_ms", report.ProcessingTimeMs)

	return report, nil
}

// AnalyzeDataQuality 并发运行全部智能体，结果按注册顺序返回
func (o *Orchestrator) AnalyzeDataQuality(ctx context.Context, dataset *models.Dataset) ([]*models.DataQualityResult, error) {
	if err := validateDataset(dataset); err != nil {
		return nil, err
	}
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()
	return o.analyze(ctx, dataset), nil
}

// CalculateDataQualityScore 分析并计算总分
func (o *Orchestrator) CalculateDataQualityScore(ctx context.Context, dataset *models.Dataset) (*models.DataQualityScore, error) {
	results, err := o.AnalyzeDataQuality(ctx, dataset)
	if err != nil {
		return nil, err
	}
	return o.scorer.CalculateScore(results), nil
}

// GenerateRecommendations 生成改进建议，模型不可用时汇总失败维度的建议
func (o *Orchestrator) GenerateRecommendations(ctx context.Context, results []*models.DataQualityResult) []string {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	recs, err := o.summarizer.Recommend(ctx, results)
	if err != nil || len(recs) == 0 {
		if err != nil {
			slog.Warn("模型生成建议失败，使用默认建议", "error", err)
		}
		return summary.FallbackRecommendations(results)
	}
	return recs
}

// AnswerPrompt 回答用户问题，失败时返回固定提示
func (o *Orchestrator) AnswerPrompt(ctx context.Context, prompt string) string {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	answer, err := o.summarizer.Answer(ctx, prompt)
	if err != nil {
		slog.Warn("处理用户问题失败", "error", err)
		return summary.PromptFallbackMessage
	}
	return answer
}

// RectifyDataset 按注册顺序对未通过的维度依次修复，单步失败跳过，取消在步骤间检查
func (o *Orchestrator) RectifyDataset(ctx context.Context, dataset *models.Dataset, results []*models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	current := dataset
	for _, result := range results {
		if result == nil || result.Passed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("数据修复被取消: %w", err)
		}

		metric := string(result.Metric)
		agent := agents.FindAgent(o.agents, result.Metric)
		if agent == nil {
			o.recorder.ObserveRectification(metric, monitoring.StatusSkipped)
			slog.Debug("无可处理该维度的智能体", "metric", metric)
			continue
		}

		next, err := rectifyWithAgent(agent, current, result)
		if err != nil {
			o.recorder.ObserveRectification(metric, monitoring.StatusFailed)
			slog.Error("数据修复失败，跳过该维度",
				"agent", agent.GetAgentName(),
				"metric", metric,
				"error", err)
			continue
		}

		o.recorder.ObserveRectification(metric, monitoring.StatusSuccess)
		slog.Debug("数据修复完成", "agent", agent.GetAgentName(), "rows", next.RowCount)
		current = next
	}
	return current, nil
}

// withTimeout 按配置的处理超时派生上下文，未配置时仅可取消
func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

// analyze 以有限并发运行智能体，截止时间由调用方设置
func (o *Orchestrator) analyze(ctx context.Context, dataset *models.Dataset) []*models.DataQualityResult {
	results := make([]*models.DataQualityResult, len(o.agents))
	g := new(errgroup.Group)
	g.SetLimit(o.maxWorkers)

	for i, agent := range o.agents {
		g.Go(func() error {
			results[i] = o.analyzeWithAgent(ctx, agent, dataset)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type analysisOutcome struct {
	result *models.DataQualityResult
	err    error
}

func (o *Orchestrator) analyzeWithAgent(ctx context.Context, agent agents.DataQualityAgent, dataset *models.Dataset) *models.DataQualityResult {
	metric := agent.GetMetric()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return o.failedAnalysis(agent, err, start)
	}

	done := make(chan analysisOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analysisOutcome{err: fmt.Errorf("%w: %v", errAgentPanic, r)}
			}
		}()
		result, err := agent.Analyze(dataset)
		if err == nil && result == nil {
			err = errMissingResult
		}
		done <- analysisOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return o.failedAnalysis(agent, out.err, start)
		}
		o.recorder.ObserveAgent(string(metric), monitoring.StatusSuccess, time.Since(start))
		return out.result
	case <-ctx.Done():
		return o.failedAnalysis(agent, ctx.Err(), start)
	}
}

func (o *Orchestrator) failedAnalysis(agent agents.DataQualityAgent, err error, start time.Time) *models.DataQualityResult {
	failure := classifyFailure(err)
	o.recorder.ObserveAgent(string(agent.GetMetric()), recorderStatus(failure), time.Since(start))
	slog.Error("智能体分析失败",
		"agent", agent.GetAgentName(),
		"metric", agent.GetMetric(),
		"failure", failure,
		"error", err)
	return errorResult(agent.GetMetric(), err.Error(), failure)
}

// errorResult 分析失败时的零分结果
func errorResult(metric models.DataQualityMetric, message, failure string) *models.DataQualityResult {
	result := models.NewDataQualityResult(metric, 0, 0)
	result.Passed = false
	result.AddIssue("Analysis failed: " + message)
	result.AddRecommendation("Review data format and try again")
	result.AddDetail("error", failure)
	return result
}

func rectifyWithAgent(agent agents.DataQualityAgent, dataset *models.Dataset, result *models.DataQualityResult) (rectified *models.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			rectified = nil
			err = fmt.Errorf("%w: %v", errAgentPanic, r)
		}
	}()

	rectified, err = agent.Rectify(dataset, result)
	if err == nil && rectified == nil {
		err = errMissingResult
	}
	return rectified, err
}

func (o *Orchestrator) summarize(ctx context.Context, report *models.DataQualityReport) string {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	text, err := o.summarizer.Summarize(ctx, report)
	if err != nil || text == "" {
		if err != nil {
			slog.Warn("生成报告摘要失败，使用默认摘要", "report_id", report.ID, "error", err)
		}
		return summary.FallbackSummary(report)
	}
	return text
}

// rectificationActions 按注册顺序列出评分提升的维度
func rectificationActions(results []*models.DataQualityResult, improvements map[models.DataQualityMetric]float64) []string {
	var actions []string
	for _, result := range results {
		if result == nil {
			continue
		}
		if delta, ok := improvements[result.Metric]; ok && delta > 0 {
			actions = append(actions, fmt.Sprintf("Improved %s by %.1f percentage points", result.Metric.DisplayName(), delta*100))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, "Applied automated data cleansing; no metric score improved")
	}
	return actions
}

func improvementsByName(improvements map[models.DataQualityMetric]float64) map[string]float64 {
	named := make(map[string]float64, len(improvements))
	for metric, delta := range improvements {
		named[string(metric)] = delta
	}
	return named
}

func validateDataset(dataset *models.Dataset) error {
	if dataset == nil {
		return ErrNilDataset
	}
	if dataset.IsEmpty() {
		return ErrEmptyDataset
	}
	return nil
}

func classifyFailure(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return failureTimeout
	case errors.Is(err, context.Canceled):
		return failureCancelled
	case errors.Is(err, errAgentPanic):
		return failurePanic
	default:
		return failureAnalysis
	}
}

func recorderStatus(failure string) string {
	switch failure {
	case failureTimeout:
		return monitoring.StatusTimeout
	case failureCancelled:
		return monitoring.StatusCancelled
	default:
		return monitoring.StatusFailed
	}
}

func runStatus(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return monitoring.StatusTimeout
	case errors.Is(err, context.Canceled):
		return monitoring.StatusCancelled
	default:
		return monitoring.StatusFailed
	}
}
