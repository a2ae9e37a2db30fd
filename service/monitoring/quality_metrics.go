/*
 * @module service/monitoring/quality_metrics
 * @description 数据质量处理指标采集，基于 Prometheus 暴露运行次数、耗时、智能体状态与评分分布
 * @architecture 分层架构 - 监控层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 编排器埋点 -> 指标累加 -> /metrics 拉取
 * @rules 标签基数受控，不使用数据集名称等高基数标签
 * @dependencies github.com/prometheus/client_golang
 * @refs service/orchestration/orchestrator.go, main.go
 */

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dataquality"

// 运行与步骤状态
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
	StatusCancelled = "cancelled"
	StatusSkipped   = "skipped"
)

// 评分阶段
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// Recorder 质量处理指标记录器
type Recorder interface {
	// ObserveRun 记录一次完整处理
	ObserveRun(status string, duration time.Duration)
	// ObserveAgent 记录一次智能体分析
	ObserveAgent(metric, status string, duration time.Duration)
	// ObserveRectification 记录一次修复步骤
	ObserveRectification(metric, status string)
	// ObserveScore 记录总分
	ObserveScore(phase string, score float64)
	// ObserveRows 记录处理行数
	ObserveRows(phase string, rows int)
}

// PrometheusRecorder Prometheus 指标记录器
type PrometheusRecorder struct {
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	agentRuns      *prometheus.CounterVec
	agentDuration  *prometheus.HistogramVec
	rectifications *prometheus.CounterVec
	scores         *prometheus.HistogramVec
	rows           *prometheus.GaugeVec
}

// NewPrometheusRecorder 创建并注册指标
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "数据质量处理次数",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "数据质量处理耗时",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"status"}),
		agentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_analyses_total",
			Help:      "智能体分析次数",
		}, []string{"metric", "status"}),
		agentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_analysis_duration_seconds",
			Help:      "智能体分析耗时",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"metric"}),
		rectifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rectifications_total",
			Help:      "修复步骤次数",
		}, []string{"metric", "status"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "数据质量总分分布",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"phase"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_rows",
			Help:      "最近一次处理的数据行数",
		}, []string{"phase"}),
	}

	reg.MustRegister(r.runs, r.runDuration, r.agentRuns, r.agentDuration, r.rectifications, r.scores, r.rows)
	return r
}

// ObserveRun 记录一次完整处理
func (r *PrometheusRecorder) ObserveRun(status string, duration time.Duration) {
	r.runs.WithLabelValues(status).Inc()
	r.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveAgent 记录一次智能体分析
func (r *PrometheusRecorder) ObserveAgent(metric, status string, duration time.Duration) {
	r.agentRuns.WithLabelValues(metric, status).Inc()
	r.agentDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

// ObserveRectification 记录一次修复步骤
func (r *PrometheusRecorder) ObserveRectification(metric, status string) {
	r.rectifications.WithLabelValues(metric, status).Inc()
}

// ObserveScore 记录总分
func (r *PrometheusRecorder) ObserveScore(phase string, score float64) {
	r.scores.WithLabelValues(phase).Observe(score)
}

// ObserveRows 记录处理行数
func (r *PrometheusRecorder) ObserveRows(phase string, rows int) {
	r.rows.WithLabelValues(phase).Set(float64(rows))
}

// NopRecorder 不记录任何指标
type NopRecorder struct{}

func (NopRecorder) ObserveRun(string, time.Duration)           {}
func (NopRecorder) ObserveAgent(string, string, time.Duration) {}
func (NopRecorder) ObserveRectification(string, string)        {}
func (NopRecorder) ObserveScore(string, float64)               {}
func (NopRecorder) ObserveRows(string, int)                    {}
