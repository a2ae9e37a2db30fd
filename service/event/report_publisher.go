/*
 * @module service/event/report_publisher
 * @description 质量报告完成事件发布，处理完成后将报告摘要写入 Kafka 供下游订阅
 * @architecture 事件驱动架构 - 消息发布
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 报告组装完成 -> 构建事件 -> 序列化 -> 写入Kafka
 * @rules 发布失败只记录日志，不影响处理结果；消息键为报告ID
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/orchestration/orchestrator.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/segmentio/kafka-go"
)

// EventTypeReportCompleted 报告完成事件类型
const EventTypeReportCompleted = "data_quality.report_completed"

// ReportPublisher 报告事件发布器
type ReportPublisher interface {
	Publish(ctx context.Context, report *models.DataQualityReport) error
	Close() error
}

// ReportCompletedEvent 报告完成事件
type ReportCompletedEvent struct {
	EventType            string                 `json:"eventType"`
	ReportID             string                 `json:"reportId"`
	DatasetName          string                 `json:"datasetName"`
	PreProcessingScore   float64                `json:"preProcessingScore"`
	PostProcessingScore  float64                `json:"postProcessingScore"`
	PreProcessingGrade   string                 `json:"preProcessingGrade"`
	PostProcessingGrade  string                 `json:"postProcessingGrade"`
	ImprovementPoints    float64                `json:"improvementPoints"`
	RectificationActions []string               `json:"rectificationActions"`
	FailedMetrics        []string               `json:"failedMetrics"`
	ProcessingTimeMs     int64                  `json:"processingTimeMs"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
	Timestamp            time.Time              `json:"timestamp"`
}

// NewReportCompletedEvent 由报告构建事件
func NewReportCompletedEvent(report *models.DataQualityReport) *ReportCompletedEvent {
	evt := &ReportCompletedEvent{
		EventType:            EventTypeReportCompleted,
		ReportID:             report.ID,
		DatasetName:          report.DatasetName,
		ImprovementPoints:    report.ImprovementPoints(),
		RectificationActions: report.RectificationActions,
		FailedMetrics:        []string{},
		ProcessingTimeMs:     report.ProcessingTimeMs,
		Metadata:             report.Metadata,
		Timestamp:            report.Timestamp,
	}
	if report.PreProcessingScore != nil {
		evt.PreProcessingScore = report.PreProcessingScore.OverallScore
		evt.PreProcessingGrade = report.PreProcessingScore.Grade
	}
	if report.PostProcessingScore != nil {
		evt.PostProcessingScore = report.PostProcessingScore.OverallScore
		evt.PostProcessingGrade = report.PostProcessingScore.Grade
	}
	for _, result := range report.Results {
		if result != nil && !result.Passed {
			evt.FailedMetrics = append(evt.FailedMetrics, string(result.Metric))
		}
	}
	return evt
}

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReportPublisher Kafka 报告事件发布器
type KafkaReportPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaReportPublisher 创建 Kafka 发布器
func NewKafkaReportPublisher(cfg config.KafkaConfig) (*KafkaReportPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("未配置Kafka broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("未配置Kafka topic")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	slog.Info("Kafka报告发布器初始化成功", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return newKafkaReportPublisher(writer, cfg.Topic), nil
}

func newKafkaReportPublisher(writer messageWriter, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{writer: writer, topic: topic}
}

// Publish 发布报告完成事件
func (p *KafkaReportPublisher) Publish(ctx context.Context, report *models.DataQualityReport) error {
	if report == nil {
		return fmt.Errorf("报告不能为空")
	}

	payload, err := json.Marshal(NewReportCompletedEvent(report))
	if err != nil {
		return fmt.Errorf("序列化报告事件失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(report.ID),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeReportCompleted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送报告事件失败: %w", err)
	}

	slog.Debug("报告事件已发送", "topic", p.topic, "report_id", report.ID)
	return nil
}

// Close 关闭生产者
func (p *KafkaReportPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher 未启用事件发布时使用
type NopPublisher struct{}

// Publish 不做任何事
func (NopPublisher) Publish(context.Context, *models.DataQualityReport) error { return nil }

// Close 不做任何事
func (NopPublisher) Close() error { return nil }
