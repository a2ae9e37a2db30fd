package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func buildReport() *models.DataQualityReport {
	failing := models.NewDataQualityResult(models.MetricUniqueness, 0.9, 0.98)
	passing := models.NewDataQualityResult(models.MetricCompleteness, 1.0, 0.95)
	return models.NewReportBuilder("employees").
		PreProcessing(models.NewDataQualityScore(0.8, nil), nil).
		PostProcessing(models.NewDataQualityScore(0.95, nil), []*models.DataQualityResult{passing, failing}).
		RectificationActions([]string{"Improved Completeness by 5.0 percentage points"}).
		Metadata("sourceFile", "employees.csv").
		Build()
}

// TestNewReportCompletedEvent 测试事件内容
func TestNewReportCompletedEvent(t *testing.T) {
	report := buildReport()
	evt := NewReportCompletedEvent(report)

	assert.Equal(t, EventTypeReportCompleted, evt.EventType)
	assert.Equal(t, report.ID, evt.ReportID)
	assert.Equal(t, "B", evt.PreProcessingGrade)
	assert.Equal(t, "A+", evt.PostProcessingGrade)
	assert.InDelta(t, 15.0, evt.ImprovementPoints, 1e-9)
	assert.Equal(t, []string{"UNIQUENESS"}, evt.FailedMetrics)
	assert.Equal(t, "employees.csv", evt.Metadata["sourceFile"])
}

// TestKafkaReportPublisher_Publish 测试写入消息
func TestKafkaReportPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newKafkaReportPublisher(writer, "reports")
	report := buildReport()

	require.NoError(t, publisher.Publish(context.Background(), report))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, report.ID, string(msg.Key))
	var decoded ReportCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "employees", decoded.DatasetName)

	assert.Error(t, publisher.Publish(context.Background(), nil))

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

// TestKafkaReportPublisher_WriteError 测试写入失败返回错误
func TestKafkaReportPublisher_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := newKafkaReportPublisher(writer, "reports")

	err := publisher.Publish(context.Background(), buildReport())
	assert.ErrorContains(t, err, "broker down")
}

// TestNewKafkaReportPublisher_Validation 测试配置校验
func TestNewKafkaReportPublisher_Validation(t *testing.T) {
	_, err := NewKafkaReportPublisher(config.KafkaConfig{Topic: "reports"})
	assert.Error(t, err)

	_, err = NewKafkaReportPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	publisher, err := NewKafkaReportPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "reports"})
	require.NoError(t, err)
	assert.NoError(t, publisher.Close())
}
