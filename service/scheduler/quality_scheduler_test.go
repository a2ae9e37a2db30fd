package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dataquality-service/service/config"
	"dataquality-service/service/datasource"
	"dataquality-service/service/distributed_lock"
	"dataquality-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	files    []string
	failLoad map[string]bool
}

func (s *stubSource) List(context.Context) ([]datasource.SourceEntry, error) {
	entries := make([]datasource.SourceEntry, 0, len(s.files))
	for _, f := range s.files {
		entries = append(entries, datasource.SourceEntry{Name: f, Type: "file"})
	}
	return entries, nil
}

func (s *stubSource) Load(_ context.Context, name string) (*models.Dataset, error) {
	if s.failLoad[name] {
		return nil, datasource.ErrNotFound
	}
	return models.NewDataset("", name, []string{"a"}, []map[string]interface{}{{"a": 1}}), nil
}

type stubProcessor struct {
	mu       sync.Mutex
	calls    []string
	failWith error
}

func (p *stubProcessor) ProcessDataset(_ context.Context, ds *models.Dataset) (*models.DataQualityReport, error) {
	p.mu.Lock()
	p.calls = append(p.calls, ds.Name)
	p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	return models.NewReportBuilder(ds.Name).
		PreProcessing(models.NewDataQualityScore(0.8, nil), nil).
		PostProcessing(models.NewDataQualityScore(0.9, nil), nil).
		Build(), nil
}

// TestQualityScheduler_RunOnce 测试立即执行
func TestQualityScheduler_RunOnce(t *testing.T) {
	source := &stubSource{files: []string{"a.csv", "b.csv", "c.csv"}, failLoad: map[string]bool{"b.csv": true}}
	processor := &stubProcessor{}
	lock := distributed_lock.NewLocalLock()

	_, err := lock.TryLock(context.Background(), lockKeyPrefix+"c.csv", time.Minute)
	require.NoError(t, err)

	qs := NewQualityScheduler(config.SchedulerConfig{Cron: "0 0 2 * * *"}, processor, source, lock)
	records := qs.RunOnce(context.Background())
	require.Len(t, records, 3)

	assert.Equal(t, RunStatusSuccess, records[0].Status)
	assert.InDelta(t, 0.9, records[0].PostScore, 1e-9)
	assert.NotEmpty(t, records[0].ReportID)

	assert.Equal(t, RunStatusFailed, records[1].Status)
	assert.Contains(t, records[1].Error, "加载文件失败")

	assert.Equal(t, RunStatusSkipped, records[2].Status, "被其他实例持有锁时跳过")
	assert.Equal(t, []string{"a.csv"}, processor.calls)

	runs := qs.LastRuns()
	assert.Len(t, runs, 3)
	assert.Equal(t, RunStatusSuccess, runs["a.csv"].Status)

	held, _ := lock.IsLocked(context.Background(), lockKeyPrefix+"a.csv")
	assert.False(t, held, "执行后释放锁")
}

// TestQualityScheduler_ConfiguredFiles 测试只处理配置的文件
func TestQualityScheduler_ConfiguredFiles(t *testing.T) {
	source := &stubSource{files: []string{"a.csv", "b.csv"}}
	processor := &stubProcessor{failWith: errors.New("boom")}

	qs := NewQualityScheduler(config.SchedulerConfig{Cron: "@every 1h", Files: []string{"b.csv"}}, processor, source, nil)
	records := qs.RunOnce(context.Background())

	require.Len(t, records, 1)
	assert.Equal(t, "b.csv", records[0].File)
	assert.Equal(t, RunStatusFailed, records[0].Status)
	assert.Contains(t, records[0].Error, "boom")
}

// TestQualityScheduler_StartStop 测试启动与停止
func TestQualityScheduler_StartStop(t *testing.T) {
	qs := NewQualityScheduler(config.SchedulerConfig{Cron: "0 0 2 * * *"}, &stubProcessor{}, &stubSource{}, nil)

	assert.True(t, qs.NextRun().IsZero())
	require.NoError(t, qs.Start())
	assert.Error(t, qs.Start(), "重复启动应报错")
	assert.False(t, qs.NextRun().IsZero())

	qs.Stop()
	qs.Stop()
	assert.True(t, qs.NextRun().IsZero())
}

// TestQualityScheduler_InvalidCron 测试非法表达式
func TestQualityScheduler_InvalidCron(t *testing.T) {
	qs := NewQualityScheduler(config.SchedulerConfig{Cron: "not a cron"}, &stubProcessor{}, &stubSource{}, nil)
	assert.Error(t, qs.Start())
}

// TestQualityScheduler_Cancelled 测试取消后不再处理
func TestQualityScheduler_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := &stubProcessor{}
	qs := NewQualityScheduler(config.SchedulerConfig{Files: []string{"a.csv"}}, processor, &stubSource{}, nil)
	assert.Empty(t, qs.RunOnce(ctx))
	assert.Empty(t, processor.calls)
}
