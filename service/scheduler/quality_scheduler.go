/*
 * @module service/scheduler/quality_scheduler
 * @description 定时数据质量检查调度器，按 cron 表达式对配置的文件执行完整处理流程
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 启动调度器 -> 定时触发 -> 逐个文件加锁 -> 加载 -> 处理 -> 记录结果 -> 释放锁
 * @rules cron 表达式包含秒字段；同一文件同一时刻只在一个实例上执行；
 *        未配置文件列表时处理数据目录下全部支持的文件；单个文件失败不影响其他文件
 * @dependencies github.com/robfig/cron/v3, service/distributed_lock
 * @refs service/orchestration/orchestrator.go, service/datasource/file_source.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dataquality-service/service/config"
	"dataquality-service/service/datasource"
	"dataquality-service/service/distributed_lock"
	"dataquality-service/service/models"

	"github.com/robfig/cron/v3"
)

const (
	defaultLockTTL = 10 * time.Minute
	lockKeyPrefix  = "quality_check:"
)

// 单个文件的执行状态
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusSkipped = "skipped"
)

// DatasetProcessor 数据集处理器
type DatasetProcessor interface {
	ProcessDataset(ctx context.Context, dataset *models.Dataset) (*models.DataQualityReport, error)
}

// RunRecord 单个文件的最近一次执行记录
type RunRecord struct {
	File       string    `json:"file"`
	Status     string    `json:"status"`
	ReportID   string    `json:"reportId,omitempty"`
	PreScore   float64   `json:"preScore,omitempty"`
	PostScore  float64   `json:"postScore,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
}

// QualityScheduler 定时质量检查调度器
type QualityScheduler struct {
	processor DatasetProcessor
	source    datasource.DatasetSource
	executor  *distributed_lock.LockExecutor
	spec      string
	files     []string
	lockTTL   time.Duration

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	started bool
	entryID cron.EntryID
	runs    map[string]RunRecord
}

// NewQualityScheduler 创建调度器，lock 为空时使用进程内锁
func NewQualityScheduler(cfg config.SchedulerConfig, processor DatasetProcessor, source datasource.DatasetSource, lock distributed_lock.DistributedLock) *QualityScheduler {
	if lock == nil {
		lock = distributed_lock.NewLocalLock()
	}
	ttl := time.Duration(cfg.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &QualityScheduler{
		processor: processor,
		source:    source,
		executor:  distributed_lock.NewLockExecutor(lock),
		spec:      cfg.Cron,
		files:     append([]string(nil), cfg.Files...),
		lockTTL:   ttl,
		cron:      cron.New(cron.WithSeconds()),
		ctx:       ctx,
		cancel:    cancel,
		runs:      make(map[string]RunRecord),
	}
}

// Start 注册定时任务并启动调度器
func (qs *QualityScheduler) Start() error {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.started {
		return fmt.Errorf("调度器已经启动")
	}

	entryID, err := qs.cron.AddFunc(qs.spec, func() {
		qs.RunOnce(qs.ctx)
	})
	if err != nil {
		return fmt.Errorf("无效的cron表达式 %q: %w", qs.spec, err)
	}
	qs.entryID = entryID
	qs.cron.Start()
	qs.started = true

	slog.Info("定时质量检查调度器启动完成", "cron", qs.spec, "files", qs.files)
	return nil
}

// Stop 停止调度器并等待正在执行的任务结束
func (qs *QualityScheduler) Stop() {
	qs.mu.Lock()
	if !qs.started {
		qs.mu.Unlock()
		return
	}
	qs.started = false
	qs.mu.Unlock()

	slog.Info("停止定时质量检查调度器")
	qs.cancel()
	<-qs.cron.Stop().Done()
	slog.Info("定时质量检查调度器已停止")
}

// NextRun 下一次触发时间，未启动时为零值
func (qs *QualityScheduler) NextRun() time.Time {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	if !qs.started {
		return time.Time{}
	}
	return qs.cron.Entry(qs.entryID).Next
}

// RunOnce 立即对全部目标文件执行一次检查
func (qs *QualityScheduler) RunOnce(ctx context.Context) []RunRecord {
	files, err := qs.targetFiles(ctx)
	if err != nil {
		slog.Error("获取待检查文件失败", "error", err)
		return nil
	}

	records := make([]RunRecord, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		record := qs.runFile(ctx, file)
		records = append(records, record)

		qs.mu.Lock()
		qs.runs[file] = record
		qs.mu.Unlock()
	}

	slog.Info("定时质量检查完成", "files", len(records))
	return records
}

// LastRuns 每个文件最近一次执行记录
func (qs *QualityScheduler) LastRuns() map[string]RunRecord {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	runs := make(map[string]RunRecord, len(qs.runs))
	for k, v := range qs.runs {
		runs[k] = v
	}
	return runs
}

func (qs *QualityScheduler) targetFiles(ctx context.Context) ([]string, error) {
	if len(qs.files) > 0 {
		return qs.files, nil
	}
	entries, err := qs.source.List(ctx)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name)
	}
	return files, nil
}

func (qs *QualityScheduler) runFile(ctx context.Context, file string) RunRecord {
	record := RunRecord{File: file, Status: RunStatusSkipped, StartedAt: time.Now()}

	ran, err := qs.executor.ExecuteWithLockAndRefresh(ctx, lockKeyPrefix+file, qs.lockTTL, qs.lockTTL/3, func(ctx context.Context) error {
		dataset, err := qs.source.Load(ctx, file)
		if err != nil {
			return fmt.Errorf("加载文件失败: %w", err)
		}
		report, err := qs.processor.ProcessDataset(ctx, dataset)
		if err != nil {
			return fmt.Errorf("处理数据集失败: %w", err)
		}

		record.ReportID = report.ID
		if report.PreProcessingScore != nil {
			record.PreScore = report.PreProcessingScore.OverallScore
		}
		if report.PostProcessingScore != nil {
			record.PostScore = report.PostProcessingScore.OverallScore
		}
		return nil
	})
	record.DurationMs = time.Since(record.StartedAt).Milliseconds()

	switch {
	case err != nil:
		record.Status = RunStatusFailed
		record.Error = err.Error()
		slog.Error("定时质量检查失败", "file", file, "error", err)
	case ran:
		record.Status = RunStatusSuccess
		slog.Info("定时质量检查成功", "file", file, "report_id", record.ReportID, "post_score", record.PostScore)
	default:
		slog.Info("文件正在其他实例上检查，跳过", "file", file)
	}
	return record
}
