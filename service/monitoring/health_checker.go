/*
 * @module service/monitoring/health_checker
 * @description 依赖健康检查器，探测 Redis、数据库与数据目录等外部依赖并计算健康评分
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 注册探针 -> 并行检测 -> 评分计算 -> 汇总状态
 * @rules 单个探针超时按不可用处理；无依赖时视为健康
 * @dependencies context, sync
 * @refs service/init.go, api/controllers/health_controller.go
 */

package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// 健康状态
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// Probe 依赖探针，返回 nil 表示可用
type Probe func(ctx context.Context) error

// HealthChecker 依赖健康检查器
type HealthChecker struct {
	timeout time.Duration
	mutex   sync.RWMutex
	checks  map[string]dependencyCheck
}

type dependencyCheck struct {
	depType string
	probe   Probe
}

// HealthStatus 整体健康状态
type HealthStatus struct {
	Overall      string                       `json:"overall"` // healthy, warning, critical
	Score        int                          `json:"score"`   // 健康评分 0-100
	Timestamp    time.Time                    `json:"timestamp"`
	Dependencies map[string]*DependencyHealth `json:"dependencies"`
	Issues       []string                     `json:"issues"`
}

// DependencyHealth 依赖服务健康状态
type DependencyHealth struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"` // database, cache, message_queue, filesystem
	Status       string        `json:"status"`
	Available    bool          `json:"available"`
	ResponseTime time.Duration `json:"response_time"`
	LastChecked  time.Time     `json:"last_checked"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// NewHealthChecker 创建健康检查器，timeout 为单个探针的超时
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthChecker{
		timeout: timeout,
		checks:  make(map[string]dependencyCheck),
	}
}

// AddCheck 注册依赖探针，同名覆盖
func (h *HealthChecker) AddCheck(name, depType string, probe Probe) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.checks[name] = dependencyCheck{depType: depType, probe: probe}
}

// Check 并行执行全部探针
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	h.mutex.RLock()
	checks := make(map[string]dependencyCheck, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mutex.RUnlock()

	status := &HealthStatus{
		Timestamp:    time.Now(),
		Dependencies: make(map[string]*DependencyHealth, len(checks)),
		Issues:       []string{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, c := range checks {
		wg.Add(1)
		go func(name string, c dependencyCheck) {
			defer wg.Done()
			dep := h.runProbe(ctx, name, c)
			mu.Lock()
			status.Dependencies[name] = dep
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	h.calculateOverallHealth(status)
	return status
}

func (h *HealthChecker) runProbe(ctx context.Context, name string, c dependencyCheck) *DependencyHealth {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	dep := &DependencyHealth{
		Name:        name,
		Type:        c.depType,
		LastChecked: start,
	}
	if err := c.probe(probeCtx); err != nil {
		dep.Status = HealthCritical
		dep.ErrorMessage = err.Error()
	} else {
		dep.Status = HealthHealthy
		dep.Available = true
	}
	dep.ResponseTime = time.Since(start)
	return dep
}

// calculateOverallHealth 按可用依赖占比计分
func (h *HealthChecker) calculateOverallHealth(status *HealthStatus) {
	if len(status.Dependencies) == 0 {
		status.Score = 100
		status.Overall = HealthHealthy
		return
	}

	available := 0
	names := make([]string, 0, len(status.Dependencies))
	for name := range status.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dep := status.Dependencies[name]
		if dep.Available {
			available++
			continue
		}
		status.Issues = append(status.Issues, name+": "+dep.ErrorMessage)
	}

	status.Score = available * 100 / len(status.Dependencies)
	status.Overall = getStatusFromScore(status.Score)
}

func getStatusFromScore(score int) string {
	switch {
	case score >= 100:
		return HealthHealthy
	case score > 0:
		return HealthWarning
	default:
		return HealthCritical
	}
}
