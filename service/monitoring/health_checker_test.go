package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealthChecker_Check 测试依赖健康评分
func TestHealthChecker_Check(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name            string
		probes          map[string]Probe
		expectedOverall string
		expectedScore   int
		expectedIssues  int
	}{
		{name: "无依赖", probes: nil, expectedOverall: HealthHealthy, expectedScore: 100},
		{name: "全部可用", probes: map[string]Probe{"redis": ok, "database": ok}, expectedOverall: HealthHealthy, expectedScore: 100},
		{name: "部分可用", probes: map[string]Probe{"redis": fail, "database": ok}, expectedOverall: HealthWarning, expectedScore: 50, expectedIssues: 1},
		{name: "全部不可用", probes: map[string]Probe{"redis": fail}, expectedOverall: HealthCritical, expectedScore: 0, expectedIssues: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(time.Second)
			for name, probe := range tt.probes {
				checker.AddCheck(name, "test", probe)
			}

			status := checker.Check(context.Background())

			assert.Equal(t, tt.expectedOverall, status.Overall)
			assert.Equal(t, tt.expectedScore, status.Score)
			assert.Len(t, status.Issues, tt.expectedIssues)
			assert.Len(t, status.Dependencies, len(tt.probes))
		})
	}
}

// TestHealthChecker_ProbeTimeout 探针超时按不可用处理
func TestHealthChecker_ProbeTimeout(t *testing.T) {
	checker := NewHealthChecker(20 * time.Millisecond)
	checker.AddCheck("slow", "cache", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.Check(context.Background())

	dep := status.Dependencies["slow"]
	require.NotNil(t, dep)
	assert.False(t, dep.Available)
	assert.Equal(t, HealthCritical, dep.Status)
	assert.Contains(t, dep.ErrorMessage, "deadline exceeded")
}
