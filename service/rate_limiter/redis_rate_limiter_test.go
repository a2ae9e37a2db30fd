/*
 * @module service/rate_limiter/redis_rate_limiter_test
 * @description Redis限流器单元测试，需要Redis的用例在不可用时跳过
 * @architecture 测试层
 * @documentReference ai_docs/data_quality_pipeline.md
 */

package rate_limiter

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"dataquality-service/service/config"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis 连接测试Redis，不可用时跳过
func setupTestRedis(t *testing.T) *RedisRateLimiter {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis不可用，跳过: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client)
}

func uniqueRule(t *testing.T, max, window int) RateLimitRule {
	return RateLimitRule{
		Scope:       ScopeClient,
		TargetID:    fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano()),
		Endpoint:    "prompt",
		TimeWindow:  window,
		MaxRequests: max,
	}
}

// TestBuildRateLimitKey 测试限流Key构造
func TestBuildRateLimitKey(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		rule     RateLimitRule
		expected string
	}{
		{
			name:     "客户端规则",
			rule:     RateLimitRule{Scope: ScopeClient, TargetID: "10.0.0.1", Endpoint: "prompt", TimeWindow: 60},
			expected: "dataquality:rate_limit:client:prompt:10.0.0.1:28333333",
		},
		{
			name:     "全局规则忽略目标",
			rule:     RateLimitRule{Scope: ScopeGlobal, TargetID: "ignored", Endpoint: "prompt", TimeWindow: 100},
			expected: "dataquality:rate_limit:global:prompt:17000000",
		},
		{
			name:     "窗口为0按1秒处理",
			rule:     RateLimitRule{Scope: ScopeClient, TargetID: "c", Endpoint: "e", TimeWindow: 0},
			expected: "dataquality:rate_limit:client:e:c:1700000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildRateLimitKey(tt.rule, now))
		})
	}
}

// TestParseScriptResult 测试脚本结果解析
func TestParseScriptResult(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rule := RateLimitRule{Scope: ScopeClient, MaxRequests: 5}

	result, err := parseScriptResult([]interface{}{int64(1), int64(2), int64(5), int64(30)}, rule, now)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 3, result.Remaining)
	assert.Equal(t, now.Unix()+30, result.ResetAt)

	result, err = parseScriptResult([]interface{}{int64(0), int64(7), int64(5), int64(10)}, rule, now)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, "超过客户端限流限制", result.Message)

	_, err = parseScriptResult("OK", rule, now)
	assert.Error(t, err)
	_, err = parseScriptResult([]interface{}{"x", int64(1), int64(1), int64(1)}, rule, now)
	assert.Error(t, err)
}

// TestSortRulesByPriority 测试规则优先级排序
func TestSortRulesByPriority(t *testing.T) {
	rules := []RateLimitRule{
		{Scope: ScopeGlobal, MaxRequests: 1000},
		{Scope: ScopeClient, TargetID: "c1", MaxRequests: 10},
	}

	sorted := sortRulesByPriority(rules)
	assert.Equal(t, ScopeClient, sorted[0].Scope)
	assert.Equal(t, ScopeGlobal, sorted[1].Scope)
	assert.Equal(t, ScopeGlobal, rules[0].Scope, "不应修改入参")
}

// TestRulesFor 测试按配置生成规则
func TestRulesFor(t *testing.T) {
	rules := RulesFor(config.RedisConfig{RateLimit: 30, WindowSeconds: 60}, "prompt", "1.2.3.4")
	require.Len(t, rules, 1)
	assert.Equal(t, ScopeClient, rules[0].Scope)
	assert.Equal(t, 30, rules[0].MaxRequests)

	assert.Empty(t, RulesFor(config.RedisConfig{RateLimit: 0, WindowSeconds: 60}, "prompt", "x"))
}

// TestCheckRateLimit_NoRules 测试没有限流规则的情况
func TestCheckRateLimit_NoRules(t *testing.T) {
	limiter := NewRedisRateLimiter(nil)

	result, err := limiter.CheckRateLimit(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, ScopeNone, result.Scope)
	assert.Equal(t, -1, result.Limit)
}

// TestCheckRateLimit_RateLimited 测试触发限流
func TestCheckRateLimit_RateLimited(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	rule := uniqueRule(t, 3, 60)
	defer limiter.Reset(ctx, rule)

	for i := 0; i < 3; i++ {
		result, err := limiter.CheckRateLimit(ctx, []RateLimitRule{rule})
		require.NoError(t, err)
		assert.True(t, result.Allowed, "第%d次请求应该被允许", i+1)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result, err := limiter.CheckRateLimit(ctx, []RateLimitRule{rule})
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, ScopeClient, result.Scope)
}

// TestCheckRateLimit_Concurrent 并发请求计数准确
func TestCheckRateLimit_Concurrent(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	rule := uniqueRule(t, 50, 60)
	defer limiter.Reset(ctx, rule)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := limiter.CheckRateLimit(ctx, []RateLimitRule{rule})
			if err != nil {
				return
			}
			mu.Lock()
			if result.Allowed {
				allowed++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
