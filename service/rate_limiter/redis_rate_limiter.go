/*
 * @module service/rate_limiter/redis_rate_limiter
 * @description 基于Redis的固定窗口限流，保护调用大模型的接口
 * @architecture 工具层 - 提供分布式限流能力
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 生成规则 -> 按优先级检查 -> Redis原子计数 -> 判断是否超限
 * @rules 使用Lua脚本保证 INCR 与 EXPIRE 原子执行；客户端规则优先于全局规则
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/middleware/rate_limit.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"dataquality-service/service/config"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cast"
)

// 限流范围
const (
	ScopeClient = "client"
	ScopeGlobal = "global"
	ScopeNone   = "none"
)

const keyPrefix = "dataquality:rate_limit"

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed   bool   `json:"allowed"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   int64  `json:"reset_at"`
	Scope     string `json:"scope"`
	Message   string `json:"message"`
}

// RateLimitRule 限流规则
type RateLimitRule struct {
	Scope       string // client/global
	TargetID    string // 客户端标识，全局时为空
	Endpoint    string // 受保护的接口名
	TimeWindow  int    // 时间窗口（秒）
	MaxRequests int    // 最大请求数
}

// Limiter 限流器
type Limiter interface {
	CheckRateLimit(ctx context.Context, rules []RateLimitRule) (*RateLimitResult, error)
}

var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= max_requests then
		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end
		return {0, current, max_requests, ttl}
	end

	local new_count = redis.call('INCR', key)
	if new_count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end
	return {1, new_count, max_requests, ttl}
`)

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRateLimiter 基于已有客户端创建限流器
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, now: time.Now}
}

// RulesFor 按配置生成某客户端访问某接口的规则
func RulesFor(cfg config.RedisConfig, endpoint, clientID string) []RateLimitRule {
	if cfg.RateLimit <= 0 || cfg.WindowSeconds <= 0 {
		return nil
	}
	return []RateLimitRule{
		{
			Scope:       ScopeClient,
			TargetID:    clientID,
			Endpoint:    endpoint,
			TimeWindow:  cfg.WindowSeconds,
			MaxRequests: cfg.RateLimit,
		},
	}
}

// CheckRateLimit 按优先级依次检查，任一规则超限即拒绝
func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, rules []RateLimitRule) (*RateLimitResult, error) {
	if len(rules) == 0 {
		return &RateLimitResult{
			Allowed:   true,
			Limit:     -1,
			Remaining: -1,
			Scope:     ScopeNone,
			Message:   "无限流规则",
		}, nil
	}

	var last *RateLimitResult
	for _, rule := range sortRulesByPriority(rules) {
		result, err := r.checkSingleRule(ctx, rule)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			slog.Warn("请求被限流", "scope", rule.Scope, "target", rule.TargetID, "endpoint", rule.Endpoint)
			return result, nil
		}
		last = result
	}
	return last, nil
}

func (r *RedisRateLimiter) checkSingleRule(ctx context.Context, rule RateLimitRule) (*RateLimitResult, error) {
	now := r.now()
	key := buildRateLimitKey(rule, now)

	raw, err := fixedWindowScript.Run(ctx, r.client, []string{key}, rule.MaxRequests, rule.TimeWindow).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}
	return parseScriptResult(raw, rule, now)
}

// Reset 清除规则当前窗口的计数
func (r *RedisRateLimiter) Reset(ctx context.Context, rule RateLimitRule) error {
	return r.client.Del(ctx, buildRateLimitKey(rule, r.now())).Err()
}

// buildRateLimitKey 键包含窗口序号，窗口切换后自然失效
func buildRateLimitKey(rule RateLimitRule, now time.Time) string {
	window := rule.TimeWindow
	if window <= 0 {
		window = 1
	}
	currentWindow := now.Unix() / int64(window)

	if rule.Scope == ScopeGlobal {
		return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, rule.Scope, rule.Endpoint, currentWindow)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%d", keyPrefix, rule.Scope, rule.Endpoint, rule.TargetID, currentWindow)
}

// parseScriptResult 解析脚本返回的 {allowed, count, limit, ttl}
func parseScriptResult(raw interface{}, rule RateLimitRule, now time.Time) (*RateLimitResult, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("限流脚本返回格式错误: %v", raw)
	}
	nums := make([]int, len(values))
	for i, v := range values {
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("限流脚本返回格式错误: %w", err)
		}
		nums[i] = n
	}

	allowed := nums[0] == 1
	remaining := nums[2] - nums[1]
	if remaining < 0 {
		remaining = 0
	}

	message := "允许请求"
	if !allowed {
		message = fmt.Sprintf("超过%s限流限制", scopeName(rule.Scope))
	}

	return &RateLimitResult{
		Allowed:   allowed,
		Limit:     nums[2],
		Remaining: remaining,
		ResetAt:   now.Add(time.Duration(nums[3]) * time.Second).Unix(),
		Scope:     rule.Scope,
		Message:   message,
	}, nil
}

// sortRulesByPriority client 优先于 global
func sortRulesByPriority(rules []RateLimitRule) []RateLimitRule {
	priority := map[string]int{ScopeClient: 2, ScopeGlobal: 1}
	sorted := append([]RateLimitRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priority[sorted[i].Scope] > priority[sorted[j].Scope]
	})
	return sorted
}

func scopeName(scope string) string {
	switch scope {
	case ScopeGlobal:
		return "全局"
	case ScopeClient:
		return "客户端"
	default:
		return "未知"
	}
}
