/*
 * @module api/middleware/rate_limit
 * @description 限流中间件，按客户端IP限制调用大模型接口的频率
 * @architecture 中间件模式 - HTTP请求拦截
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 提取客户端标识 -> 生成规则 -> 限流检查 -> 放行或返回429
 * @rules 未配置限流器时直接放行；Redis异常时放行并记录告警
 * @dependencies dataquality-service/service/rate_limiter, github.com/go-chi/render
 * @refs api/routes.go, service/rate_limiter/redis_rate_limiter.go
 */

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"dataquality-service/service/config"
	"dataquality-service/service/rate_limiter"

	"github.com/go-chi/render"
)

// RateLimitMiddleware 限流中间件
type RateLimitMiddleware struct {
	limiter  rate_limiter.Limiter
	cfg      config.RedisConfig
	endpoint string
}

// NewRateLimitMiddleware 创建限流中间件，limiter 为空时不做限制
func NewRateLimitMiddleware(limiter rate_limiter.Limiter, cfg config.RedisConfig, endpoint string) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, cfg: cfg, endpoint: endpoint}
}

// Middleware 限流处理
func (m *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		clientID := ClientIP(r)
		result, err := m.limiter.CheckRateLimit(r.Context(), rate_limiter.RulesFor(m.cfg, m.endpoint, clientID))
		if err != nil {
			slog.Warn("限流检查失败，放行请求", "endpoint", m.endpoint, "client", clientID, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if result.Limit >= 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))
		}

		if !result.Allowed {
			m.respondTooManyRequests(w, r, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respondTooManyRequests 返回429响应
func (m *RateLimitMiddleware) respondTooManyRequests(w http.ResponseWriter, r *http.Request, result *rate_limiter.RateLimitResult) {
	render.Status(r, http.StatusTooManyRequests)
	render.JSON(w, r, map[string]interface{}{
		"status": http.StatusTooManyRequests,
		"msg":    result.Message,
		"data":   result,
	})
}

// ClientIP 优先取 X-Forwarded-For 的首个地址
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
