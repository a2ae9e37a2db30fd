/*
 * @module service/distributed_lock/redis_lock
 * @description 分布式锁，保证多实例部署时定时质量检查同一时刻只执行一次
 * @architecture 工具层 - 提供分布式锁能力
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 获取锁 -> 执行任务(可续期) -> 释放锁/自动过期
 * @rules Redis 实现使用 SET NX 加持有者校验；未启用 Redis 时使用进程内锁
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/scheduler/quality_scheduler.go
 */

package distributed_lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "dataquality:lock:"

// ErrLockNotHeld 锁不存在或由其他实例持有
var ErrLockNotHeld = errors.New("锁不存在或已被其他实例持有")

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key string) error
	// Refresh 刷新锁的过期时间
	Refresh(ctx context.Context, key string, ttl time.Duration) error
	// IsLocked 检查锁是否存在
	IsLocked(ctx context.Context, key string) (bool, error)
}

var (
	unlockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	refreshScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
)

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client     *redis.Client
	prefix     string
	instanceID string
}

// NewRedisLock 基于已有客户端创建分布式锁
func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{
		client:     client,
		prefix:     defaultKeyPrefix,
		instanceID: InstanceID(),
	}
}

// InstanceID 当前实例标识，主机名加进程ID
func InstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s:%d", hostname, os.Getpid())
}

func (r *RedisLock) lockKey(key string) string {
	return r.prefix + key
}

// TryLock 只有当key不存在时才会设置成功
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.lockKey(key), r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}
	if ok {
		slog.Debug("分布式锁: 成功获取锁", "key", key, "ttl", ttl, "instance", r.instanceID)
	}
	return ok, nil
}

// Unlock 只有锁的持有者才能释放锁
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	deleted, err := unlockScript.Run(ctx, r.client, []string{r.lockKey(key)}, r.instanceID).Int64()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	if deleted == 0 {
		slog.Warn("分布式锁: 锁不存在或已被其他实例持有", "key", key, "instance", r.instanceID)
	}
	return nil
}

// Refresh 刷新锁的过期时间
func (r *RedisLock) Refresh(ctx context.Context, key string, ttl time.Duration) error {
	refreshed, err := refreshScript.Run(ctx, r.client, []string{r.lockKey(key)}, r.instanceID, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("刷新锁失败: %w", err)
	}
	if refreshed == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// IsLocked 检查锁是否存在
func (r *RedisLock) IsLocked(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.lockKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("检查锁状态失败: %w", err)
	}
	return exists > 0, nil
}

// LocalLock 进程内锁，单实例部署或未启用 Redis 时使用
type LocalLock struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewLocalLock 创建进程内锁
func NewLocalLock() *LocalLock {
	return &LocalLock{expires: make(map[string]time.Time), now: time.Now}
}

// TryLock 尝试获取锁，过期的锁视为不存在
func (l *LocalLock) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if exp, ok := l.expires[key]; ok && l.now().Before(exp) {
		return false, nil
	}
	l.expires[key] = l.now().Add(ttl)
	return true, nil
}

// Unlock 释放锁
func (l *LocalLock) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, key)
	return nil
}

// Refresh 刷新锁的过期时间
func (l *LocalLock) Refresh(_ context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.expires[key]
	if !ok || !l.now().Before(exp) {
		return ErrLockNotHeld
	}
	l.expires[key] = l.now().Add(ttl)
	return nil
}

// IsLocked 检查锁是否存在
func (l *LocalLock) IsLocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.expires[key]
	return ok && l.now().Before(exp), nil
}

// LockExecutor 带锁执行器，用于简化锁的使用
type LockExecutor struct {
	lock DistributedLock
}

// NewLockExecutor 创建带锁执行器
func NewLockExecutor(lock DistributedLock) *LockExecutor {
	return &LockExecutor{lock: lock}
}

// ExecuteWithLock 在锁保护下执行函数，锁被占用时跳过并返回 false
func (e *LockExecutor) ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	return e.ExecuteWithLockAndRefresh(ctx, key, ttl, 0, fn)
}

// ExecuteWithLockAndRefresh 在锁保护下执行函数，refreshInterval 大于0时自动续期
func (e *LockExecutor) ExecuteWithLockAndRefresh(ctx context.Context, key string, ttl, refreshInterval time.Duration, fn func(ctx context.Context) error) (bool, error) {
	locked, err := e.lock.TryLock(ctx, key, ttl)
	if err != nil {
		return false, err
	}
	if !locked {
		slog.Debug("分布式锁: 锁已被其他实例持有，跳过执行", "key", key)
		return false, nil
	}

	defer func() {
		// 释放锁不受任务上下文取消影响
		unlockCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if unlockErr := e.lock.Unlock(unlockCtx, key); unlockErr != nil {
			slog.Error("分布式锁: 释放锁失败", "key", key, "error", unlockErr)
		}
	}()

	if refreshInterval > 0 {
		refreshCtx, cancelRefresh := context.WithCancel(ctx)
		defer cancelRefresh()

		go func() {
			ticker := time.NewTicker(refreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-refreshCtx.Done():
					return
				case <-ticker.C:
					if refreshErr := e.lock.Refresh(refreshCtx, key, ttl); refreshErr != nil {
						slog.Error("分布式锁: 续期失败", "key", key, "error", refreshErr)
					}
				}
			}
		}()
	}

	return true, fn(ctx)
}
