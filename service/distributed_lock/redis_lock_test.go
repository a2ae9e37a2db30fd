package distributed_lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis 连接本地Redis，不可用时跳过
func setupTestRedis(t *testing.T) *redis.Client {
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
	return client
}

// TestLocalLock 测试进程内锁
func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	lock := NewLocalLock()
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lock.now = func() time.Time { return current }

	ok, err := lock.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = lock.TryLock(ctx, "job", time.Minute)
	assert.False(t, ok, "未过期的锁不能重复获取")

	locked, _ := lock.IsLocked(ctx, "job")
	assert.True(t, locked)

	require.NoError(t, lock.Refresh(ctx, "job", 2*time.Minute))
	current = current.Add(90 * time.Second)
	locked, _ = lock.IsLocked(ctx, "job")
	assert.True(t, locked, "续期后仍持有")

	current = current.Add(time.Hour)
	ok, _ = lock.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok, "过期的锁可以重新获取")

	require.NoError(t, lock.Unlock(ctx, "job"))
	assert.ErrorIs(t, lock.Refresh(ctx, "job", time.Minute), ErrLockNotHeld)
}

// TestLockExecutor 测试带锁执行
func TestLockExecutor(t *testing.T) {
	ctx := context.Background()
	lock := NewLocalLock()
	executor := NewLockExecutor(lock)

	calls := 0
	ran, err := executor.ExecuteWithLock(ctx, "job", time.Minute, func(context.Context) error {
		calls++
		held, _ := lock.IsLocked(ctx, "job")
		assert.True(t, held, "执行期间应持有锁")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, calls)

	held, _ := lock.IsLocked(ctx, "job")
	assert.False(t, held, "执行结束后应释放锁")

	_, _ = lock.TryLock(ctx, "job", time.Minute)
	ran, err = executor.ExecuteWithLock(ctx, "job", time.Minute, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ran, "锁被占用时应跳过")
	assert.Equal(t, 1, calls)
}

// TestLockExecutor_ErrorAndRefresh 测试任务错误透传与续期
func TestLockExecutor_ErrorAndRefresh(t *testing.T) {
	ctx := context.Background()
	executor := NewLockExecutor(NewLocalLock())

	boom := errors.New("boom")
	ran, err := executor.ExecuteWithLockAndRefresh(ctx, "job", 50*time.Millisecond, 10*time.Millisecond, func(context.Context) error {
		time.Sleep(80 * time.Millisecond)
		return boom
	})
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
}

// TestRedisLock 测试Redis锁
func TestRedisLock(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client)
	lock.prefix = "dataquality:test:lock:"
	other := NewRedisLock(client)
	other.prefix = lock.prefix
	other.instanceID = "other-instance"

	key := "redis-lock-test"
	_ = client.Del(ctx, lock.lockKey(key))

	ok, err := lock.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = other.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, other.Refresh(ctx, key, 5*time.Second), ErrLockNotHeld)
	require.NoError(t, other.Unlock(ctx, key))
	locked, err := lock.IsLocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, locked, "非持有者不能释放锁")

	require.NoError(t, lock.Refresh(ctx, key, 10*time.Second))
	require.NoError(t, lock.Unlock(ctx, key))
	locked, _ = lock.IsLocked(ctx, key)
	assert.False(t, locked)
}
