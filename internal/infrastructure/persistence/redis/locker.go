package redis

import (
	"context"
	"errors"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/logger"
)

// ErrLockNotObtained 重试耗尽仍未拿到锁
var ErrLockNotObtained = errors.New("redis: lock not obtained")

// Locker 基于redislock的业务锁
// 锁只用来减少同一药品在数据库行锁上的排队,正确性仍由FOR UPDATE保证
type Locker struct {
	client *redislock.Client
	cfg    config.LockConfig
}

// NewLocker 创建业务锁
func NewLocker(client *redis.Client, cfg config.LockConfig) *Locker {
	return &Locker{client: redislock.New(client), cfg: cfg}
}

// Obtain 按LinearBackoff重试MaxRetries次
// 返回的release可重复调用;锁在TTL后自动过期
func (l *Locker) Obtain(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.cfg.RetryEvery), l.cfg.MaxRetries),
	}

	lock, err := l.client.Obtain(ctx, key, l.cfg.TTL, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLockNotObtained
		}
		return nil, apperrors.Wrap(err, "获取分布式锁失败")
	}

	return func() {
		// 请求ctx可能已取消,释放用独立ctx
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.L().WithError(err).WithField("key", key).Warn("release lock failed")
		}
	}, nil
}
