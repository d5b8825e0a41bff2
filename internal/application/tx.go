// Package application 放置各用例包共享的端口定义与辅助函数
package application

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/pkg/logger"
)

// TxManager 事务管理器
// fn内通过ctx调用的所有仓储操作处于同一事务,fn返回error时整体回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker 跨实例的业务锁(按药品串行化扣减)
// 获取失败时调用方可以降级为只依赖数据库行锁
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// NopLocker 未启用分布式锁时使用
type NopLocker struct{}

func (NopLocker) Obtain(context.Context, string) (func(), error) { return func() {}, nil }

// StockLockKey 药品库存锁的key
func StockLockKey(productID string) string {
	return "lock:stock:" + productID
}

// Notify 发布领域事件,失败只记日志
// 必须在事务提交之后调用
func Notify(ctx context.Context, pub event.Publisher, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		logger.L().WithError(err).WithField("routing_key", routingKey).Warn("publish event failed")
	}
}

// NotifyLowStock 剩余库存不高于阈值时发布stock.low
func NotifyLowStock(ctx context.Context, pub event.Publisher, productID string, remaining, threshold int) {
	if threshold <= 0 || remaining > threshold {
		return
	}
	Notify(ctx, pub, event.StockLow, event.Low{
		ProductID: productID,
		Remaining: remaining,
		Threshold: threshold,
	})
}

// Page 分页参数归一化:page默认1,pageSize默认20,最大100
func Page(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
