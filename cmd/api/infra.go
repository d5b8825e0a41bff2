package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/bootstrap"
	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/infrastructure/messaging"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// buildInfra 按配置选择基础设施实现
// 返回的cleanup按创建的逆序释放资源
func buildInfra(cfg *config.Config, log *logrus.Logger) (bootstrap.Infra, func(), error) {
	var (
		infra   bootstrap.Infra
		closers []func()
		cleanup = func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	)

	// 1. 数据库
	if cfg.Database.InMemory() {
		log.Warn("使用内存数据库,重启后数据丢失")
		store := memory.NewStore()
		infra.Staff = memory.NewStaffRepository(store)
		infra.Medicines = memory.NewMedicineRepository(store)
		infra.Batches = memory.NewBatchRepository(store)
		infra.Movements = memory.NewMovementRepository(store)
		infra.Sales = memory.NewSaleRepository(store)
		infra.Adjustments = memory.NewAdjustmentRepository(store)
		infra.Orders = memory.NewOrderRepository(store)
		infra.TxManager = store
	} else {
		db, err := mysql.NewDB(cfg)
		if err != nil {
			return infra, cleanup, err
		}
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		infra.Staff = mysql.NewStaffRepository(db)
		infra.Medicines = mysql.NewMedicineRepository(db)
		infra.Batches = mysql.NewBatchRepository(db)
		infra.Movements = mysql.NewMovementRepository(db)
		infra.Sales = mysql.NewSaleRepository(db)
		infra.Adjustments = mysql.NewAdjustmentRepository(db)
		infra.Orders = mysql.NewWholesaleRepository(db)
		infra.TxManager = mysql.NewTxManager(db)
	}

	// 2. Redis:会话、目录缓存、按药品的分布式锁
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg)
		if err != nil {
			cleanup()
			return infra, func() {}, err
		}
		closers = append(closers, func() { client.Close() })
		infra.Sessions = redis.NewSessionStore(client)
		infra.Cache = redis.NewMedicineCache(client, cfg.Redis.CacheTTL)
		if cfg.Lock.Enabled {
			infra.Locker = redis.NewLocker(client, cfg.Lock)
		}
	} else {
		log.Warn("Redis未启用,会话保存在进程内,不缓存药品目录")
		infra.Sessions = memory.NewSessionStore()
	}

	// 3. 事件发布
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
		if err != nil {
			cleanup()
			return infra, func() {}, fmt.Errorf("初始化消息发布失败: %w", err)
		}
		closers = append(closers, func() { p.Close() })
		infra.Publisher = messaging.NewPublisher(p, messaging.Options{}, log)
	}

	return infra, cleanup, nil
}
