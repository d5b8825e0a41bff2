//go:build wireinject
// +build wireinject

// Wire依赖注入配置(MySQL + Redis + RabbitMQ部署)
// 生成: wire gen ./cmd/api
// main.go中的buildInfra是等价的手写版本,另外支持内存数据库与关闭Redis/MQ

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/application"
	appmedicine "github.com/xiebiao/pharmacy/internal/application/medicine"
	"github.com/xiebiao/pharmacy/internal/bootstrap"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/infrastructure/messaging"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/pharmacy/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/pharmacy/internal/interface/http/router"
	"github.com/xiebiao/pharmacy/pkg/jwt"
	"github.com/xiebiao/pharmacy/pkg/mq"
)

// infrastructureSet 数据库与Redis连接
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	provideEventPublisher,
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	mysql.NewStaffRepository,
	mysql.NewMedicineRepository,
	mysql.NewBatchRepository,
	mysql.NewMovementRepository,
	mysql.NewSaleRepository,
	mysql.NewAdjustmentRepository,
	mysql.NewWholesaleRepository,
	mysql.NewTxManager,
	wire.Bind(new(application.TxManager), new(*mysql.TxManager)),
)

// redisSet 会话、目录缓存、分布式锁
var redisSet = wire.NewSet(
	redis.NewSessionStore,
	wire.Bind(new(bootstrap.SessionStore), new(*redis.SessionStore)),
	provideMedicineCache,
	provideLocker,
)

// provideLocker lock.enabled=false时只依赖数据库行锁
func provideLocker(client *goredis.Client, cfg *config.Config) application.Locker {
	if !cfg.Lock.Enabled {
		return application.NopLocker{}
	}
	return redis.NewLocker(client, cfg.Lock)
}

func provideMedicineCache(client *goredis.Client, cfg *config.Config) appmedicine.Cache {
	return redis.NewMedicineCache(client, cfg.Redis.CacheTTL)
}

// provideEventPublisher 未启用MQ时返回NopPublisher
func provideEventPublisher(cfg *config.Config, log *logrus.Logger) (event.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return event.NopPublisher{}, func() {}, nil
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewPublisher(p, messaging.Options{}, log), func() { p.Close() }, nil
}

func provideGinEngine(cfg *config.Config, infra bootstrap.Infra, jwtManager *jwt.Manager) (*gin.Engine, error) {
	if _, err := bootstrap.SeedAdmin(context.Background(), cfg, infra.Staff); err != nil {
		return nil, err
	}
	handlers, auth := bootstrap.NewHandlers(cfg, infra, jwtManager)
	return router.New(bootstrap.RouterOptions(cfg), handlers, auth), nil
}

// InitializeApp 初始化整个应用
func InitializeApp(cfg *config.Config, log *logrus.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		redisSet,
		wire.Struct(new(bootstrap.Infra), "*"),
		bootstrap.NewJWTManager,
		provideGinEngine,
	)
	return nil, nil, nil
}
