// Package bootstrap 依赖组装
// Repository ← Service ← UseCase ← Handler,基础设施实现由调用方按配置选择
package bootstrap

import (
	"context"

	appadjustment "github.com/xiebiao/pharmacy/internal/application/adjustment"
	appdispense "github.com/xiebiao/pharmacy/internal/application/dispense"
	appmedicine "github.com/xiebiao/pharmacy/internal/application/medicine"
	appstaff "github.com/xiebiao/pharmacy/internal/application/staff"
	appstock "github.com/xiebiao/pharmacy/internal/application/stock"
	appwholesale "github.com/xiebiao/pharmacy/internal/application/wholesale"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/staff"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	"github.com/xiebiao/pharmacy/internal/infrastructure/config"
	"github.com/xiebiao/pharmacy/internal/interface/http/handler"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	"github.com/xiebiao/pharmacy/internal/interface/http/router"
	"github.com/xiebiao/pharmacy/pkg/jwt"
)

// SessionStore 登录会话与Token黑名单
type SessionStore interface {
	appstaff.SessionStore
	middleware.TokenBlacklist
}

// Infra 基础设施实现
// Cache为nil表示不缓存药品目录;Locker为nil时只依赖数据库行锁
type Infra struct {
	Staff       staff.Repository
	Medicines   medicine.Repository
	Batches     stock.BatchRepository
	Movements   stock.MovementRepository
	Sales       dispense.Repository
	Adjustments adjustment.Repository
	Orders      wholesale.Repository
	TxManager   application.TxManager

	Sessions  SessionStore
	Cache     appmedicine.Cache
	Locker    application.Locker
	Publisher event.Publisher
}

// NewJWTManager 从配置创建JWT管理器
func NewJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// NewHandlers 组装全部用例与处理器
func NewHandlers(cfg *config.Config, infra Infra, jwtManager *jwt.Manager) (*router.Handlers, *middleware.AuthMiddleware) {
	publisher := infra.Publisher
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	locker := infra.Locker
	if locker == nil {
		locker = application.NopLocker{}
	}
	threshold := cfg.Inventory.LowStockThreshold

	// 领域层
	staffService := staff.NewService(infra.Staff)
	stockService := stock.NewService(infra.Batches, infra.Movements)

	// 应用层 + 接口层
	auth := handler.NewAuthHandler(
		appstaff.NewRegisterUseCase(staffService),
		appstaff.NewCreateStaffUseCase(staffService),
		appstaff.NewLoginUseCase(staffService, jwtManager, infra.Sessions),
		appstaff.NewLogoutUseCase(infra.Sessions, jwtManager),
	)

	medicines := handler.NewMedicineHandler(
		appmedicine.NewCreateMedicineUseCase(infra.Medicines),
		appmedicine.NewGetMedicineUseCase(infra.Medicines, infra.Cache),
		appmedicine.NewUpdateMedicineUseCase(infra.Medicines, infra.Cache),
		appmedicine.NewListMedicinesUseCase(infra.Medicines),
		appmedicine.NewImportMedicinesUseCase(infra.Medicines, infra.Cache),
	)

	stocks := handler.NewStockHandler(
		appstock.NewListBatchesUseCase(infra.Batches),
		appstock.NewExpiringUseCase(infra.Batches, cfg.Inventory.ExpiryAlertDays),
		appstock.NewProductStockUseCase(infra.Medicines, infra.Batches),
		appstock.NewMovementsUseCase(infra.Movements),
		appstock.NewReceiveUseCase(infra.Medicines, stockService, infra.TxManager, publisher),
		appstock.NewStockTakeUseCase(stockService, infra.Batches, infra.TxManager, publisher, threshold),
	)

	dispenses := handler.NewDispenseHandler(
		appdispense.NewDispenseUseCase(infra.Sales, stockService, infra.TxManager, locker, publisher, threshold),
		appdispense.NewListSalesUseCase(infra.Sales),
		appdispense.NewGetSaleUseCase(infra.Sales),
		appdispense.NewListApprovalsUseCase(infra.Sales),
	)

	adjustments := handler.NewAdjustmentHandler(
		appadjustment.NewCreateAdjustmentUseCase(infra.Adjustments, infra.Batches, stockService, infra.TxManager, publisher, threshold),
		appadjustment.NewDeleteAdjustmentUseCase(infra.Adjustments, infra.Batches, stockService, infra.TxManager, publisher),
		appadjustment.NewListAdjustmentsUseCase(infra.Adjustments),
		appadjustment.NewGetAdjustmentUseCase(infra.Adjustments),
	)

	orders := handler.NewWholesaleHandler(
		appwholesale.NewCreateOrderUseCase(infra.Orders, infra.Medicines, stockService, infra.TxManager, publisher, threshold),
		appwholesale.NewGetOrderUseCase(infra.Orders),
		appwholesale.NewListOrdersUseCase(infra.Orders),
		appwholesale.NewTransitionUseCase(infra.Orders, stockService, infra.TxManager, publisher),
		appwholesale.NewRecordPaymentUseCase(infra.Orders, infra.TxManager, publisher),
		appwholesale.NewScheduleDeliveryUseCase(infra.Orders, infra.TxManager),
		appwholesale.NewCompleteDeliveryUseCase(infra.Orders, infra.TxManager, publisher),
	)

	return &router.Handlers{
		Auth:       auth,
		Medicine:   medicines,
		Stock:      stocks,
		Dispense:   dispenses,
		Adjustment: adjustments,
		Wholesale:  orders,
	}, middleware.NewAuthMiddleware(jwtManager, infra.Sessions)
}

// SeedAdmin 按admin配置创建初始管理员,未配置邮箱时跳过
func SeedAdmin(ctx context.Context, cfg *config.Config, repo staff.Repository) (bool, error) {
	if cfg.Admin.Email == "" {
		return false, nil
	}
	return staff.NewService(repo).EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
}

// RouterOptions 从配置提取引擎参数
func RouterOptions(cfg *config.Config) router.Options {
	return router.Options{
		Mode:        cfg.Server.Mode,
		ServiceName: cfg.Tracing.ServiceName,
		Swagger:     cfg.Server.Mode != "release",
	}
}
