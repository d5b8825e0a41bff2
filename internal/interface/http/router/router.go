// Package router 组装Gin引擎:全局中间件、路由表、文档与监控端点
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/pharmacy/internal/domain/staff"
	"github.com/xiebiao/pharmacy/internal/interface/http/handler"
	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
	"github.com/xiebiao/pharmacy/pkg/validator"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Auth       *handler.AuthHandler
	Medicine   *handler.MedicineHandler
	Stock      *handler.StockHandler
	Dispense   *handler.DispenseHandler
	Adjustment *handler.AdjustmentHandler
	Wholesale  *handler.WholesaleHandler
}

// Options 引擎配置
type Options struct {
	Mode        string // debug | release | test
	ServiceName string // tracing中的服务名
	Swagger     bool
}

// New 创建Gin引擎并注册路由
// 查询接口公开,所有写操作需要登录;
// 目录、入库、盘点、调整只允许admin和pharmacist,收银员可以发药和处理批发订单
func New(opts Options, h *Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}
	validator.Register()

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Tracing(opts.ServiceName),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	requireAuth := auth.RequireAuth()
	manager := middleware.RequireRole(string(staff.RoleAdmin), string(staff.RolePharmacist))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", requireAuth, h.Auth.Logout)
	}
	api.POST("/staff", requireAuth, middleware.RequireRole(string(staff.RoleAdmin)), h.Auth.CreateStaff)

	medicines := api.Group("/medicines")
	{
		medicines.GET("", h.Medicine.List)
		medicines.GET("/:product_id", h.Medicine.Get)
		medicines.POST("", requireAuth, manager, h.Medicine.Create)
		medicines.POST("/import", requireAuth, manager, h.Medicine.Import)
		medicines.PUT("/:product_id", requireAuth, manager, h.Medicine.Update)
	}

	cache := api.Group("/medicines-cache")
	{
		cache.GET("", h.Stock.ListBatches)
		cache.GET("/expiring", h.Stock.Expiring)
		cache.GET("/:product_id", h.Stock.ProductStock)
		cache.GET("/:product_id/movements", h.Stock.Movements)
		cache.PUT("/:product_id", requireAuth, h.Dispense.Dispense)
	}

	api.POST("/stock-receipts", requireAuth, manager, h.Stock.Receive)
	api.POST("/stock-takings", requireAuth, manager, h.Stock.StockTake)

	adjustments := api.Group("/stock-adjustments")
	{
		adjustments.GET("", h.Adjustment.List)
		adjustments.GET("/:id", h.Adjustment.Get)
		adjustments.POST("", requireAuth, manager, h.Adjustment.Create)
		adjustments.DELETE("/:id", requireAuth, manager, h.Adjustment.Delete)
	}

	api.GET("/dispensed", h.Dispense.ListSales)
	api.GET("/dispensed/:sale_no", h.Dispense.GetSale)
	api.GET("/payment-approvals", h.Dispense.ListApprovals)

	orders := api.Group("/wholesale-orders")
	{
		orders.GET("", h.Wholesale.List)
		orders.GET("/:id", h.Wholesale.Get)

		write := orders.Group("", requireAuth)
		write.POST("", h.Wholesale.Create)
		write.POST("/:id/status", h.Wholesale.Transition)
		write.POST("/:id/payments", h.Wholesale.RecordPayment)
		write.POST("/:id/deliveries", h.Wholesale.ScheduleDelivery)
		write.POST("/:id/deliveries/:delivery_id/complete", h.Wholesale.CompleteDelivery)
	}

	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithCode(c, apperrors.ErrCodeNotFound, "Route not found")
	})
	return r
}
