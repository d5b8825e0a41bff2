package wholesale

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Repository 批发订单仓储接口
type Repository interface {
	// Create 创建订单及明细(同一事务)
	Create(ctx context.Context, o *Order) error

	// FindByID 查询订单(含明细、收款、配送)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 锁定订单行后加载完整聚合
	LockByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 保存状态与三项金额
	UpdateStatus(ctx context.Context, o *Order) error

	// AddPayment 追加收款并保存金额,回填ID
	AddPayment(ctx context.Context, o *Order, p *Payment) error

	// AddDelivery 追加配送,回填ID
	AddDelivery(ctx context.Context, orderID uint, d *Delivery) error

	// UpdateDelivery 保存配送状态
	UpdateDelivery(ctx context.Context, orderID uint, d *Delivery) error

	List(ctx context.Context, params ListParams) ([]*Order, int64, error)
}

// ListParams 查询参数
type ListParams struct {
	Status   Status
	Keyword  string // 订单号或客户名
	Page     int
	PageSize int
}

// GenerateOrderNo 生成批发订单号
// 格式:WHO + 时间戳(秒) + 6位随机数
func GenerateOrderNo() string {
	return fmt.Sprintf("WHO%d%06d", time.Now().Unix(), rand.Intn(1000000))
}

// GenerateDeliveryNo 生成配送单号
func GenerateDeliveryNo() string {
	return fmt.Sprintf("DLV%d%06d", time.Now().Unix(), rand.Intn(1000000))
}
