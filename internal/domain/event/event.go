// Package event 定义库存与批发领域对外发布的事件
// 事件在事务提交后发布,投递失败只记日志,不影响业务结果
package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// 路由键(topic exchange)
const (
	StockDispensed           = "stock.dispensed"
	StockAdjusted            = "stock.adjusted"
	StockReceived            = "stock.received"
	StockLow                 = "stock.low"
	WholesaleStatusChanged   = "wholesale.order.status_changed"
	WholesalePaymentRecorded = "wholesale.payment.recorded"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Dispensed 发药完成
type Dispensed struct {
	SaleNo      string             `json:"sale_no"`
	ProductID   string             `json:"product_id"`
	PaymentID   string             `json:"payment_id"`
	Quantity    int                `json:"quantity"`
	Allocations []stock.Allocation `json:"allocations"`
	Remaining   int                `json:"remaining"`
	CreatedBy   string             `json:"created_by"`
}

// Adjusted 手工调整或撤销
type Adjusted struct {
	AdjustmentID uint   `json:"adjustment_id"`
	ProductID    string `json:"product_id"`
	BatchNo      string `json:"batch_no"`
	Type         string `json:"type"`
	Requested    int    `json:"requested"`
	Applied      int    `json:"applied"`
	Reversal     bool   `json:"reversal"`
	CreatedBy    string `json:"created_by"`
}

// Received 入库或盘点
type Received struct {
	ProductID  string    `json:"product_id"`
	BatchNo    string    `json:"batch_no"`
	Delta      int       `json:"delta"`
	Quantity   int       `json:"quantity"` // 变动后批次数量
	ExpireDate time.Time `json:"expire_date,omitempty"`
	Source     string    `json:"source"` // receipt | stock_taking
	CreatedBy  string    `json:"created_by"`
}

// Low 药品总库存低于阈值
type Low struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
	Threshold int    `json:"threshold"`
}

// StatusChanged 批发订单状态变更
type StatusChanged struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// PaymentRecorded 批发订单收款
type PaymentRecorded struct {
	OrderID uint            `json:"order_id"`
	OrderNo string          `json:"order_no"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    decimal.Decimal `json:"paid"`
	Balance decimal.Decimal `json:"balance"`
}

// NopPublisher 消息队列未启用时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
