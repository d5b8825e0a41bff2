package wholesale

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

const tracerName = "pharmacy/wholesale"

// CreateOrderUseCase 创建批发订单
//
// 一个事务内完成:
//  1. 校验药品存在,单价缺省取目录价
//  2. 每个明细走与发药相同的FEFO扣减(锁定该药品全部批次)
//  3. 保存draft订单及批次分配
//
// 任一明细库存不足,整张订单回滚。
type CreateOrderUseCase struct {
	orders            wholesale.Repository
	medicines         medicine.Repository
	stock             *stock.Service
	txManager         application.TxManager
	publisher         event.Publisher
	lowStockThreshold int
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orders wholesale.Repository,
	medicines medicine.Repository,
	stockService *stock.Service,
	txManager application.TxManager,
	publisher event.Publisher,
	lowStockThreshold int,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orders:            orders,
		medicines:         medicines,
		stock:             stockService,
		txManager:         txManager,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	CustomerName  string
	CustomerPhone string
	Notes         string
	CreatedBy     string
	Items         []CreateOrderItem
}

// CreateOrderItem 订单明细,UnitPrice为nil时使用目录价
type CreateOrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (_ *OrderDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "wholesale.CreateOrder")
	defer func() { tracing.EndSpan(span, err) }()

	if len(req.Items) == 0 {
		return nil, wholesale.ErrInvalidOrderItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, wholesale.ErrInvalidQuantity
		}
	}

	orderNo := wholesale.GenerateOrderNo()
	ref := stock.Reference{Type: "wholesale_order", ID: orderNo, CreatedBy: req.CreatedBy}

	var (
		o         *wholesale.Order
		remaining = map[string]int{}
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		items := make([]wholesale.Item, len(req.Items))
		for i, it := range req.Items {
			m, err := uc.medicines.FindByProductID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			price := m.Price
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			items[i] = wholesale.Item{ProductID: m.ProductID, Quantity: it.Quantity, UnitPrice: price}
		}

		for _, i := range lockOrder(items) {
			d, err := uc.stock.Deduct(ctx, items[i].ProductID, items[i].Quantity, stock.ChangeWholesale, ref)
			if err != nil {
				return err
			}
			items[i].Allocations = d.Allocations
			remaining[d.ProductID] = d.Remaining
		}

		var err error
		o, err = wholesale.NewOrder(orderNo, req.CustomerName, req.CustomerPhone, req.Notes, req.CreatedBy, items)
		if err != nil {
			return err
		}
		return uc.orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(logrus.Fields{
		"order_no": o.OrderNo,
		"customer": o.CustomerName,
		"items":    len(o.Items),
		"total":    o.TotalAmount.StringFixed(2),
	}).Info("wholesale order created")

	for productID, left := range remaining {
		application.NotifyLowStock(ctx, uc.publisher, productID, left, uc.lowStockThreshold)
	}
	return ToOrderDTO(o), nil
}

// OrderDTO 批发订单响应
type OrderDTO struct {
	ID            uint            `json:"id"`
	OrderNo       string          `json:"order_no"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	FullyPaid     bool            `json:"fully_paid"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by"`
	Items         []ItemDTO       `json:"items"`
	Payments      []PaymentDTO    `json:"payments"`
	Deliveries    []DeliveryDTO   `json:"deliveries"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// ItemDTO 订单明细
type ItemDTO struct {
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Allocations []AllocationDTO `json:"allocations"`
}

// AllocationDTO 明细在批次上的预留
type AllocationDTO struct {
	BatchNo  string `json:"batch_no"`
	Quantity int    `json:"quantity"`
}

// PaymentDTO 收款记录
type PaymentDTO struct {
	ID         uint            `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy string          `json:"received_by"`
	CreatedAt  string          `json:"created_at"`
}

// DeliveryDTO 配送记录
type DeliveryDTO struct {
	ID          uint   `json:"id"`
	DeliveryNo  string `json:"delivery_no"`
	Address     string `json:"address"`
	DeliveredBy string `json:"delivered_by,omitempty"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at"`
	DeliveredAt string `json:"delivered_at,omitempty"`
}

// ToOrderDTO 领域实体 → 响应DTO
func ToOrderDTO(o *wholesale.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		PaidAmount:    o.PaidAmount,
		BalanceAmount: o.BalanceAmount,
		FullyPaid:     o.IsFullyPaid(),
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		Items:         make([]ItemDTO, len(o.Items)),
		Payments:      make([]PaymentDTO, len(o.Payments)),
		Deliveries:    make([]DeliveryDTO, len(o.Deliveries)),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
	for i, it := range o.Items {
		allocations := make([]AllocationDTO, len(it.Allocations))
		for j, a := range it.Allocations {
			allocations[j] = AllocationDTO{BatchNo: a.BatchNo, Quantity: a.Quantity}
		}
		dto.Items[i] = ItemDTO{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Allocations: allocations,
		}
	}
	for i, p := range o.Payments {
		dto.Payments[i] = toPaymentDTO(p)
	}
	for i, d := range o.Deliveries {
		dto.Deliveries[i] = toDeliveryDTO(d)
	}
	return dto
}

func toPaymentDTO(p wholesale.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func toDeliveryDTO(d wholesale.Delivery) DeliveryDTO {
	dto := DeliveryDTO{
		ID:          d.ID,
		DeliveryNo:  d.DeliveryNo,
		Address:     d.Address,
		DeliveredBy: d.DeliveredBy,
		Status:      string(d.Status),
		ScheduledAt: d.ScheduledAt.Format(time.RFC3339),
	}
	if d.DeliveredAt != nil {
		dto.DeliveredAt = d.DeliveredAt.Format(time.RFC3339)
	}
	return dto
}

// lockOrder 按药品编号排序的明细下标
// 创建和取消都按这个顺序锁批次,避免两个事务交叉加锁
func lockOrder(items []wholesale.Item) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].ProductID < items[order[b]].ProductID
	})
	return order
}
