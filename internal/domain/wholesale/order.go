package wholesale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// Status 批发订单状态
type Status string

const (
	StatusDraft            Status = "draft"
	StatusConfirmed        Status = "confirmed"
	StatusProcessing       Status = "processing"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
)

// transitions 合法的状态流转
// draft → confirmed → processing → ready_for_delivery → delivered
// 任一非终态都可取消;delivered、cancelled为终态
var transitions = map[Status][]Status{
	StatusDraft:            {StatusConfirmed, StatusCancelled},
	StatusConfirmed:        {StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:        {},
	StatusCancelled:        {},
}

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Order 批发订单(聚合根)
// 金额不变式:BalanceAmount = TotalAmount - PaidAmount,且PaidAmount <= TotalAmount,
// 只能通过RecordPayment/recalculate修改
type Order struct {
	ID            uint
	OrderNo       string
	CustomerName  string
	CustomerPhone string
	Status        Status
	Items         []Item
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	BalanceAmount decimal.Decimal
	Notes         string
	CreatedBy     string
	Payments      []Payment
	Deliveries    []Delivery
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item 订单明细,Allocations记录下单时按FEFO预留的批次
type Item struct {
	ID          uint
	ProductID   string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Allocations []stock.Allocation
}

// Payment 收款记录
type Payment struct {
	ID         uint
	Amount     decimal.Decimal
	Method     string
	Reference  string
	ReceivedBy string
	CreatedAt  time.Time
}

// DeliveryStatus 配送状态
type DeliveryStatus string

const (
	DeliveryScheduled DeliveryStatus = "scheduled"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Delivery 配送记录
type Delivery struct {
	ID          uint
	DeliveryNo  string
	Address     string
	DeliveredBy string
	Status      DeliveryStatus
	ScheduledAt time.Time
	DeliveredAt *time.Time
}

// NewOrder 创建草稿订单,金额按明细计算
func NewOrder(orderNo, customerName, customerPhone, notes, createdBy string, items []Item) (*Order, error) {
	if customerName == "" {
		return nil, ErrCustomerRequired
	}
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if items[i].UnitPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
	}

	now := time.Now()
	o := &Order{
		OrderNo:       orderNo,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Status:        StatusDraft,
		Items:         items,
		PaidAmount:    decimal.Zero,
		Notes:         notes,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.recalculate()
	return o, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 唯一的状态变更入口
// delivered需要至少一条已完成的配送
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return InvalidTransition(o.Status, target)
	}
	if target == StatusDelivered && !o.hasCompletedDelivery() {
		return ErrDeliveryNotCompleted
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// RecordPayment 登记收款
// 已取消订单不能收款;金额必须>0且不超过未付余额
func (o *Order) RecordPayment(p Payment) error {
	if o.Status == StatusCancelled {
		return ErrOrderCancelled
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}
	if p.Amount.GreaterThan(o.BalanceAmount) {
		return PaymentExceedsBalance(p.Amount, o.BalanceAmount)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	o.Payments = append(o.Payments, p)
	o.recalculate()
	o.UpdatedAt = time.Now()
	return nil
}

// ScheduleDelivery 安排配送(processing或ready_for_delivery)
func (o *Order) ScheduleDelivery(d Delivery) (*Delivery, error) {
	if o.Status != StatusProcessing && o.Status != StatusReadyForDelivery {
		return nil, InvalidTransition(o.Status, StatusReadyForDelivery).WithMessage(
			"Deliveries can only be scheduled for processing or ready_for_delivery orders (current: %s)", o.Status)
	}
	if d.Address == "" {
		return nil, ErrAddressRequired
	}
	d.Status = DeliveryScheduled
	if d.ScheduledAt.IsZero() {
		d.ScheduledAt = time.Now()
	}
	o.Deliveries = append(o.Deliveries, d)
	o.UpdatedAt = time.Now()
	return &o.Deliveries[len(o.Deliveries)-1], nil
}

// CompleteDelivery 配送完成并把订单流转为delivered
func (o *Order) CompleteDelivery(deliveryID uint, at time.Time) (*Delivery, error) {
	if o.Status != StatusReadyForDelivery {
		return nil, InvalidTransition(o.Status, StatusDelivered)
	}
	idx := -1
	for i := range o.Deliveries {
		if o.Deliveries[i].ID == deliveryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrDeliveryNotFound
	}
	d := &o.Deliveries[idx]
	if d.Status == DeliveryDelivered {
		return nil, ErrDeliveryAlreadyCompleted
	}
	d.Status = DeliveryDelivered
	d.DeliveredAt = &at

	if err := o.TransitionTo(StatusDelivered); err != nil {
		return nil, err
	}
	return d, nil
}

// recalculate 按明细与收款重算三项金额
func (o *Order) recalculate() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	o.TotalAmount = total
	o.PaidAmount = paid
	o.BalanceAmount = total.Sub(paid)
}

// IsFullyPaid 是否已结清
func (o *Order) IsFullyPaid() bool {
	return !o.BalanceAmount.IsPositive()
}

func (o *Order) hasCompletedDelivery() bool {
	for _, d := range o.Deliveries {
		if d.Status == DeliveryDelivered {
			return true
		}
	}
	return false
}
