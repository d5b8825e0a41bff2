package wholesale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/metrics"
)

// TransitionUseCase 变更订单状态
// 取消时在同一事务内把所有明细的批次分配加回库存
type TransitionUseCase struct {
	orders    wholesale.Repository
	stock     *stock.Service
	txManager application.TxManager
	publisher event.Publisher
}

// NewTransitionUseCase 创建用例
func NewTransitionUseCase(
	orders wholesale.Repository,
	stockService *stock.Service,
	txManager application.TxManager,
	publisher event.Publisher,
) *TransitionUseCase {
	metrics.InitMetrics()
	return &TransitionUseCase{
		orders:    orders,
		stock:     stockService,
		txManager: txManager,
		publisher: publisher,
	}
}

// Execute 执行状态变更
func (uc *TransitionUseCase) Execute(ctx context.Context, orderID uint, target string, changedBy string) (*OrderDTO, error) {
	to, err := wholesale.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var (
		o    *wholesale.Order
		from wholesale.Status
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(to); err != nil {
			return err
		}
		if to == wholesale.StatusCancelled {
			ref := stock.Reference{Type: "wholesale_order", ID: o.OrderNo, CreatedBy: changedBy}
			for _, i := range lockOrder(o.Items) {
				it := o.Items[i]
				if err := uc.stock.Release(ctx, it.ProductID, it.Allocations, ref); err != nil {
					return err
				}
			}
		}
		return uc.orders.UpdateStatus(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(ctx, uc.publisher, o, from)
	return ToOrderDTO(o), nil
}

// recordTransition 状态变更后的指标、日志与事件
func recordTransition(ctx context.Context, pub event.Publisher, o *wholesale.Order, from wholesale.Status) {
	metrics.IncCounterVec(metrics.WholesaleTransitionsTotal, map[string]string{
		"from": string(from),
		"to":   string(o.Status),
	})
	logger.L().WithFields(logrus.Fields{
		"order_no": o.OrderNo,
		"from":     from,
		"to":       o.Status,
	}).Info("wholesale order status changed")
	application.Notify(ctx, pub, event.WholesaleStatusChanged, event.StatusChanged{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		From:    string(from),
		To:      string(o.Status),
	})
}

// RecordPaymentUseCase 登记收款
type RecordPaymentUseCase struct {
	orders    wholesale.Repository
	txManager application.TxManager
	publisher event.Publisher
}

// NewRecordPaymentUseCase 创建用例
func NewRecordPaymentUseCase(orders wholesale.Repository, txManager application.TxManager, publisher event.Publisher) *RecordPaymentUseCase {
	metrics.InitMetrics()
	return &RecordPaymentUseCase{orders: orders, txManager: txManager, publisher: publisher}
}

// RecordPaymentRequest 收款请求
type RecordPaymentRequest struct {
	OrderID    uint
	Amount     decimal.Decimal
	Method     string
	Reference  string
	ReceivedBy string
}

// Execute 锁定订单后收款,超过未付余额拒绝
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, req RecordPaymentRequest) (*OrderDTO, error) {
	var o *wholesale.Order
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.orders.LockByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		p := wholesale.Payment{
			Amount:     req.Amount,
			Method:     req.Method,
			Reference:  req.Reference,
			ReceivedBy: req.ReceivedBy,
			CreatedAt:  time.Now(),
		}
		if err := o.RecordPayment(p); err != nil {
			return err
		}
		// RecordPayment追加的是副本,回填ID要用切片里的那条
		return uc.orders.AddPayment(ctx, o, &o.Payments[len(o.Payments)-1])
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.WholesalePaymentsTotal)
	application.Notify(ctx, uc.publisher, event.WholesalePaymentRecorded, event.PaymentRecorded{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		Amount:  req.Amount,
		Paid:    o.PaidAmount,
		Balance: o.BalanceAmount,
	})
	return ToOrderDTO(o), nil
}

// ScheduleDeliveryUseCase 安排配送
type ScheduleDeliveryUseCase struct {
	orders    wholesale.Repository
	txManager application.TxManager
}

// NewScheduleDeliveryUseCase 创建用例
func NewScheduleDeliveryUseCase(orders wholesale.Repository, txManager application.TxManager) *ScheduleDeliveryUseCase {
	return &ScheduleDeliveryUseCase{orders: orders, txManager: txManager}
}

// ScheduleDeliveryRequest 配送请求
type ScheduleDeliveryRequest struct {
	OrderID     uint
	Address     string
	DeliveredBy string
	ScheduledAt time.Time
}

// Execute 只有processing、ready_for_delivery的订单可以安排配送
func (uc *ScheduleDeliveryUseCase) Execute(ctx context.Context, req ScheduleDeliveryRequest) (*DeliveryDTO, error) {
	var d *wholesale.Delivery
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		o, err := uc.orders.LockByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		d, err = o.ScheduleDelivery(wholesale.Delivery{
			DeliveryNo:  wholesale.GenerateDeliveryNo(),
			Address:     req.Address,
			DeliveredBy: req.DeliveredBy,
			ScheduledAt: req.ScheduledAt,
		})
		if err != nil {
			return err
		}
		return uc.orders.AddDelivery(ctx, o.ID, d)
	})
	if err != nil {
		return nil, err
	}
	dto := toDeliveryDTO(*d)
	return &dto, nil
}

// CompleteDeliveryUseCase 配送完成
// 标记配送并把订单流转为delivered,同一事务
type CompleteDeliveryUseCase struct {
	orders    wholesale.Repository
	txManager application.TxManager
	publisher event.Publisher
}

// NewCompleteDeliveryUseCase 创建用例
func NewCompleteDeliveryUseCase(orders wholesale.Repository, txManager application.TxManager, publisher event.Publisher) *CompleteDeliveryUseCase {
	metrics.InitMetrics()
	return &CompleteDeliveryUseCase{orders: orders, txManager: txManager, publisher: publisher}
}

// Execute 执行
func (uc *CompleteDeliveryUseCase) Execute(ctx context.Context, orderID, deliveryID uint) (*OrderDTO, error) {
	var (
		o    *wholesale.Order
		from wholesale.Status
	)
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		d, err := o.CompleteDelivery(deliveryID, time.Now())
		if err != nil {
			return err
		}
		if err := uc.orders.UpdateDelivery(ctx, o.ID, d); err != nil {
			return err
		}
		return uc.orders.UpdateStatus(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(ctx, uc.publisher, o, from)
	return ToOrderDTO(o), nil
}
