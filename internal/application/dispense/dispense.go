package dispense

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

const tracerName = "pharmacy/dispense"

// DispenseUseCase 发药
//
// 整个流程在一个数据库事务内:
//  1. 写入(product_id, Payment_ID)一次性标记,重复直接拒绝
//  2. 锁定该药品全部批次,按FEFO扣减
//  3. 保存发药记录(含批次明细)
//
// 任一步失败整体回滚:重复付款不会动库存,库存不足也不会留下标记。
// 事务外再加一把按药品的Redis锁,减少多实例下的行锁等待;拿不到锁时降级为只靠行锁。
type DispenseUseCase struct {
	sales             dispense.Repository
	stock             *stock.Service
	txManager         application.TxManager
	locker            application.Locker
	publisher         event.Publisher
	lowStockThreshold int
}

// NewDispenseUseCase 创建发药用例
func NewDispenseUseCase(
	sales dispense.Repository,
	stockService *stock.Service,
	txManager application.TxManager,
	locker application.Locker,
	publisher event.Publisher,
	lowStockThreshold int,
) *DispenseUseCase {
	metrics.InitMetrics()
	if locker == nil {
		locker = application.NopLocker{}
	}
	return &DispenseUseCase{
		sales:             sales,
		stock:             stockService,
		txManager:         txManager,
		locker:            locker,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
	}
}

// DispenseResponse 发药结果
type DispenseResponse struct {
	Sale      *SaleDTO `json:"sale"`
	Remaining int      `json:"remaining_quantity"`
}

// Execute 执行发药
func (uc *DispenseUseCase) Execute(ctx context.Context, req dispense.Request) (_ *DispenseResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "dispense.Execute")
	defer func() {
		tracing.EndSpan(span, err)
		metrics.IncCounterVec(metrics.DispensesTotal, map[string]string{"result": resultOf(err)})
		metrics.ObserveHistogram(metrics.DispenseDuration, time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	release, lockErr := uc.locker.Obtain(ctx, application.StockLockKey(req.ProductID))
	if lockErr != nil {
		metrics.IncCounter(metrics.StockLockFailuresTotal)
		logger.L().WithError(lockErr).WithField("product_id", req.ProductID).Warn("stock lock not obtained, relying on row locks")
		release = func() {}
	}
	defer release()

	saleNo := dispense.GenerateSaleNo()
	ref := stock.Reference{Type: "sale", ID: saleNo, CreatedBy: req.CreatedBy}

	var (
		sale      *dispense.Sale
		deduction *stock.Deduction
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.sales.MarkPayment(ctx, req.ProductID, req.PaymentID); err != nil {
			return err
		}

		var err error
		deduction, err = uc.stock.Deduct(ctx, req.ProductID, req.Quantity, stock.ChangeDispense, ref)
		if err != nil {
			return err
		}

		sale = dispense.NewSale(saleNo, req, deduction.Allocations)
		return uc.sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCounter(metrics.UnitsDispensedTotal, float64(req.Quantity))
	metrics.ObserveHistogram(metrics.BatchesTouchedPerDispense, float64(len(deduction.Allocations)))

	logger.L().WithFields(logrus.Fields{
		"sale_no":    sale.SaleNo,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
		"batches":    len(deduction.Allocations),
		"remaining":  deduction.Remaining,
	}).Info("medicine dispensed")

	application.Notify(ctx, uc.publisher, event.StockDispensed, event.Dispensed{
		SaleNo:      sale.SaleNo,
		ProductID:   sale.ProductID,
		PaymentID:   sale.PaymentID,
		Quantity:    sale.Quantity,
		Allocations: deduction.Allocations,
		Remaining:   deduction.Remaining,
		CreatedBy:   sale.CreatedBy,
	})
	application.NotifyLowStock(ctx, uc.publisher, sale.ProductID, deduction.Remaining, uc.lowStockThreshold)

	return &DispenseResponse{Sale: ToSaleDTO(sale), Remaining: deduction.Remaining}, nil
}

// resultOf 发药结果的指标标签
func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, stock.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, dispense.ErrDuplicatePayment):
		return "duplicate"
	case apperrors.IsCode(err, apperrors.ErrCodeInvalidParams):
		return "invalid"
	default:
		return "error"
	}
}
