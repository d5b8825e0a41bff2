package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

const tracerName = "pharmacy/stock"

// ReceiveUseCase 采购入库
type ReceiveUseCase struct {
	medicines medicine.Repository
	stock     *stock.Service
	txManager application.TxManager
	publisher event.Publisher
}

// NewReceiveUseCase 创建入库用例
func NewReceiveUseCase(
	medicines medicine.Repository,
	stockService *stock.Service,
	txManager application.TxManager,
	publisher event.Publisher,
) *ReceiveUseCase {
	return &ReceiveUseCase{
		medicines: medicines,
		stock:     stockService,
		txManager: txManager,
		publisher: publisher,
	}
}

// ReceiveRequest 入库请求
type ReceiveRequest struct {
	ProductID    string
	BatchNo      string
	Quantity     int
	BuyingPrice  decimal.Decimal
	ProductPrice decimal.Decimal
	ExpireDate   time.Time
	CreatedBy    string
}

// Execute 药品必须已在目录中;批次不存在则新建,存在则累加
func (uc *ReceiveUseCase) Execute(ctx context.Context, req ReceiveRequest) (_ *BatchDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "stock.Receive")
	defer func() { tracing.EndSpan(span, err) }()

	if _, err := uc.medicines.FindByProductID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	ref := stock.Reference{Type: "receipt", ID: uuid.NewString(), CreatedBy: req.CreatedBy}
	var b *stock.Batch
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = uc.stock.Receive(ctx, stock.Receipt{
			ProductID:    req.ProductID,
			BatchNo:      req.BatchNo,
			Quantity:     req.Quantity,
			BuyingPrice:  req.BuyingPrice,
			ProductPrice: req.ProductPrice,
			ExpireDate:   req.ExpireDate,
		}, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	application.Notify(ctx, uc.publisher, event.StockReceived, event.Received{
		ProductID:  b.ProductID,
		BatchNo:    b.BatchNo,
		Delta:      req.Quantity,
		Quantity:   b.CurrentQuantity,
		ExpireDate: b.ExpireDate,
		Source:     "receipt",
		CreatedBy:  req.CreatedBy,
	})
	return ToBatchDTO(b, time.Now()), nil
}

// StockTakeUseCase 盘点
type StockTakeUseCase struct {
	stock             *stock.Service
	batches           stock.BatchRepository
	txManager         application.TxManager
	publisher         event.Publisher
	lowStockThreshold int
}

// NewStockTakeUseCase 创建盘点用例
func NewStockTakeUseCase(
	stockService *stock.Service,
	batches stock.BatchRepository,
	txManager application.TxManager,
	publisher event.Publisher,
	lowStockThreshold int,
) *StockTakeUseCase {
	return &StockTakeUseCase{
		stock:             stockService,
		batches:           batches,
		txManager:         txManager,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
	}
}

// StockTakeRequest 盘点请求
type StockTakeRequest struct {
	ProductID       string
	BatchNo         string
	CountedQuantity int
	Reason          string
	CreatedBy       string
}

// StockTakeResponse 盘点结果
type StockTakeResponse struct {
	Batch      *BatchDTO `json:"batch"`
	Difference int       `json:"difference"` // 实盘 - 账面
	Reason     string    `json:"reason,omitempty"`
}

// Execute 把批次数量改为实盘数
func (uc *StockTakeUseCase) Execute(ctx context.Context, req StockTakeRequest) (*StockTakeResponse, error) {
	ref := stock.Reference{Type: "stock_taking", ID: uuid.NewString(), CreatedBy: req.CreatedBy}

	var (
		b         *stock.Batch
		diff      int
		remaining int
	)
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		b, diff, err = uc.stock.StockTake(ctx, req.ProductID, req.BatchNo, req.CountedQuantity, ref)
		if err != nil {
			return err
		}
		all, err := uc.batches.ListByProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		remaining = stock.TotalQuantity(all)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if diff != 0 {
		application.Notify(ctx, uc.publisher, event.StockReceived, event.Received{
			ProductID:  b.ProductID,
			BatchNo:    b.BatchNo,
			Delta:      diff,
			Quantity:   b.CurrentQuantity,
			ExpireDate: b.ExpireDate,
			Source:     "stock_taking",
			CreatedBy:  req.CreatedBy,
		})
		if diff < 0 {
			application.NotifyLowStock(ctx, uc.publisher, b.ProductID, remaining, uc.lowStockThreshold)
		}
	}

	return &StockTakeResponse{
		Batch:      ToBatchDTO(b, time.Now()),
		Difference: diff,
		Reason:     req.Reason,
	}, nil
}
