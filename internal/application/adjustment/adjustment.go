package adjustment

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/event"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/metrics"
	"github.com/xiebiao/pharmacy/pkg/tracing"
)

const tracerName = "pharmacy/adjustment"

// CreateAdjustmentUseCase 手工调整库存
// 锁定批次 → 计算有符号变动(减少时截断到0) → 写流水和调整记录,同一事务
type CreateAdjustmentUseCase struct {
	adjustments       adjustment.Repository
	batches           stock.BatchRepository
	stock             *stock.Service
	txManager         application.TxManager
	publisher         event.Publisher
	lowStockThreshold int
}

// NewCreateAdjustmentUseCase 创建用例
func NewCreateAdjustmentUseCase(
	adjustments adjustment.Repository,
	batches stock.BatchRepository,
	stockService *stock.Service,
	txManager application.TxManager,
	publisher event.Publisher,
	lowStockThreshold int,
) *CreateAdjustmentUseCase {
	metrics.InitMetrics()
	return &CreateAdjustmentUseCase{
		adjustments:       adjustments,
		batches:           batches,
		stock:             stockService,
		txManager:         txManager,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
	}
}

// CreateAdjustmentRequest 调整请求
type CreateAdjustmentRequest struct {
	ProductID        string
	BatchNo          string
	AdjustmentType   string
	QuantityAdjusted int
	Reason           string
	Destination      string
	CreatedBy        string
}

// Execute 执行调整
func (uc *CreateAdjustmentUseCase) Execute(ctx context.Context, req CreateAdjustmentRequest) (_ *AdjustmentDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "adjustment.Create")
	defer func() { tracing.EndSpan(span, err) }()

	t, err := adjustment.ParseType(req.AdjustmentType)
	if err != nil {
		return nil, err
	}
	a, err := adjustment.New(req.ProductID, req.BatchNo, t, req.QuantityAdjusted, req.Reason, req.Destination, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	var (
		b         *stock.Batch
		remaining int
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = uc.batches.LockByBatchNo(ctx, a.ProductID, a.BatchNo)
		if err != nil {
			return err
		}
		// 先落库拿到ID,流水引用它
		a.AppliedDelta = b.ClampDelta(a.RequestedDelta())
		if err := uc.adjustments.Create(ctx, a); err != nil {
			return err
		}
		ref := stock.Reference{Type: "adjustment", ID: strconv.FormatUint(uint64(a.ID), 10), CreatedBy: a.CreatedBy}
		if _, err := uc.stock.Adjust(ctx, b, a.AppliedDelta, stock.ChangeAdjust, ref); err != nil {
			return err
		}
		all, err := uc.batches.ListByProduct(ctx, a.ProductID)
		if err != nil {
			return err
		}
		remaining = stock.TotalQuantity(all)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.StockAdjustmentsTotal, map[string]string{"type": string(a.Type)})
	if a.Clamped() {
		logger.L().WithFields(logrus.Fields{
			"adjustment_id": a.ID,
			"batch_no":      a.BatchNo,
			"requested":     a.RequestedDelta(),
			"applied":       a.AppliedDelta,
		}).Warn("adjustment clamped at zero stock")
	}

	application.Notify(ctx, uc.publisher, event.StockAdjusted, event.Adjusted{
		AdjustmentID: a.ID,
		ProductID:    a.ProductID,
		BatchNo:      a.BatchNo,
		Type:         string(a.Type),
		Requested:    a.RequestedDelta(),
		Applied:      a.AppliedDelta,
		CreatedBy:    a.CreatedBy,
	})
	if a.AppliedDelta < 0 {
		application.NotifyLowStock(ctx, uc.publisher, a.ProductID, remaining, uc.lowStockThreshold)
	}
	return ToDTO(a, b.CurrentQuantity), nil
}

// DeleteAdjustmentUseCase 撤销调整
// 按AppliedDelta反向回补(同样截断到0),再软删除调整记录
type DeleteAdjustmentUseCase struct {
	adjustments adjustment.Repository
	batches     stock.BatchRepository
	stock       *stock.Service
	txManager   application.TxManager
	publisher   event.Publisher
}

// NewDeleteAdjustmentUseCase 创建用例
func NewDeleteAdjustmentUseCase(
	adjustments adjustment.Repository,
	batches stock.BatchRepository,
	stockService *stock.Service,
	txManager application.TxManager,
	publisher event.Publisher,
) *DeleteAdjustmentUseCase {
	return &DeleteAdjustmentUseCase{
		adjustments: adjustments,
		batches:     batches,
		stock:       stockService,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// DeleteAdjustmentResponse 撤销结果
type DeleteAdjustmentResponse struct {
	ID              uint   `json:"id"`
	ProductID       string `json:"product_id"`
	BatchNo         string `json:"batch_no"`
	Reversed        int    `json:"reversed"`
	CurrentQuantity int    `json:"current_quantity"`
}

// Execute 执行撤销
func (uc *DeleteAdjustmentUseCase) Execute(ctx context.Context, id uint, deletedBy string) (*DeleteAdjustmentResponse, error) {
	var (
		a        *adjustment.Adjustment
		b        *stock.Batch
		reversed int
	)
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = uc.adjustments.LockByID(ctx, id)
		if err != nil {
			return err
		}
		b, err = uc.batches.LockByBatchNo(ctx, a.ProductID, a.BatchNo)
		if err != nil {
			return err
		}
		if deletedBy == "" {
			deletedBy = a.CreatedBy
		}
		ref := stock.Reference{Type: "adjustment_reversal", ID: strconv.FormatUint(uint64(a.ID), 10), CreatedBy: deletedBy}
		reversed, err = uc.stock.Adjust(ctx, b, a.ReversalDelta(), stock.ChangeAdjust, ref)
		if err != nil {
			return err
		}
		return uc.adjustments.Delete(ctx, a.ID)
	})
	if err != nil {
		return nil, err
	}

	application.Notify(ctx, uc.publisher, event.StockAdjusted, event.Adjusted{
		AdjustmentID: a.ID,
		ProductID:    a.ProductID,
		BatchNo:      a.BatchNo,
		Type:         string(a.Type),
		Requested:    a.ReversalDelta(),
		Applied:      reversed,
		Reversal:     true,
		CreatedBy:    deletedBy,
	})
	return &DeleteAdjustmentResponse{
		ID:              a.ID,
		ProductID:       a.ProductID,
		BatchNo:         a.BatchNo,
		Reversed:        reversed,
		CurrentQuantity: b.CurrentQuantity,
	}, nil
}

// AdjustmentDTO 调整记录响应
type AdjustmentDTO struct {
	ID               uint   `json:"id"`
	ProductID        string `json:"product_id"`
	BatchNo          string `json:"batch_no"`
	AdjustmentType   string `json:"adjustment_type"`
	QuantityAdjusted int    `json:"quantity_adjusted"`
	AppliedDelta     int    `json:"applied_delta"`
	Clamped          bool   `json:"clamped"`
	Reason           string `json:"reason"`
	Destination      string `json:"destination,omitempty"`
	CreatedBy        string `json:"created_by"`
	CreatedAt        string `json:"created_at"`
	CurrentQuantity  *int   `json:"current_quantity,omitempty"` // 仅创建时返回
}

// ToDTO currentQuantity<0表示不返回批次数量
func ToDTO(a *adjustment.Adjustment, currentQuantity int) *AdjustmentDTO {
	dto := &AdjustmentDTO{
		ID:               a.ID,
		ProductID:        a.ProductID,
		BatchNo:          a.BatchNo,
		AdjustmentType:   string(a.Type),
		QuantityAdjusted: a.QuantityAdjusted,
		AppliedDelta:     a.AppliedDelta,
		Clamped:          a.Clamped(),
		Reason:           a.Reason,
		Destination:      a.Destination,
		CreatedBy:        a.CreatedBy,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
	if currentQuantity >= 0 {
		dto.CurrentQuantity = &currentQuantity
	}
	return dto
}

// ListAdjustmentsUseCase 调整记录列表
type ListAdjustmentsUseCase struct {
	adjustments adjustment.Repository
}

// NewListAdjustmentsUseCase 创建用例
func NewListAdjustmentsUseCase(adjustments adjustment.Repository) *ListAdjustmentsUseCase {
	return &ListAdjustmentsUseCase{adjustments: adjustments}
}

// ListAdjustmentsRequest 列表请求
type ListAdjustmentsRequest struct {
	ProductID string
	Type      string
	Page      int
	PageSize  int
}

// ListAdjustmentsResponse 分页结果
type ListAdjustmentsResponse struct {
	List     []*AdjustmentDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 类型为空时不过滤
func (uc *ListAdjustmentsUseCase) Execute(ctx context.Context, req ListAdjustmentsRequest) (*ListAdjustmentsResponse, error) {
	var t adjustment.Type
	if req.Type != "" {
		var err error
		if t, err = adjustment.ParseType(req.Type); err != nil {
			return nil, err
		}
	}
	page, size := application.Page(req.Page, req.PageSize)
	items, total, err := uc.adjustments.List(ctx, adjustment.ListParams{
		ProductID: req.ProductID,
		Type:      t,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return nil, err
	}
	list := make([]*AdjustmentDTO, len(items))
	for i, a := range items {
		list[i] = ToDTO(a, -1)
	}
	return &ListAdjustmentsResponse{List: list, Total: total, Page: page, PageSize: size}, nil
}

// GetAdjustmentUseCase 调整记录详情
type GetAdjustmentUseCase struct {
	adjustments adjustment.Repository
}

// NewGetAdjustmentUseCase 创建用例
func NewGetAdjustmentUseCase(adjustments adjustment.Repository) *GetAdjustmentUseCase {
	return &GetAdjustmentUseCase{adjustments: adjustments}
}

// Execute 执行查询
func (uc *GetAdjustmentUseCase) Execute(ctx context.Context, id uint) (*AdjustmentDTO, error) {
	a, err := uc.adjustments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(a, -1), nil
}
