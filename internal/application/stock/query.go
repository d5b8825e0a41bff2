package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

const dateLayout = "2006-01-02"

// BatchDTO 批次响应
type BatchDTO struct {
	ID              uint            `json:"id"`
	ProductID       string          `json:"product_id"`
	BatchNo         string          `json:"batch_no"`
	CurrentQuantity int             `json:"current_quantity"`
	BuyingPrice     decimal.Decimal `json:"buying_price"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ExpireDate      string          `json:"expire_date"`
	Expired         bool            `json:"expired"`
	DaysToExpiry    *int            `json:"days_to_expiry,omitempty"`
	UpdatedAt       string          `json:"updated_at"`
}

// ToBatchDTO 以now为基准计算是否过期
func ToBatchDTO(b *stock.Batch, now time.Time) *BatchDTO {
	dto := &BatchDTO{
		ID:              b.ID,
		ProductID:       b.ProductID,
		BatchNo:         b.BatchNo,
		CurrentQuantity: b.CurrentQuantity,
		BuyingPrice:     b.BuyingPrice,
		ProductPrice:    b.ProductPrice,
		Expired:         b.IsExpired(now),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
	if b.HasExpiry() {
		dto.ExpireDate = b.ExpireDate.Format(dateLayout)
		days := daysBetween(now, b.ExpireDate)
		dto.DaysToExpiry = &days
	}
	return dto
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

func toBatchDTOs(batches []*stock.Batch) []*BatchDTO {
	now := time.Now()
	out := make([]*BatchDTO, len(batches))
	for i, b := range batches {
		out[i] = ToBatchDTO(b, now)
	}
	return out
}

// ListBatchesUseCase 批次列表
type ListBatchesUseCase struct {
	batches stock.BatchRepository
}

// NewListBatchesUseCase 创建用例
func NewListBatchesUseCase(batches stock.BatchRepository) *ListBatchesUseCase {
	return &ListBatchesUseCase{batches: batches}
}

// ListBatchesRequest 列表请求
type ListBatchesRequest struct {
	ProductID    string
	IncludeEmpty bool
	Page         int
	PageSize     int
}

// ListBatchesResponse 列表响应
type ListBatchesResponse struct {
	List     []*BatchDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 默认不含库存为0的批次
func (uc *ListBatchesUseCase) Execute(ctx context.Context, req ListBatchesRequest) (*ListBatchesResponse, error) {
	page, size := application.Page(req.Page, req.PageSize)
	batches, total, err := uc.batches.List(ctx, stock.ListParams{
		ProductID:    req.ProductID,
		IncludeEmpty: req.IncludeEmpty,
		Page:         page,
		PageSize:     size,
	})
	if err != nil {
		return nil, err
	}
	return &ListBatchesResponse{List: toBatchDTOs(batches), Total: total, Page: page, PageSize: size}, nil
}

// ProductStockUseCase 单个药品的库存(FEFO顺序)
type ProductStockUseCase struct {
	medicines medicine.Repository
	batches   stock.BatchRepository
}

// NewProductStockUseCase 创建用例
func NewProductStockUseCase(medicines medicine.Repository, batches stock.BatchRepository) *ProductStockUseCase {
	return &ProductStockUseCase{medicines: medicines, batches: batches}
}

// ProductStock 药品库存汇总
type ProductStock struct {
	ProductID     string      `json:"product_id"`
	Name          string      `json:"name"`
	TotalQuantity int         `json:"total_quantity"`
	Batches       []*BatchDTO `json:"batches"`
}

// Execute 药品不在目录中返回404
func (uc *ProductStockUseCase) Execute(ctx context.Context, productID string) (*ProductStock, error) {
	m, err := uc.medicines.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	batches, err := uc.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductStock{
		ProductID:     m.ProductID,
		Name:          m.Name,
		TotalQuantity: stock.TotalQuantity(batches),
		Batches:       toBatchDTOs(batches),
	}, nil
}

// ExpiringUseCase 临期批次
type ExpiringUseCase struct {
	batches     stock.BatchRepository
	defaultDays int
}

// NewExpiringUseCase defaultDays来自inventory.expiry_alert_days
func NewExpiringUseCase(batches stock.BatchRepository, defaultDays int) *ExpiringUseCase {
	return &ExpiringUseCase{batches: batches, defaultDays: defaultDays}
}

// Execute 返回有库存且在days天内(含已过期)到期的批次
func (uc *ExpiringUseCase) Execute(ctx context.Context, days int) ([]*BatchDTO, error) {
	if days <= 0 {
		days = uc.defaultDays
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	before := today.AddDate(0, 0, days)

	batches, err := uc.batches.ListExpiring(ctx, before)
	if err != nil {
		return nil, err
	}
	return toBatchDTOs(batches), nil
}

// MovementsUseCase 库存流水
type MovementsUseCase struct {
	movements stock.MovementRepository
}

// NewMovementsUseCase 创建用例
func NewMovementsUseCase(movements stock.MovementRepository) *MovementsUseCase {
	return &MovementsUseCase{movements: movements}
}

// MovementDTO 流水响应
type MovementDTO struct {
	ID             uint   `json:"id"`
	ProductID      string `json:"product_id"`
	BatchNo        string `json:"batch_no"`
	ChangeType     string `json:"change_type"`
	Quantity       int    `json:"quantity"`
	BeforeQuantity int    `json:"before_quantity"`
	AfterQuantity  int    `json:"after_quantity"`
	ReferenceType  string `json:"reference_type"`
	ReferenceID    string `json:"reference_id"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
}

// MovementsResponse 分页结果
type MovementsResponse struct {
	List     []*MovementDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 按时间倒序分页
func (uc *MovementsUseCase) Execute(ctx context.Context, productID string, page, pageSize int) (*MovementsResponse, error) {
	page, size := application.Page(page, pageSize)
	items, total, err := uc.movements.ListByProduct(ctx, productID, page, size)
	if err != nil {
		return nil, err
	}
	list := make([]*MovementDTO, len(items))
	for i, m := range items {
		list[i] = &MovementDTO{
			ID:             m.ID,
			ProductID:      m.ProductID,
			BatchNo:        m.BatchNo,
			ChangeType:     string(m.ChangeType),
			Quantity:       m.Quantity,
			BeforeQuantity: m.BeforeQuantity,
			AfterQuantity:  m.AfterQuantity,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		}
	}
	return &MovementsResponse{List: list, Total: total, Page: page, PageSize: size}, nil
}
