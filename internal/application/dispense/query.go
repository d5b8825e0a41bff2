package dispense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
)

// SaleDTO 发药记录,字段名与收银端约定一致(Payment_ID、Patient_ID)
type SaleDTO struct {
	SaleNo                string          `json:"sale_no"`
	ProductID             string          `json:"product_id"`
	Quantity              int             `json:"quantity"`
	PaymentID             string          `json:"Payment_ID"`
	PatientID             string          `json:"Patient_ID"`
	TransactionID         string          `json:"transaction_id"`
	TransactionStatus     string          `json:"transaction_status"`
	PaymentMethod         string          `json:"payment_method"`
	ApprovedPaymentMethod string          `json:"approved_payment_method"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	CreatedBy             string          `json:"created_by"`
	Allocations           []AllocationDTO `json:"allocations"`
	CreatedAt             string          `json:"created_at"`
}

// AllocationDTO 发药在某个批次上的扣减
type AllocationDTO struct {
	BatchNo     string          `json:"batch_no"`
	Quantity    int             `json:"quantity"`
	BuyingPrice decimal.Decimal `json:"buying_price"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpireDate  string          `json:"expire_date,omitempty"`
}

// ToSaleDTO 领域实体 → 响应DTO
func ToSaleDTO(s *dispense.Sale) *SaleDTO {
	allocations := make([]AllocationDTO, len(s.Items))
	for i, it := range s.Items {
		allocations[i] = AllocationDTO{
			BatchNo:     it.BatchNo,
			Quantity:    it.Quantity,
			BuyingPrice: it.BuyingPrice,
			UnitPrice:   it.UnitPrice,
		}
		if !it.ExpireDate.IsZero() {
			allocations[i].ExpireDate = it.ExpireDate.Format("2006-01-02")
		}
	}
	return &SaleDTO{
		SaleNo:                s.SaleNo,
		ProductID:             s.ProductID,
		Quantity:              s.Quantity,
		PaymentID:             s.PaymentID,
		PatientID:             s.PatientID,
		TransactionID:         s.TransactionID,
		TransactionStatus:     s.TransactionStatus,
		PaymentMethod:         s.PaymentMethod,
		ApprovedPaymentMethod: s.ApprovedPaymentMethod,
		UnitPrice:             s.UnitPrice,
		TotalPrice:            s.TotalPrice,
		CreatedBy:             s.CreatedBy,
		Allocations:           allocations,
		CreatedAt:             s.CreatedAt.Format(time.RFC3339),
	}
}

// ListSalesRequest 发药记录查询
type ListSalesRequest struct {
	ProductID string
	PatientID string
	PaymentID string
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

func (r ListSalesRequest) params() dispense.ListParams {
	page, size := application.Page(r.Page, r.PageSize)
	return dispense.ListParams{
		ProductID: r.ProductID,
		PatientID: r.PatientID,
		PaymentID: r.PaymentID,
		From:      r.From,
		To:        r.To,
		Page:      page,
		PageSize:  size,
	}
}

// ListSalesResponse 分页结果
type ListSalesResponse struct {
	List     []*SaleDTO
	Total    int64
	Page     int
	PageSize int
}

// ListSalesUseCase 已发药列表(发药明细视图)
type ListSalesUseCase struct {
	sales dispense.Repository
}

// NewListSalesUseCase 创建用例
func NewListSalesUseCase(sales dispense.Repository) *ListSalesUseCase {
	return &ListSalesUseCase{sales: sales}
}

// Execute 执行查询
func (uc *ListSalesUseCase) Execute(ctx context.Context, req ListSalesRequest) (*ListSalesResponse, error) {
	params := req.params()
	items, total, err := uc.sales.List(ctx, params)
	if err != nil {
		return nil, err
	}
	list := make([]*SaleDTO, len(items))
	for i, s := range items {
		list[i] = ToSaleDTO(s)
	}
	return &ListSalesResponse{List: list, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// GetSaleUseCase 单条发药记录
type GetSaleUseCase struct {
	sales dispense.Repository
}

// NewGetSaleUseCase 创建用例
func NewGetSaleUseCase(sales dispense.Repository) *GetSaleUseCase {
	return &GetSaleUseCase{sales: sales}
}

// Execute 执行查询
func (uc *GetSaleUseCase) Execute(ctx context.Context, saleNo string) (*SaleDTO, error) {
	s, err := uc.sales.FindBySaleNo(ctx, saleNo)
	if err != nil {
		return nil, err
	}
	return ToSaleDTO(s), nil
}

// ListApprovalsResponse 付款审批分页结果
type ListApprovalsResponse struct {
	List     []dispense.PaymentApproval
	Total    int64
	Page     int
	PageSize int
}

// ListApprovalsUseCase 付款审批视图(由发药记录投影)
type ListApprovalsUseCase struct {
	sales dispense.Repository
}

// NewListApprovalsUseCase 创建用例
func NewListApprovalsUseCase(sales dispense.Repository) *ListApprovalsUseCase {
	return &ListApprovalsUseCase{sales: sales}
}

// Execute 执行查询
func (uc *ListApprovalsUseCase) Execute(ctx context.Context, req ListSalesRequest) (*ListApprovalsResponse, error) {
	params := req.params()
	items, total, err := uc.sales.List(ctx, params)
	if err != nil {
		return nil, err
	}
	list := make([]dispense.PaymentApproval, len(items))
	for i, s := range items {
		list[i] = s.Approval()
	}
	return &ListApprovalsResponse{List: list, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}
