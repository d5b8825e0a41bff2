package wholesale

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
)

// GetOrderUseCase 订单详情(含明细、收款、配送)
type GetOrderUseCase struct {
	orders wholesale.Repository
}

// NewGetOrderUseCase 创建用例
func NewGetOrderUseCase(orders wholesale.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders}
}

// Execute 执行查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, id uint) (*OrderDTO, error) {
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(o), nil
}

// ListOrdersUseCase 订单列表
type ListOrdersUseCase struct {
	orders wholesale.Repository
}

// NewListOrdersUseCase 创建用例
func NewListOrdersUseCase(orders wholesale.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders}
}

// ListOrdersRequest 列表请求
type ListOrdersRequest struct {
	Status   string
	Keyword  string
	Page     int
	PageSize int
}

// ListOrdersResponse 分页结果
type ListOrdersResponse struct {
	List     []*OrderDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 状态为空时不过滤
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	var status wholesale.Status
	if req.Status != "" {
		var err error
		if status, err = wholesale.ParseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	page, size := application.Page(req.Page, req.PageSize)
	items, total, err := uc.orders.List(ctx, wholesale.ListParams{
		Status:   status,
		Keyword:  req.Keyword,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, err
	}
	list := make([]*OrderDTO, len(items))
	for i, o := range items {
		list[i] = ToOrderDTO(o)
	}
	return &ListOrdersResponse{List: list, Total: total, Page: page, PageSize: size}, nil
}
