package adjustment

import (
	"context"
)

// Repository 库存调整仓储接口
type Repository interface {
	Create(ctx context.Context, a *Adjustment) error

	// LockByID 锁定调整记录,防止并发重复撤销
	LockByID(ctx context.Context, id uint) (*Adjustment, error)

	FindByID(ctx context.Context, id uint) (*Adjustment, error)

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, params ListParams) ([]*Adjustment, int64, error)
}

// ListParams 查询参数
type ListParams struct {
	ProductID string
	Type      Type
	Page      int
	PageSize  int
}
