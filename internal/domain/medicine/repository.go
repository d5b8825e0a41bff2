package medicine

import (
	"context"
)

// Repository 药品目录仓储接口
type Repository interface {
	// Create 创建药品,ProductID重复返回ErrProductIDDuplicate
	Create(ctx context.Context, m *Medicine) error

	// FindByProductID 按药品编号查询
	FindByProductID(ctx context.Context, productID string) (*Medicine, error)

	// Update 保存全部可变字段
	Update(ctx context.Context, m *Medicine) error

	// Upsert 按ProductID插入或更新(目录导入),返回是否为新建
	Upsert(ctx context.Context, m *Medicine) (bool, error)

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Medicine, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 匹配编号、名称
	Category string
}
