package stock

import (
	"context"
	"time"
)

// BatchRepository 批次仓储接口
// Lock*方法必须在事务内调用(ctx携带事务),锁持续到事务结束
type BatchRepository interface {
	// LockByProduct 锁定某药品的全部批次(SELECT ... FOR UPDATE),按FEFO顺序返回
	// 药品没有批次时返回空切片
	LockByProduct(ctx context.Context, productID string) ([]*Batch, error)

	// LockByBatchNo 锁定单个批次
	LockByBatchNo(ctx context.Context, productID, batchNo string) (*Batch, error)

	// FindByBatchNo 查询单个批次(不加锁)
	FindByBatchNo(ctx context.Context, productID, batchNo string) (*Batch, error)

	// Create 新建批次,(product_id, batch_no)冲突返回ErrBatchDuplicate
	Create(ctx context.Context, batch *Batch) error

	// UpdateQuantity 原子变更库存:current_quantity + delta >= 0 才更新
	// 不满足时返回ErrInsufficientStock
	UpdateQuantity(ctx context.Context, id uint, delta int) error

	// UpdatePrices 入库时刷新进价、售价和有效期
	UpdatePrices(ctx context.Context, batch *Batch) error

	// ListByProduct 某药品全部批次,FEFO顺序(不加锁)
	ListByProduct(ctx context.Context, productID string) ([]*Batch, error)

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Batch, int64, error)

	// ListExpiring 有库存且在before(含)之前到期的批次,按有效期升序
	ListExpiring(ctx context.Context, before time.Time) ([]*Batch, error)
}

// MovementRepository 库存流水仓储
type MovementRepository interface {
	Create(ctx context.Context, m *Movement) error
	ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*Movement, int64, error)
}

// ListParams 批次列表查询参数
type ListParams struct {
	ProductID    string
	IncludeEmpty bool // 是否包含库存为0的批次
	Page         int
	PageSize     int
}
