package dispense

import (
	"context"
	"time"
)

// Repository 发药仓储接口
type Repository interface {
	// MarkPayment 写入(product_id, payment_id)一次性标记
	// 已存在时返回ErrDuplicatePayment;必须与扣减在同一事务中调用
	MarkPayment(ctx context.Context, productID, paymentID string) error

	// Create 保存发药记录及批次明细
	Create(ctx context.Context, sale *Sale) error

	// FindBySaleNo 按单号查询(含明细)
	FindBySaleNo(ctx context.Context, saleNo string) (*Sale, error)

	// List 分页查询(含明细)
	List(ctx context.Context, params ListParams) ([]*Sale, int64, error)
}

// ListParams 发药记录查询参数
type ListParams struct {
	ProductID string
	PatientID string
	PaymentID string
	From      time.Time // 含
	To        time.Time // 不含
	Page      int
	PageSize  int
}
