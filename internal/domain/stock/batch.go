package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch 药品批次库存(聚合根)
// (ProductID, BatchNo)唯一;CurrentQuantity任何时刻都不小于0
type Batch struct {
	ID              uint
	ProductID       string
	BatchNo         string
	CurrentQuantity int
	BuyingPrice     decimal.Decimal // 进价
	ProductPrice    decimal.Decimal // 售价
	ExpireDate      time.Time       // 零值表示无有效期,FEFO排在最后
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBatch 创建批次(入库或盘点时)
func NewBatch(productID, batchNo string, quantity int, buyingPrice, productPrice decimal.Decimal, expireDate time.Time) (*Batch, error) {
	if productID == "" || batchNo == "" {
		return nil, ErrInvalidBatch
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if buyingPrice.IsNegative() || productPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	now := time.Now()
	return &Batch{
		ProductID:       productID,
		BatchNo:         batchNo,
		CurrentQuantity: quantity,
		BuyingPrice:     buyingPrice,
		ProductPrice:    productPrice,
		ExpireDate:      expireDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// HasExpiry 是否设置了有效期
func (b *Batch) HasExpiry() bool {
	return !b.ExpireDate.IsZero()
}

// IsExpired 在at时刻是否已过期(有效期当天仍可用)
func (b *Batch) IsExpired(at time.Time) bool {
	if !b.HasExpiry() {
		return false
	}
	return dateOf(at).After(dateOf(b.ExpireDate))
}

// ClampDelta 将变动量截断到不会使库存为负
// 返回实际生效的变动量,如库存3时-5截断为-3
func (b *Batch) ClampDelta(delta int) int {
	if delta < 0 && -delta > b.CurrentQuantity {
		return -b.CurrentQuantity
	}
	return delta
}

// expiresBefore FEFO排序:有效期早的在前,无有效期的在最后,同日按批号
func expiresBefore(a, b *Batch) bool {
	switch {
	case a.HasExpiry() && !b.HasExpiry():
		return true
	case !a.HasExpiry() && b.HasExpiry():
		return false
	case !a.ExpireDate.Equal(b.ExpireDate):
		return a.ExpireDate.Before(b.ExpireDate)
	default:
		return a.BatchNo < b.BatchNo
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
