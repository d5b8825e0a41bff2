package stock

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Allocation 一次扣减落在某个批次上的数量
type Allocation struct {
	BatchID      uint            `json:"batch_id"`
	BatchNo      string          `json:"batch_no"`
	Quantity     int             `json:"quantity"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ExpireDate   time.Time       `json:"expire_date"`
}

// PlanFEFO 按先到期先出计算扣减方案(纯函数,不修改batches)
// 1. 按有效期升序排列(无有效期的最后,同日按批号)
// 2. 总量不足时返回ErrInsufficientStock,不给出任何分配
// 3. 依次从每个批次扣 min(剩余, 仍需数量),直到满足
func PlanFEFO(batches []*Batch, quantity int) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	ordered := slices.Clone(batches)
	slices.SortStableFunc(ordered, func(a, b *Batch) int {
		switch {
		case expiresBefore(a, b):
			return -1
		case expiresBefore(b, a):
			return 1
		default:
			return 0
		}
	})

	available := TotalQuantity(ordered)
	if available < quantity {
		return nil, InsufficientStock(productOf(ordered), available, quantity)
	}

	allocations := make([]Allocation, 0, len(ordered))
	need := quantity
	for _, b := range ordered {
		if need == 0 {
			break
		}
		if b.CurrentQuantity <= 0 {
			continue
		}
		take := min(b.CurrentQuantity, need)
		allocations = append(allocations, Allocation{
			BatchID:      b.ID,
			BatchNo:      b.BatchNo,
			Quantity:     take,
			BuyingPrice:  b.BuyingPrice,
			ProductPrice: b.ProductPrice,
			ExpireDate:   b.ExpireDate,
		})
		need -= take
	}
	return allocations, nil
}

// TotalQuantity 批次库存合计(负数按0计)
func TotalQuantity(batches []*Batch) int {
	total := 0
	for _, b := range batches {
		if b.CurrentQuantity > 0 {
			total += b.CurrentQuantity
		}
	}
	return total
}

// SumAllocated 分配数量合计
func SumAllocated(allocations []Allocation) int {
	total := 0
	for _, a := range allocations {
		total += a.Quantity
	}
	return total
}

func productOf(batches []*Batch) string {
	if len(batches) == 0 {
		return ""
	}
	return batches[0].ProductID
}
