package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
)

// BatchRepository 批次仓储
// Lock*方法与Find*相同:事务本身已经独占Store
type BatchRepository struct{ s *Store }

func NewBatchRepository(s *Store) *BatchRepository { return &BatchRepository{s: s} }

func (r *BatchRepository) LockByProduct(ctx context.Context, productID string) ([]*stock.Batch, error) {
	return r.ListByProduct(ctx, productID)
}

func (r *BatchRepository) LockByBatchNo(ctx context.Context, productID, batchNo string) (*stock.Batch, error) {
	return r.FindByBatchNo(ctx, productID, batchNo)
}

func (r *BatchRepository) FindByBatchNo(ctx context.Context, productID, batchNo string) (*stock.Batch, error) {
	var out *stock.Batch
	err := r.s.do(ctx, func(db *state) error {
		for _, b := range db.batches {
			if b.ProductID == productID && b.BatchNo == batchNo {
				cp := *b
				out = &cp
				return nil
			}
		}
		return stock.ErrBatchNotFound
	})
	return out, err
}

func (r *BatchRepository) Create(ctx context.Context, b *stock.Batch) error {
	return r.s.do(ctx, func(db *state) error {
		for _, existing := range db.batches {
			if existing.ProductID == b.ProductID && existing.BatchNo == b.BatchNo {
				return stock.ErrBatchDuplicate
			}
		}
		b.ID = db.next("batch")
		cp := *b
		db.batches[b.ID] = &cp
		return nil
	})
}

func (r *BatchRepository) UpdateQuantity(ctx context.Context, id uint, delta int) error {
	return r.s.do(ctx, func(db *state) error {
		b, ok := db.batches[id]
		if !ok {
			return stock.ErrBatchNotFound
		}
		if b.CurrentQuantity+delta < 0 {
			return stock.InsufficientStock(b.ProductID, b.CurrentQuantity, -delta)
		}
		b.CurrentQuantity += delta
		b.UpdatedAt = time.Now()
		return nil
	})
}

func (r *BatchRepository) UpdatePrices(ctx context.Context, b *stock.Batch) error {
	return r.s.do(ctx, func(db *state) error {
		stored, ok := db.batches[b.ID]
		if !ok {
			return stock.ErrBatchNotFound
		}
		stored.BuyingPrice = b.BuyingPrice
		stored.ProductPrice = b.ProductPrice
		stored.ExpireDate = b.ExpireDate
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *BatchRepository) ListByProduct(ctx context.Context, productID string) ([]*stock.Batch, error) {
	var out []*stock.Batch
	err := r.s.do(ctx, func(db *state) error {
		out = collectBatches(db, func(b *stock.Batch) bool { return b.ProductID == productID })
		return nil
	})
	return out, err
}

func (r *BatchRepository) List(ctx context.Context, params stock.ListParams) ([]*stock.Batch, int64, error) {
	var (
		out   []*stock.Batch
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		matched := collectBatches(db, func(b *stock.Batch) bool {
			if params.ProductID != "" && b.ProductID != params.ProductID {
				return false
			}
			return params.IncludeEmpty || b.CurrentQuantity > 0
		})
		total = int64(len(matched))
		out = paginate(matched, params.Page, params.PageSize)
		return nil
	})
	return out, total, err
}

func (r *BatchRepository) ListExpiring(ctx context.Context, before time.Time) ([]*stock.Batch, error) {
	var out []*stock.Batch
	err := r.s.do(ctx, func(db *state) error {
		out = collectBatches(db, func(b *stock.Batch) bool {
			return b.CurrentQuantity > 0 && b.HasExpiry() && !b.ExpireDate.After(before)
		})
		return nil
	})
	return out, err
}

// collectBatches 复制满足条件的批次,按FEFO顺序(有效期、批号)返回
func collectBatches(db *state, keep func(*stock.Batch) bool) []*stock.Batch {
	out := make([]*stock.Batch, 0)
	for _, b := range db.batches {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.HasExpiry() != b.HasExpiry():
			return a.HasExpiry()
		case !a.ExpireDate.Equal(b.ExpireDate):
			return a.ExpireDate.Before(b.ExpireDate)
		case a.ProductID != b.ProductID:
			return a.ProductID < b.ProductID
		default:
			return a.BatchNo < b.BatchNo
		}
	})
	return out
}

// MovementRepository 库存流水仓储
type MovementRepository struct{ s *Store }

func NewMovementRepository(s *Store) *MovementRepository { return &MovementRepository{s: s} }

func (r *MovementRepository) Create(ctx context.Context, m *stock.Movement) error {
	return r.s.do(ctx, func(db *state) error {
		m.ID = db.next("movement")
		cp := *m
		db.movements = append(db.movements, &cp)
		return nil
	})
}

// ListByProduct 按时间倒序
func (r *MovementRepository) ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*stock.Movement, int64, error) {
	var (
		out   []*stock.Movement
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		matched := make([]*stock.Movement, 0)
		for i := len(db.movements) - 1; i >= 0; i-- {
			if m := db.movements[i]; m.ProductID == productID {
				cp := *m
				matched = append(matched, &cp)
			}
		}
		total = int64(len(matched))
		out = paginate(matched, page, pageSize)
		return nil
	})
	return out, total, err
}
