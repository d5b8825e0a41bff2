package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
)

// SaleRepository 发药仓储
type SaleRepository struct{ s *Store }

func NewSaleRepository(s *Store) *SaleRepository { return &SaleRepository{s: s} }

func (r *SaleRepository) MarkPayment(ctx context.Context, productID, paymentID string) error {
	return r.s.do(ctx, func(db *state) error {
		key := productID + "\x00" + paymentID
		if _, ok := db.validations[key]; ok {
			return dispense.DuplicatePayment(productID, paymentID)
		}
		db.validations[key] = struct{}{}
		return nil
	})
}

func (r *SaleRepository) Create(ctx context.Context, sale *dispense.Sale) error {
	return r.s.do(ctx, func(db *state) error {
		sale.ID = db.next("sale")
		db.sales = append(db.sales, cloneSale(sale))
		return nil
	})
}

func (r *SaleRepository) FindBySaleNo(ctx context.Context, saleNo string) (*dispense.Sale, error) {
	var out *dispense.Sale
	err := r.s.do(ctx, func(db *state) error {
		for _, s := range db.sales {
			if s.SaleNo == saleNo {
				out = cloneSale(s)
				return nil
			}
		}
		return dispense.ErrSaleNotFound
	})
	return out, err
}

// List 按时间倒序
func (r *SaleRepository) List(ctx context.Context, params dispense.ListParams) ([]*dispense.Sale, int64, error) {
	var (
		out   []*dispense.Sale
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		matched := make([]*dispense.Sale, 0)
		for i := len(db.sales) - 1; i >= 0; i-- {
			s := db.sales[i]
			switch {
			case params.ProductID != "" && s.ProductID != params.ProductID,
				params.PatientID != "" && s.PatientID != params.PatientID,
				params.PaymentID != "" && s.PaymentID != params.PaymentID,
				!params.From.IsZero() && s.CreatedAt.Before(params.From),
				!params.To.IsZero() && !s.CreatedAt.Before(params.To):
				continue
			}
			matched = append(matched, cloneSale(s))
		}
		total = int64(len(matched))
		out = paginate(matched, params.Page, params.PageSize)
		return nil
	})
	return out, total, err
}

func cloneSale(s *dispense.Sale) *dispense.Sale {
	cp := *s
	cp.Items = slices.Clone(s.Items)
	return &cp
}

// AdjustmentRepository 库存调整仓储
type AdjustmentRepository struct{ s *Store }

func NewAdjustmentRepository(s *Store) *AdjustmentRepository { return &AdjustmentRepository{s: s} }

func (r *AdjustmentRepository) Create(ctx context.Context, a *adjustment.Adjustment) error {
	return r.s.do(ctx, func(db *state) error {
		a.ID = db.next("adjustment")
		cp := *a
		db.adjustments[a.ID] = &cp
		return nil
	})
}

func (r *AdjustmentRepository) LockByID(ctx context.Context, id uint) (*adjustment.Adjustment, error) {
	return r.FindByID(ctx, id)
}

func (r *AdjustmentRepository) FindByID(ctx context.Context, id uint) (*adjustment.Adjustment, error) {
	var out *adjustment.Adjustment
	err := r.s.do(ctx, func(db *state) error {
		a, ok := db.adjustments[id]
		if _, gone := db.deleted[id]; !ok || gone {
			return adjustment.ErrAdjustmentNotFound
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *AdjustmentRepository) Delete(ctx context.Context, id uint) error {
	return r.s.do(ctx, func(db *state) error {
		if _, gone := db.deleted[id]; gone {
			return adjustment.ErrAdjustmentNotFound
		}
		if _, ok := db.adjustments[id]; !ok {
			return adjustment.ErrAdjustmentNotFound
		}
		db.deleted[id] = struct{}{}
		return nil
	})
}

// List 按ID倒序,不含已删除
func (r *AdjustmentRepository) List(ctx context.Context, params adjustment.ListParams) ([]*adjustment.Adjustment, int64, error) {
	var (
		out   []*adjustment.Adjustment
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		matched := make([]*adjustment.Adjustment, 0)
		for id, a := range db.adjustments {
			if _, gone := db.deleted[id]; gone {
				continue
			}
			if params.ProductID != "" && a.ProductID != params.ProductID {
				continue
			}
			if params.Type != "" && a.Type != params.Type {
				continue
			}
			cp := *a
			matched = append(matched, &cp)
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
		total = int64(len(matched))
		out = paginate(matched, params.Page, params.PageSize)
		return nil
	})
	return out, total, err
}
