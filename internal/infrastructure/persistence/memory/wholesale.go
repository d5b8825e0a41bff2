package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
)

// OrderRepository 批发订单仓储
type OrderRepository struct{ s *Store }

func NewOrderRepository(s *Store) *OrderRepository { return &OrderRepository{s: s} }

func (r *OrderRepository) Create(ctx context.Context, o *wholesale.Order) error {
	return r.s.do(ctx, func(db *state) error {
		o.ID = db.next("order")
		for i := range o.Items {
			o.Items[i].ID = db.next("order_item")
		}
		db.orders[o.ID] = cloneOrder(o)
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*wholesale.Order, error) {
	var out *wholesale.Order
	err := r.s.do(ctx, func(db *state) error {
		o, ok := db.orders[id]
		if !ok {
			return wholesale.ErrOrderNotFound
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *OrderRepository) LockByID(ctx context.Context, id uint) (*wholesale.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *wholesale.Order) error {
	return r.s.do(ctx, func(db *state) error {
		stored, ok := db.orders[o.ID]
		if !ok {
			return wholesale.ErrOrderNotFound
		}
		stored.Status = o.Status
		stored.TotalAmount = o.TotalAmount
		stored.PaidAmount = o.PaidAmount
		stored.BalanceAmount = o.BalanceAmount
		stored.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *OrderRepository) AddPayment(ctx context.Context, o *wholesale.Order, p *wholesale.Payment) error {
	return r.s.do(ctx, func(db *state) error {
		stored, ok := db.orders[o.ID]
		if !ok {
			return wholesale.ErrOrderNotFound
		}
		p.ID = db.next("payment")
		stored.Payments = append(stored.Payments, *p)
		stored.PaidAmount = o.PaidAmount
		stored.BalanceAmount = o.BalanceAmount
		stored.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *OrderRepository) AddDelivery(ctx context.Context, orderID uint, d *wholesale.Delivery) error {
	return r.s.do(ctx, func(db *state) error {
		stored, ok := db.orders[orderID]
		if !ok {
			return wholesale.ErrOrderNotFound
		}
		d.ID = db.next("delivery")
		stored.Deliveries = append(stored.Deliveries, *d)
		return nil
	})
}

func (r *OrderRepository) UpdateDelivery(ctx context.Context, orderID uint, d *wholesale.Delivery) error {
	return r.s.do(ctx, func(db *state) error {
		stored, ok := db.orders[orderID]
		if !ok {
			return wholesale.ErrOrderNotFound
		}
		for i := range stored.Deliveries {
			if stored.Deliveries[i].ID == d.ID {
				stored.Deliveries[i] = *d
				return nil
			}
		}
		return wholesale.ErrDeliveryNotFound
	})
}

func (r *OrderRepository) List(ctx context.Context, params wholesale.ListParams) ([]*wholesale.Order, int64, error) {
	var (
		out   []*wholesale.Order
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		keyword := strings.ToLower(params.Keyword)
		matched := make([]*wholesale.Order, 0)
		for _, o := range db.orders {
			if params.Status != "" && o.Status != params.Status {
				continue
			}
			if keyword != "" &&
				!strings.Contains(strings.ToLower(o.OrderNo), keyword) &&
				!strings.Contains(strings.ToLower(o.CustomerName), keyword) {
				continue
			}
			matched = append(matched, cloneOrder(o))
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
		total = int64(len(matched))
		out = paginate(matched, params.Page, params.PageSize)
		return nil
	})
	return out, total, err
}

func cloneOrder(o *wholesale.Order) *wholesale.Order {
	cp := *o
	cp.Items = make([]wholesale.Item, len(o.Items))
	for i, it := range o.Items {
		it.Allocations = slices.Clone(it.Allocations)
		cp.Items[i] = it
	}
	cp.Payments = slices.Clone(o.Payments)
	cp.Deliveries = slices.Clone(o.Deliveries)
	return &cp
}
