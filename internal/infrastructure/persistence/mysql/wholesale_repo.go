package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// wholesaleRepository 批发订单仓储(MySQL)
type wholesaleRepository struct {
	db *gorm.DB
}

// NewWholesaleRepository 创建批发订单仓储
func NewWholesaleRepository(db *gorm.DB) wholesale.Repository {
	return &wholesaleRepository{db: db}
}

// Create 订单、明细、批次分配一起插入
// 必须在事务中调用(和库存扣减同一事务)
func (r *wholesaleRepository) Create(ctx context.Context, o *wholesale.Order) error {
	model := toOrderModel(o)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.Wrap(err, "订单号重复")
		}
		return apperrors.Wrap(err, "创建批发订单失败")
	}
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
	}
	return nil
}

func (r *wholesaleRepository) FindByID(ctx context.Context, id uint) (*wholesale.Order, error) {
	return r.load(dbFrom(ctx, r.db), id, false)
}

// LockByID 先锁订单行,再加载关联
func (r *wholesaleRepository) LockByID(ctx context.Context, id uint) (*wholesale.Order, error) {
	return r.load(dbFrom(ctx, r.db), id, true)
}

func (r *wholesaleRepository) load(db *gorm.DB, id uint, lock bool) (*wholesale.Order, error) {
	if lock {
		var locked WholesaleOrderModel
		if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&locked, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, wholesale.ErrOrderNotFound
			}
			return nil, apperrors.Wrap(err, "锁定批发订单失败")
		}
	}

	var model WholesaleOrderModel
	err := db.Preload("Items.Allocations").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wholesale.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询批发订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *wholesaleRepository) UpdateStatus(ctx context.Context, o *wholesale.Order) error {
	result := dbFrom(ctx, r.db).Model(&WholesaleOrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":         string(o.Status),
		"total_amount":   o.TotalAmount,
		"paid_amount":    o.PaidAmount,
		"balance_amount": o.BalanceAmount,
		"updated_at":     o.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新批发订单失败")
	}
	if result.RowsAffected == 0 {
		return wholesale.ErrOrderNotFound
	}
	return nil
}

func (r *wholesaleRepository) AddPayment(ctx context.Context, o *wholesale.Order, p *wholesale.Payment) error {
	db := dbFrom(ctx, r.db)
	model := &WholesalePaymentModel{
		OrderID:    o.ID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		CreatedAt:  p.CreatedAt,
	}
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存收款记录失败")
	}
	p.ID = model.ID
	return r.UpdateStatus(ctx, o)
}

func (r *wholesaleRepository) AddDelivery(ctx context.Context, orderID uint, d *wholesale.Delivery) error {
	model := &WholesaleDeliveryModel{
		OrderID:     orderID,
		DeliveryNo:  d.DeliveryNo,
		Address:     d.Address,
		DeliveredBy: d.DeliveredBy,
		Status:      string(d.Status),
		ScheduledAt: d.ScheduledAt,
		DeliveredAt: d.DeliveredAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存配送记录失败")
	}
	d.ID = model.ID
	return nil
}

func (r *wholesaleRepository) UpdateDelivery(ctx context.Context, orderID uint, d *wholesale.Delivery) error {
	result := dbFrom(ctx, r.db).Model(&WholesaleDeliveryModel{}).
		Where("id = ? AND order_id = ?", d.ID, orderID).
		Updates(map[string]interface{}{
			"status":       string(d.Status),
			"delivered_by": d.DeliveredBy,
			"delivered_at": d.DeliveredAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新配送记录失败")
	}
	if result.RowsAffected == 0 {
		return wholesale.ErrDeliveryNotFound
	}
	return nil
}

func (r *wholesaleRepository) List(ctx context.Context, params wholesale.ListParams) ([]*wholesale.Order, int64, error) {
	query := dbFrom(ctx, r.db).Model(&WholesaleOrderModel{})
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("order_no LIKE ? OR customer_name LIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计批发订单失败")
	}

	var models []WholesaleOrderModel
	if err := query.Preload("Items.Allocations").Preload("Payments").Preload("Deliveries").
		Order("id DESC").
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批发订单失败")
	}

	out := make([]*wholesale.Order, len(models))
	for i := range models {
		out[i] = toOrderEntity(&models[i])
	}
	return out, total, nil
}

func toOrderModel(o *wholesale.Order) *WholesaleOrderModel {
	model := &WholesaleOrderModel{
		OrderNo:       o.OrderNo,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		PaidAmount:    o.PaidAmount,
		BalanceAmount: o.BalanceAmount,
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         make([]WholesaleItemModel, len(o.Items)),
	}
	for i, it := range o.Items {
		allocations := make([]WholesaleAllocationModel, len(it.Allocations))
		for j, a := range it.Allocations {
			allocations[j] = WholesaleAllocationModel{
				BatchID:      a.BatchID,
				BatchNo:      a.BatchNo,
				Quantity:     a.Quantity,
				BuyingPrice:  a.BuyingPrice,
				ProductPrice: a.ProductPrice,
				ExpireDate:   datePtr(a.ExpireDate),
			}
		}
		model.Items[i] = WholesaleItemModel{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Allocations: allocations,
		}
	}
	return model
}

func toOrderEntity(m *WholesaleOrderModel) *wholesale.Order {
	o := &wholesale.Order{
		ID:            m.ID,
		OrderNo:       m.OrderNo,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		Status:        wholesale.Status(m.Status),
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		BalanceAmount: m.BalanceAmount,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Items:         make([]wholesale.Item, len(m.Items)),
		Payments:      make([]wholesale.Payment, len(m.Payments)),
		Deliveries:    make([]wholesale.Delivery, len(m.Deliveries)),
	}
	for i, it := range m.Items {
		allocations := make([]stock.Allocation, len(it.Allocations))
		for j, a := range it.Allocations {
			allocations[j] = stock.Allocation{
				BatchID:      a.BatchID,
				BatchNo:      a.BatchNo,
				Quantity:     a.Quantity,
				BuyingPrice:  a.BuyingPrice,
				ProductPrice: a.ProductPrice,
				ExpireDate:   dateOf(a.ExpireDate),
			}
		}
		o.Items[i] = wholesale.Item{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Allocations: allocations,
		}
	}
	for i, p := range m.Payments {
		o.Payments[i] = wholesale.Payment{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			ReceivedBy: p.ReceivedBy,
			CreatedAt:  p.CreatedAt,
		}
	}
	for i, d := range m.Deliveries {
		o.Deliveries[i] = wholesale.Delivery{
			ID:          d.ID,
			DeliveryNo:  d.DeliveryNo,
			Address:     d.Address,
			DeliveredBy: d.DeliveredBy,
			Status:      wholesale.DeliveryStatus(d.Status),
			ScheduledAt: d.ScheduledAt,
			DeliveredAt: d.DeliveredAt,
		}
	}
	return o
}
