package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/dispense"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// saleRepository 发药仓储(MySQL)
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建发药仓储
func NewSaleRepository(db *gorm.DB) dispense.Repository {
	return &saleRepository{db: db}
}

// MarkPayment 依赖uk_product_payment唯一索引
// 两个并发请求同时插入时,后者在唯一索引上等待,前者提交后报1062
func (r *saleRepository) MarkPayment(ctx context.Context, productID, paymentID string) error {
	model := &PaymentValidationModel{ProductID: productID, PaymentID: paymentID}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return dispense.DuplicatePayment(productID, paymentID)
		}
		return apperrors.Wrap(err, "写入付款标记失败")
	}
	return nil
}

func (r *saleRepository) Create(ctx context.Context, s *dispense.Sale) error {
	model := &SaleModel{
		SaleNo:                s.SaleNo,
		ProductID:             s.ProductID,
		PaymentID:             s.PaymentID,
		PatientID:             s.PatientID,
		TransactionID:         s.TransactionID,
		TransactionStatus:     s.TransactionStatus,
		PaymentMethod:         s.PaymentMethod,
		ApprovedPaymentMethod: s.ApprovedPaymentMethod,
		Quantity:              s.Quantity,
		UnitPrice:             s.UnitPrice,
		TotalPrice:            s.TotalPrice,
		CreatedBy:             s.CreatedBy,
		CreatedAt:             s.CreatedAt,
		Items:                 make([]SaleItemModel, len(s.Items)),
	}
	for i, it := range s.Items {
		model.Items[i] = SaleItemModel{
			BatchNo:     it.BatchNo,
			Quantity:    it.Quantity,
			BuyingPrice: it.BuyingPrice,
			UnitPrice:   it.UnitPrice,
			ExpireDate:  datePtr(it.ExpireDate),
		}
	}

	// GORM会自动插入关联的Items
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存发药记录失败")
	}
	s.ID = model.ID
	return nil
}

func (r *saleRepository) FindBySaleNo(ctx context.Context, saleNo string) (*dispense.Sale, error) {
	var model SaleModel
	err := dbFrom(ctx, r.db).Preload("Items").Where("sale_no = ?", saleNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dispense.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "查询发药记录失败")
	}
	return toSaleEntity(&model), nil
}

func (r *saleRepository) List(ctx context.Context, params dispense.ListParams) ([]*dispense.Sale, int64, error) {
	query := dbFrom(ctx, r.db).Model(&SaleModel{})
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.PatientID != "" {
		query = query.Where("patient_id = ?", params.PatientID)
	}
	if params.PaymentID != "" {
		query = query.Where("payment_id = ?", params.PaymentID)
	}
	if !params.From.IsZero() {
		query = query.Where("created_at >= ?", params.From)
	}
	if !params.To.IsZero() {
		query = query.Where("created_at < ?", params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计发药记录失败")
	}

	var models []SaleModel
	if err := query.Preload("Items").
		Order("id DESC").
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发药记录失败")
	}

	out := make([]*dispense.Sale, len(models))
	for i := range models {
		out[i] = toSaleEntity(&models[i])
	}
	return out, total, nil
}

func toSaleEntity(m *SaleModel) *dispense.Sale {
	s := &dispense.Sale{
		ID:                    m.ID,
		SaleNo:                m.SaleNo,
		ProductID:             m.ProductID,
		PaymentID:             m.PaymentID,
		PatientID:             m.PatientID,
		TransactionID:         m.TransactionID,
		TransactionStatus:     m.TransactionStatus,
		PaymentMethod:         m.PaymentMethod,
		ApprovedPaymentMethod: m.ApprovedPaymentMethod,
		Quantity:              m.Quantity,
		UnitPrice:             m.UnitPrice,
		TotalPrice:            m.TotalPrice,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt,
		Items:                 make([]dispense.SaleItem, len(m.Items)),
	}
	for i, it := range m.Items {
		s.Items[i] = dispense.SaleItem{
			BatchNo:     it.BatchNo,
			Quantity:    it.Quantity,
			BuyingPrice: it.BuyingPrice,
			UnitPrice:   it.UnitPrice,
			ExpireDate:  dateOf(it.ExpireDate),
		}
	}
	return s
}

// adjustmentRepository 库存调整仓储(MySQL)
type adjustmentRepository struct {
	db *gorm.DB
}

// NewAdjustmentRepository 创建调整仓储
func NewAdjustmentRepository(db *gorm.DB) adjustment.Repository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, a *adjustment.Adjustment) error {
	model := &AdjustmentModel{
		ProductID:        a.ProductID,
		BatchNo:          a.BatchNo,
		AdjustmentType:   string(a.Type),
		QuantityAdjusted: a.QuantityAdjusted,
		AppliedDelta:     a.AppliedDelta,
		Reason:           a.Reason,
		Destination:      a.Destination,
		CreatedBy:        a.CreatedBy,
		CreatedAt:        a.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存库存调整失败")
	}
	a.ID = model.ID
	return nil
}

// LockByID 已软删除的记录查不到,重复撤销返回404
func (r *adjustmentRepository) LockByID(ctx context.Context, id uint) (*adjustment.Adjustment, error) {
	return r.find(dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *adjustmentRepository) FindByID(ctx context.Context, id uint) (*adjustment.Adjustment, error) {
	return r.find(dbFrom(ctx, r.db), id)
}

func (r *adjustmentRepository) find(db *gorm.DB, id uint) (*adjustment.Adjustment, error) {
	var model AdjustmentModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, adjustment.ErrAdjustmentNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存调整失败")
	}
	return toAdjustmentEntity(&model), nil
}

func (r *adjustmentRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&AdjustmentModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除库存调整失败")
	}
	if result.RowsAffected == 0 {
		return adjustment.ErrAdjustmentNotFound
	}
	return nil
}

func (r *adjustmentRepository) List(ctx context.Context, params adjustment.ListParams) ([]*adjustment.Adjustment, int64, error) {
	query := dbFrom(ctx, r.db).Model(&AdjustmentModel{})
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Type != "" {
		query = query.Where("adjustment_type = ?", string(params.Type))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计库存调整失败")
	}

	var models []AdjustmentModel
	if err := query.Order("id DESC").
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存调整失败")
	}

	out := make([]*adjustment.Adjustment, len(models))
	for i := range models {
		out[i] = toAdjustmentEntity(&models[i])
	}
	return out, total, nil
}

func toAdjustmentEntity(m *AdjustmentModel) *adjustment.Adjustment {
	return &adjustment.Adjustment{
		ID:               m.ID,
		ProductID:        m.ProductID,
		BatchNo:          m.BatchNo,
		Type:             adjustment.Type(m.AdjustmentType),
		QuantityAdjusted: m.QuantityAdjusted,
		AppliedDelta:     m.AppliedDelta,
		Reason:           m.Reason,
		Destination:      m.Destination,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}
