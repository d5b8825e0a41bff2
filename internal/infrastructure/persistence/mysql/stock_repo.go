package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/stock"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// fefoOrder 无有效期的批次排在最后
const fefoOrder = "expire_date IS NULL, expire_date ASC, batch_no ASC"

// batchRepository 批次仓储(MySQL)
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建批次仓储
func NewBatchRepository(db *gorm.DB) stock.BatchRepository {
	return &batchRepository{db: db}
}

// LockByProduct SELECT ... WHERE product_id = ? ORDER BY ... FOR UPDATE
// 锁住该药品的全部批次,并发发药按药品串行
func (r *batchRepository) LockByProduct(ctx context.Context, productID string) ([]*stock.Batch, error) {
	var models []BatchModel
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order(fefoOrder).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定批次失败")
	}
	return toBatchEntities(models), nil
}

func (r *batchRepository) LockByBatchNo(ctx context.Context, productID, batchNo string) (*stock.Batch, error) {
	return r.findOne(dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), productID, batchNo)
}

func (r *batchRepository) FindByBatchNo(ctx context.Context, productID, batchNo string) (*stock.Batch, error) {
	return r.findOne(dbFrom(ctx, r.db), productID, batchNo)
}

func (r *batchRepository) findOne(db *gorm.DB, productID, batchNo string) (*stock.Batch, error) {
	var model BatchModel
	err := db.Where("product_id = ? AND batch_no = ?", productID, batchNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stock.ErrBatchNotFound
		}
		return nil, apperrors.Wrap(err, "查询批次失败")
	}
	return toBatchEntity(&model), nil
}

func (r *batchRepository) Create(ctx context.Context, b *stock.Batch) error {
	model := &BatchModel{
		ProductID:       b.ProductID,
		BatchNo:         b.BatchNo,
		CurrentQuantity: b.CurrentQuantity,
		BuyingPrice:     b.BuyingPrice,
		ProductPrice:    b.ProductPrice,
		ExpireDate:      datePtr(b.ExpireDate),
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return stock.ErrBatchDuplicate
		}
		return apperrors.Wrap(err, "创建批次失败")
	}
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateQuantity 条件更新,即使调用方忘了加锁也不会扣成负数
// UPDATE medicine_batches SET current_quantity = current_quantity + ? WHERE id = ? AND current_quantity + ? >= 0
func (r *batchRepository) UpdateQuantity(ctx context.Context, id uint, delta int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BatchModel{}).
		Where("id = ? AND current_quantity + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"current_quantity": gorm.Expr("current_quantity + ?", delta),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 区分批次不存在与库存不足
	var model BatchModel
	if err := db.Select("product_id", "current_quantity").First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stock.ErrBatchNotFound
		}
		return apperrors.Wrap(err, "查询批次失败")
	}
	return stock.InsufficientStock(model.ProductID, model.CurrentQuantity, -delta)
}

func (r *batchRepository) UpdatePrices(ctx context.Context, b *stock.Batch) error {
	err := dbFrom(ctx, r.db).Model(&BatchModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"buying_price":  b.BuyingPrice,
		"product_price": b.ProductPrice,
		"expire_date":   datePtr(b.ExpireDate),
		"updated_at":    time.Now(),
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新批次价格失败")
	}
	return nil
}

func (r *batchRepository) ListByProduct(ctx context.Context, productID string) ([]*stock.Batch, error) {
	var models []BatchModel
	if err := dbFrom(ctx, r.db).Where("product_id = ?", productID).Order(fefoOrder).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询批次失败")
	}
	return toBatchEntities(models), nil
}

func (r *batchRepository) List(ctx context.Context, params stock.ListParams) ([]*stock.Batch, int64, error) {
	query := dbFrom(ctx, r.db).Model(&BatchModel{})
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if !params.IncludeEmpty {
		query = query.Where("current_quantity > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计批次失败")
	}

	var models []BatchModel
	if err := query.Order(fefoOrder).
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次列表失败")
	}
	return toBatchEntities(models), total, nil
}

func (r *batchRepository) ListExpiring(ctx context.Context, before time.Time) ([]*stock.Batch, error) {
	var models []BatchModel
	err := dbFrom(ctx, r.db).
		Where("current_quantity > 0 AND expire_date IS NOT NULL AND expire_date <= ?", before).
		Order("expire_date ASC, product_id ASC, batch_no ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询临期批次失败")
	}
	return toBatchEntities(models), nil
}

func toBatchEntity(m *BatchModel) *stock.Batch {
	return &stock.Batch{
		ID:              m.ID,
		ProductID:       m.ProductID,
		BatchNo:         m.BatchNo,
		CurrentQuantity: m.CurrentQuantity,
		BuyingPrice:     m.BuyingPrice,
		ProductPrice:    m.ProductPrice,
		ExpireDate:      dateOf(m.ExpireDate),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBatchEntities(models []BatchModel) []*stock.Batch {
	out := make([]*stock.Batch, len(models))
	for i := range models {
		out[i] = toBatchEntity(&models[i])
	}
	return out
}

// movementRepository 库存流水仓储(MySQL)
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建流水仓储
func NewMovementRepository(db *gorm.DB) stock.MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, m *stock.Movement) error {
	model := &MovementModel{
		ProductID:      m.ProductID,
		BatchNo:        m.BatchNo,
		ChangeType:     string(m.ChangeType),
		Quantity:       m.Quantity,
		BeforeQuantity: m.BeforeQuantity,
		AfterQuantity:  m.AfterQuantity,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}
	m.ID = model.ID
	return nil
}

func (r *movementRepository) ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*stock.Movement, int64, error) {
	query := dbFrom(ctx, r.db).Model(&MovementModel{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计库存流水失败")
	}

	var models []MovementModel
	if err := query.Order("id DESC").Offset(offset(page, pageSize)).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存流水失败")
	}

	out := make([]*stock.Movement, len(models))
	for i, m := range models {
		out[i] = &stock.Movement{
			ID:             m.ID,
			ProductID:      m.ProductID,
			BatchNo:        m.BatchNo,
			ChangeType:     stock.ChangeType(m.ChangeType),
			Quantity:       m.Quantity,
			BeforeQuantity: m.BeforeQuantity,
			AfterQuantity:  m.AfterQuantity,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		}
	}
	return out, total, nil
}
