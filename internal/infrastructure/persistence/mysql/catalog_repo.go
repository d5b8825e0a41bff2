package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/staff"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// staffRepository 员工仓储(MySQL)
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓储
func NewStaffRepository(db *gorm.DB) staff.Repository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, s *staff.Staff) error {
	model := &StaffModel{
		Email:    s.Email,
		Password: s.Password,
		Name:     s.Name,
		Role:     string(s.Role),
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return staff.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建员工失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *staffRepository) FindByID(ctx context.Context, id uint) (*staff.Staff, error) {
	var model StaffModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staff.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(err, "查询员工失败")
	}
	return toStaffEntity(&model), nil
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*staff.Staff, error) {
	var model StaffModel
	if err := dbFrom(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staff.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(err, "查询员工失败")
	}
	return toStaffEntity(&model), nil
}

func toStaffEntity(m *StaffModel) *staff.Staff {
	return &staff.Staff{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Name:      m.Name,
		Role:      staff.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// medicineRepository 药品目录仓储(MySQL)
type medicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository 创建药品仓储
func NewMedicineRepository(db *gorm.DB) medicine.Repository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, m *medicine.Medicine) error {
	model := toMedicineModel(m)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return medicine.ErrProductIDDuplicate
		}
		return apperrors.Wrap(err, "创建药品失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *medicineRepository) FindByProductID(ctx context.Context, productID string) (*medicine.Medicine, error) {
	var model MedicineModel
	if err := dbFrom(ctx, r.db).Where("product_id = ?", productID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medicine.ErrMedicineNotFound
		}
		return nil, apperrors.Wrap(err, "查询药品失败")
	}
	return toMedicineEntity(&model), nil
}

func (r *medicineRepository) Update(ctx context.Context, m *medicine.Medicine) error {
	result := dbFrom(ctx, r.db).Model(&MedicineModel{}).
		Where("product_id = ?", m.ProductID).
		Updates(map[string]interface{}{
			"name":        m.Name,
			"category":    m.Category,
			"unit":        m.Unit,
			"price":       m.Price,
			"description": m.Description,
			"updated_at":  m.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新药品失败")
	}
	if result.RowsAffected == 0 {
		return medicine.ErrMedicineNotFound
	}
	return nil
}

// Upsert INSERT ... ON DUPLICATE KEY UPDATE
// 导入文件里description为空时保留原值
func (r *medicineRepository) Upsert(ctx context.Context, m *medicine.Medicine) (bool, error) {
	var created bool
	err := dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var existing MedicineModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", m.ProductID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model := toMedicineModel(m)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "category", "unit", "price", "updated_at"}),
			}).Create(model).Error; err != nil {
				return err
			}
			m.ID = model.ID
			created = true
			return nil
		case err != nil:
			return err
		}

		if m.Description == "" {
			m.Description = existing.Description
		}
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"name":        m.Name,
			"category":    m.Category,
			"unit":        m.Unit,
			"price":       m.Price,
			"description": m.Description,
			"updated_at":  m.UpdatedAt,
		}).Error
	})
	if err != nil {
		return false, apperrors.Wrap(err, "导入药品失败")
	}
	return created, nil
}

func (r *medicineRepository) List(ctx context.Context, params medicine.ListParams) ([]*medicine.Medicine, int64, error) {
	query := dbFrom(ctx, r.db).Model(&MedicineModel{})
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("product_id LIKE ? OR name LIKE ?", kw, kw)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计药品失败")
	}

	var models []MedicineModel
	if err := query.Order("id DESC").
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询药品列表失败")
	}

	out := make([]*medicine.Medicine, len(models))
	for i := range models {
		out[i] = toMedicineEntity(&models[i])
	}
	return out, total, nil
}

func toMedicineModel(m *medicine.Medicine) *MedicineModel {
	return &MedicineModel{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Name:        m.Name,
		Category:    m.Category,
		Unit:        m.Unit,
		Price:       m.Price,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMedicineEntity(m *MedicineModel) *medicine.Medicine {
	return &medicine.Medicine{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Name:        m.Name,
		Category:    m.Category,
		Unit:        m.Unit,
		Price:       m.Price,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
