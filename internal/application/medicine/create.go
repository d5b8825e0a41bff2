package medicine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
)

// Cache 药品目录缓存(Redis实现)
// Get未命中返回(nil, nil)
type Cache interface {
	Get(ctx context.Context, productID string) (*medicine.Medicine, error)
	Set(ctx context.Context, m *medicine.Medicine) error
	Delete(ctx context.Context, productID string) error
}

// CreateMedicineUseCase 新建药品
type CreateMedicineUseCase struct {
	repo medicine.Repository
}

// NewCreateMedicineUseCase 创建用例
func NewCreateMedicineUseCase(repo medicine.Repository) *CreateMedicineUseCase {
	return &CreateMedicineUseCase{repo: repo}
}

// Execute 编号重复由唯一索引兜底,返回ErrProductIDDuplicate
func (uc *CreateMedicineUseCase) Execute(ctx context.Context, req CreateMedicineRequest) (*MedicineDTO, error) {
	m, err := medicine.NewMedicine(req.ProductID, req.Name, req.Category, req.Unit, req.Price)
	if err != nil {
		return nil, err
	}
	m.Description = req.Description

	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return ToDTO(m), nil
}

// CreateMedicineRequest 新建药品请求
type CreateMedicineRequest struct {
	ProductID   string
	Name        string
	Category    string
	Unit        string
	Price       decimal.Decimal
	Description string
}

// MedicineDTO 药品响应
type MedicineDTO struct {
	ID          uint            `json:"id"`
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ToDTO 领域实体 → 响应DTO
func ToDTO(m *medicine.Medicine) *MedicineDTO {
	return &MedicineDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Name:        m.Name,
		Category:    m.Category,
		Unit:        m.Unit,
		Price:       m.Price,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}
