package medicine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/pkg/logger"
)

// UpdateMedicineUseCase 修改药品(部分更新)
type UpdateMedicineUseCase struct {
	repo  medicine.Repository
	cache Cache
}

// NewUpdateMedicineUseCase 创建用例
func NewUpdateMedicineUseCase(repo medicine.Repository, cache Cache) *UpdateMedicineUseCase {
	return &UpdateMedicineUseCase{repo: repo, cache: cache}
}

// UpdateMedicineRequest nil字段不修改
type UpdateMedicineRequest struct {
	ProductID   string
	Name        *string
	Category    *string
	Unit        *string
	Price       *decimal.Decimal
	Description *string
}

// Execute 先写库再删缓存
func (uc *UpdateMedicineUseCase) Execute(ctx context.Context, req UpdateMedicineRequest) (*MedicineDTO, error) {
	m, err := uc.repo.FindByProductID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := m.Apply(medicine.Patch{
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Price:       req.Price,
		Description: req.Description,
	}); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, m.ProductID); err != nil {
			logger.L().WithError(err).WithField("product_id", m.ProductID).Warn("medicine cache invalidate failed")
		}
	}
	return ToDTO(m), nil
}
