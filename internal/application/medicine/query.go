package medicine

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/application"
	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/pkg/logger"
)

// GetMedicineUseCase 药品详情(先读缓存)
type GetMedicineUseCase struct {
	repo  medicine.Repository
	cache Cache
}

// NewGetMedicineUseCase 创建用例
func NewGetMedicineUseCase(repo medicine.Repository, cache Cache) *GetMedicineUseCase {
	return &GetMedicineUseCase{repo: repo, cache: cache}
}

// Execute 缓存异常时降级查库
func (uc *GetMedicineUseCase) Execute(ctx context.Context, productID string) (*MedicineDTO, error) {
	if uc.cache != nil {
		m, err := uc.cache.Get(ctx, productID)
		if err != nil {
			logger.L().WithError(err).WithField("product_id", productID).Warn("medicine cache get failed")
		}
		if m != nil {
			return ToDTO(m), nil
		}
	}

	m, err := uc.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, m); err != nil {
			logger.L().WithError(err).WithField("product_id", productID).Warn("medicine cache set failed")
		}
	}
	return ToDTO(m), nil
}

// ListMedicinesUseCase 药品列表
type ListMedicinesUseCase struct {
	repo medicine.Repository
}

// NewListMedicinesUseCase 创建用例
func NewListMedicinesUseCase(repo medicine.Repository) *ListMedicinesUseCase {
	return &ListMedicinesUseCase{repo: repo}
}

// ListMedicinesRequest 列表请求
type ListMedicinesRequest struct {
	Page     int
	PageSize int
	Keyword  string
	Category string
}

// ListMedicinesResponse 列表响应
type ListMedicinesResponse struct {
	List     []*MedicineDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 执行查询
func (uc *ListMedicinesUseCase) Execute(ctx context.Context, req ListMedicinesRequest) (*ListMedicinesResponse, error) {
	page, size := application.Page(req.Page, req.PageSize)

	items, total, err := uc.repo.List(ctx, medicine.ListParams{
		Page:     page,
		PageSize: size,
		Keyword:  req.Keyword,
		Category: req.Category,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*MedicineDTO, len(items))
	for i, m := range items {
		list[i] = ToDTO(m)
	}
	return &ListMedicinesResponse{List: list, Total: total, Page: page, PageSize: size}, nil
}
