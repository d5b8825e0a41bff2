package stock

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrBatchNotFound 批次不存在
	ErrBatchNotFound = apperrors.New(apperrors.ErrCodeBatchNotFound, "Batch not found")

	// ErrBatchDuplicate 同一药品批号重复
	ErrBatchDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "Batch already exists for this product")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	// ErrInvalidQuantity 数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "Quantity must be greater than 0")

	// ErrQuantityTooLarge 单次数量超过上限
	ErrQuantityTooLarge = apperrors.New(apperrors.ErrCodeInvalidParams, "Quantity must not exceed 1000000")

	// ErrBatchCapacity 累加后超过单批次上限
	ErrBatchCapacity = apperrors.New(apperrors.ErrCodeBatchCapacity, "Batch quantity must not exceed 100000000")

	// ErrInvalidPrice 价格不合法
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "Price must not be negative")

	// ErrInvalidBatch 药品编号或批号为空
	ErrInvalidBatch = apperrors.New(apperrors.ErrCodeInvalidParams, "product_id and batch_no are required")
)

// InsufficientStock 带可用量的库存不足错误
func InsufficientStock(productID string, available, requested int) *apperrors.AppError {
	return ErrInsufficientStock.WithMessage(
		"Insufficient stock for product %s: requested %d, available %d", productID, requested, available)
}
