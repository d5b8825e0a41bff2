package medicine

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

var (
	// ErrMedicineNotFound 药品不存在
	ErrMedicineNotFound = apperrors.New(apperrors.ErrCodeMedicineNotFound, "Medicine not found")

	// ErrProductIDDuplicate 药品编号已存在
	ErrProductIDDuplicate = apperrors.New(apperrors.ErrCodeProductDuplicate, "The product id has already been taken.")

	ErrInvalidProductID = apperrors.New(apperrors.ErrCodeInvalidParams, "product_id is required (max 64 characters)")
	ErrInvalidName      = apperrors.New(apperrors.ErrCodeInvalidParams, "name is required (max 200 characters)")
	ErrInvalidPrice     = apperrors.New(apperrors.ErrCodeInvalidParams, "price must not be negative")
)
