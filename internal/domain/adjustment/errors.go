package adjustment

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

var (
	// ErrAdjustmentNotFound 调整记录不存在
	ErrAdjustmentNotFound = apperrors.New(apperrors.ErrCodeAdjustmentNotFound, "Stock adjustment not found")

	ErrInvalidType         = apperrors.New(apperrors.ErrCodeInvalidParams, "adjustment_type must be one of increase, decrease, transfer, donation")
	ErrInvalidQuantity     = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity_adjusted must be at least 1")
	ErrQuantityTooLarge    = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity_adjusted must not exceed 1000000")
	ErrBatchRequired       = apperrors.New(apperrors.ErrCodeInvalidParams, "product_id and batch_no are required")
	ErrDestinationRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "destination is required for transfers")
)
