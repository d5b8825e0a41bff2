package dispense

import (
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

var (
	// ErrDuplicatePayment 同一药品的Payment_ID已发过药
	ErrDuplicatePayment = apperrors.New(apperrors.ErrCodeDuplicatePayment, "Payment_ID has already been used for this product.")

	// ErrSaleNotFound 发药记录不存在
	ErrSaleNotFound = apperrors.New(apperrors.ErrCodeSaleNotFound, "Dispense record not found")

	ErrProductRequired   = apperrors.New(apperrors.ErrCodeInvalidParams, "product_id is required")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be at least 1")
	ErrPaymentIDRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "Payment_ID is required")
	ErrInvalidTotalPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "total_price must not be negative")
)

// DuplicatePayment 带具体Payment_ID的重复错误
func DuplicatePayment(productID, paymentID string) *apperrors.AppError {
	return ErrDuplicatePayment.WithMessage(
		"Payment_ID %s has already been used for product %s.", paymentID, productID)
}
