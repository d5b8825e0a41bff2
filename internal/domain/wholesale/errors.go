package wholesale

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "Wholesale order not found")

	// ErrDeliveryNotFound 配送记录不存在
	ErrDeliveryNotFound = apperrors.New(apperrors.ErrCodeDeliveryNotFound, "Delivery not found")

	// ErrInvalidStatusTransition 非法的状态流转
	ErrInvalidStatusTransition = apperrors.ErrInvalidOrderStatus

	ErrOrderCancelled           = apperrors.New(apperrors.ErrCodeBusinessError, "Cancelled orders cannot accept payments")
	ErrDeliveryNotCompleted     = apperrors.New(apperrors.ErrCodeBusinessError, "Order has no completed delivery")
	ErrDeliveryAlreadyCompleted = apperrors.New(apperrors.ErrCodeBusinessError, "Delivery has already been completed")
	ErrPaymentExceedsBalance    = apperrors.New(apperrors.ErrCodePaymentExceeds, "Payment exceeds balance")

	ErrInvalidStatus        = apperrors.New(apperrors.ErrCodeInvalidParams, "status must be one of draft, confirmed, processing, ready_for_delivery, delivered, cancelled")
	ErrInvalidOrderItems    = apperrors.New(apperrors.ErrCodeInvalidParams, "items must not be empty")
	ErrInvalidQuantity      = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be at least 1")
	ErrInvalidPrice         = apperrors.New(apperrors.ErrCodeInvalidParams, "unit_price must not be negative")
	ErrCustomerRequired     = apperrors.New(apperrors.ErrCodeInvalidParams, "customer_name is required")
	ErrInvalidPaymentAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "amount must be greater than 0")
	ErrAddressRequired      = apperrors.New(apperrors.ErrCodeInvalidParams, "address is required")
)

// InvalidTransition 带起止状态的流转错误
func InvalidTransition(from, to Status) *apperrors.AppError {
	return ErrInvalidStatusTransition.WithMessage("Cannot change order status from %s to %s", from, to)
}

// PaymentExceedsBalance 带金额的超付错误
func PaymentExceedsBalance(amount, balance decimal.Decimal) *apperrors.AppError {
	return ErrPaymentExceedsBalance.WithMessage(
		"Payment of %s exceeds balance of %s", amount.StringFixed(2), balance.StringFixed(2))
}
