package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := map[int]int{
		0:                         http.StatusOK,
		ErrCodeInsufficientStock:  http.StatusBadRequest,
		ErrCodeDuplicatePayment:   http.StatusBadRequest,
		ErrCodePaymentExceeds:     http.StatusBadRequest,
		ErrCodeUnauthorized:       http.StatusUnauthorized,
		ErrCodeForbidden:          http.StatusForbidden,
		ErrCodeBatchNotFound:      http.StatusNotFound,
		ErrCodeInvalidParams:      http.StatusUnprocessableEntity,
		ErrCodeInternal:           http.StatusInternalServerError,
		ErrCodeDatabaseError:      http.StatusInternalServerError,
		ErrCodeAdjustmentNotFound: http.StatusNotFound,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusOf(code), "code=%d", code)
	}
}

func TestWithMessageKeepsIdentity(t *testing.T) {
	err := ErrInsufficientStock.WithMessage("only %d left", 3)

	assert.Equal(t, "only 3 left", err.Message)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, "Insufficient stock", ErrInsufficientStock.Message, "预定义错误不应被修改")
}

func TestGetAppError(t *testing.T) {
	t.Run("包装后的AppError可提取", func(t *testing.T) {
		wrapped := fmt.Errorf("ctx: %w", ErrForbidden)
		assert.Equal(t, ErrCodeForbidden, GetAppError(wrapped).Code)
		assert.True(t, IsCode(wrapped, ErrCodeForbidden))
	})

	t.Run("普通错误转为内部错误且不泄露原文", func(t *testing.T) {
		appErr := GetAppError(errors.New("dial tcp 10.0.0.1:3306: refused"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.NotContains(t, appErr.Message, "10.0.0.1")
	})
}
