package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 1. Code是业务错误码,客户端据此判断错误类型
// 2. Message是返回给客户端的提示信息
// 3. Err是内部错误,只写日志,不返回给客户端
// 4. Fields是字段级校验错误(仅参数错误使用)
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较,预定义错误被WithMessage派生后仍能errors.Is命中
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 复制错误并替换提示信息(不修改预定义错误本身)
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// HTTPStatus 错误码 → HTTP状态码
func (e *AppError) HTTPStatus() int {
	return StatusOf(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误(数据库、Redis、消息队列等),隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Validation 字段级参数错误
func Validation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: "The given data was invalid.",
		Fields:  fields,
	}
}

// =========================================
// 错误码定义
// =========================================
// - 400xx: 业务规则拒绝
// - 401xx: 认证授权
// - 404xx: 资源不存在
// - 409xx: 参数校验失败
// - 500xx: 服务端错误

const (
	// 系统级错误码(50000-50099)
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误(40100-40199)
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误(40400-40499)
	ErrCodeNotFound           = 40400 // 资源不存在(通用)
	ErrCodeStaffNotFound      = 40401 // 员工不存在
	ErrCodeMedicineNotFound   = 40402 // 药品不存在
	ErrCodeBatchNotFound      = 40403 // 批次不存在
	ErrCodeAdjustmentNotFound = 40404 // 调整记录不存在
	ErrCodeOrderNotFound      = 40405 // 批发订单不存在
	ErrCodeSaleNotFound       = 40406 // 发药记录不存在
	ErrCodeDeliveryNotFound   = 40407 // 配送记录不存在

	// 业务规则错误(40000-40099)
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock  = 40001 // 库存不足
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeEmailDuplicate     = 40003 // 邮箱已存在
	ErrCodeProductDuplicate   = 40004 // 药品编号已存在
	ErrCodeWeakPassword       = 40005 // 密码强度不足
	ErrCodePaymentExceeds     = 40006 // 付款超出余额
	ErrCodeDuplicateEntry     = 40009 // 重复记录(通用)
	ErrCodeDuplicatePayment   = 40010 // Payment_ID重复使用
	ErrCodeBatchCapacity      = 40011 // 批次数量超过上限

	// 参数错误(40900-40999)
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// StatusOf 按错误码区间映射HTTP状态码
func StatusOf(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40900 && code < 41000:
		return http.StatusUnprocessableEntity
	case code >= 40000 && code < 40100:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "Internal server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "Database error")
	ErrRedisError    = New(ErrCodeRedisError, "Cache service error")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "Unauthenticated.")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "Invalid token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token expired")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "Invalid credentials")
	ErrForbidden       = New(ErrCodeForbidden, "This action is unauthorized.")

	// 资源不存在
	ErrNotFound = New(ErrCodeNotFound, "Resource not found")

	// 业务规则
	ErrInsufficientStock  = New(ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidOrderStatus = New(ErrCodeInvalidOrderStatus, "Order status does not allow this operation")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "The email has already been taken.")
	ErrWeakPassword       = New(ErrCodeWeakPassword, "Password must be 8-20 characters and contain letters and digits")
	ErrDuplicateEntry     = New(ErrCodeDuplicateEntry, "Duplicate entry")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "Invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "Malformed request body")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError(如果不是AppError则包装成Internal错误)
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error")
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
