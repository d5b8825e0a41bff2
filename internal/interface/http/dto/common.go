package dto

import (
	"time"

	"github.com/xiebiao/pharmacy/pkg/validator"
)

// PageQuery 分页参数
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// ParseDate 解析YYYY-MM-DD,空串返回零值
// 格式已由binding的date规则校验
func ParseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(validator.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
