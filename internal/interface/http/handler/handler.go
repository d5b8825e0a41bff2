// Package handler HTTP处理器
// 只负责参数绑定、调用用例、输出统一响应,业务规则都在应用层
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/pharmacy/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/response"
	"github.com/xiebiao/pharmacy/pkg/validator"
)

// bindJSON 绑定失败时已写出响应,返回false
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		bindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		bindError(c, err)
		return false
	}
	return true
}

// bindError 校验失败返回字段提示,JSON格式错误不回显解析细节
func bindError(c *gin.Context, err error) {
	if fields := validator.Fields(err); fields != nil {
		response.Error(c, apperrors.Validation(fields))
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		response.Error(c, apperrors.Validation(map[string]string{
			typeErr.Field: fmt.Sprintf("The %s must be of type %s.", typeErr.Field, typeErr.Type.String()),
		}))
		return
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		response.Error(c, apperrors.ErrBindError.WithMessage("Malformed query parameter"))
		return
	}
	response.Error(c, apperrors.ErrBindError)
}

// pathID 解析路径中的数字ID,非法时按资源不存在处理
func pathID(c *gin.Context, name string, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, notFound)
		return 0, false
	}
	return uint(id), true
}

// actor 请求体未填写操作人时使用当前登录员工姓名
func actor(c *gin.Context, given string) string {
	if given != "" {
		return given
	}
	if name := middleware.GetStaffName(c); name != "" {
		return name
	}
	return c.GetString(middleware.KeyEmail)
}
