// Package validator 在gin的validator引擎上注册自定义规则,
// 并把校验错误转换为 {字段: 提示} 形式
//
//	Price decimal.Decimal `json:"price" binding:"dgte0"`
//	ExpireDate string     `json:"expire_date" binding:"omitempty,date"`
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout 日期字段格式
const DateLayout = "2006-01-02"

var once sync.Once

// Register 注册到gin默认的binding引擎,重复调用无副作用
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Setup(v)
		}
	})
}

// Setup 在给定的Validate上注册规则
func Setup(v *validator.Validate) {
	// 错误里的字段名用json/form标签
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	// decimal.Decimal是结构体,校验前转成字符串,由下面的规则解析
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
		d, ok := decimalOf(fl.Field())
		return ok && d.IsPositive()
	})
	_ = v.RegisterValidation("dgte0", func(fl validator.FieldLevel) bool {
		d, ok := decimalOf(fl.Field())
		return ok && !d.IsNegative()
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
}

func decimalOf(field reflect.Value) (decimal.Decimal, bool) {
	if field.Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(field.String())
	return d, err == nil
}

// Fields 把ValidationErrors转换为字段提示;不是校验错误时返回nil
func Fields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if _, exists := out[name]; exists {
			continue
		}
		out[name] = message(name, fe)
	}
	return out
}

func message(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "dgt0":
		return fmt.Sprintf("The %s must be greater than 0.", name)
	case "dgte0":
		return fmt.Sprintf("The %s must be at least 0.", name)
	case "date":
		return fmt.Sprintf("The %s is not a valid date (YYYY-MM-DD).", name)
	case "dive":
		return fmt.Sprintf("The %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}
