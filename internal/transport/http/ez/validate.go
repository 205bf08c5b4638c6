package ez

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"store-rating/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义规则，并让错误里使用 json 字段名
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			return name
		})
		_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
			return domain.StrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return domain.ValidName(fl.Field().String())
		})
	})
}

// bindError 绑定/校验失败统一转为 Validation，逐项给出可读信息
func bindError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.Validation("invalid request body")
	}
	details := make([]string, 0, len(ves))
	for _, fe := range ves {
		details = append(details, fieldMessage(fe))
	}
	return domain.Validation("validation failed", details...)
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return domain.MsgEmail
	case "strongpwd":
		return f + " must be 8-16 characters with at least one uppercase letter and one special character"
	case "personname":
		return f + " must be between 20 and 60 characters"
	case "role":
		return domain.MsgRole
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	default:
		return f + " is invalid"
	}
}
