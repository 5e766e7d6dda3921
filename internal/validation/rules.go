package validation

import (
	"github.com/go-playground/validator/v10"
)

// 可用于 binding / validate 标签的规则名
const (
	TagName       = "airport_name"
	TagMobile     = "airport_mobile"
	TagEmail      = "airport_email"
	TagPassword   = "airport_password"
	TagFlightCode = "flight_code"
	TagPlaneID    = "plane_id"
)

func stringRule(pred func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pred(fl.Field().String())
	}
}

// RegisterRules 把校验函数注册到 validator（包括 gin 的 binding 引擎）
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagName:     stringRule(IsValidName),
		TagMobile:   stringRule(IsValidMobile),
		TagPassword: stringRule(IsValidPassword),
		// 客户端传来的邮箱未 trim，先规范化再校验
		TagEmail:      stringRule(func(s string) bool { return IsValidEmail(NormalizeEmail(s)) }),
		TagFlightCode: stringRule(IsValidFlightCode),
		TagPlaneID:    stringRule(IsValidPlaneID),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
