package ez

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"airport-ops/internal/validation"
)

var setupOnce sync.Once
var setupErr error

// SetupBinding 注册自定义校验规则，错误里用 json 字段名（可重复调用）
func SetupBinding() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("ez: gin validator is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		setupErr = validation.RegisterRules(v)
	})
	return setupErr
}

var tagHints = map[string]string{
	"required":               "is required",
	"required_without":       "is required",
	"min":                    "is too small",
	"max":                    "is too large",
	"oneof":                  "has an unsupported value",
	validation.TagName:       "letters, spaces, apostrophes and hyphens only",
	validation.TagMobile:     "must be 10 digits starting with 0",
	validation.TagEmail:      "must look like name@host",
	validation.TagPassword:   "needs 8 to 72 bytes with upper case, lower case and a digit",
	validation.TagFlightCode: "must be 2-3 upper-case letters followed by 3 digits",
	validation.TagPlaneID:    "must be 3 upper-case letters, digits, then A or D",
}

// BindMessage 绑定错误 -> 一行提示
func BindMessage(err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		hint, ok := tagHints[fe.Tag()]
		if !ok {
			hint = "failed " + fe.Tag()
		}
		return fmt.Sprintf("invalid %s: %s", fe.Field(), hint)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	return "malformed request"
}
