package errors

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FromBindingError 将请求绑定错误转换为字段级验证错误，
// 字段名转为 snake_case 与 JSON 字段保持一致
func FromBindingError(err error) *AppError {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string][]string)
		for _, fe := range verrs {
			name := toSnakeCase(fe.Field())
			fields[name] = append(fields[name], messageForTag(fe))
		}
		return NewValidation(fields)
	}
	return Wrap(ErrBadRequest, "Malformed request body.", err)
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "phone":
		return "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."
	default:
		return fmt.Sprintf("This value failed '%s' validation.", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
