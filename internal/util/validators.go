package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// ValidatePhoneNumber 验证国际电话号码格式，注册为 binding 的 phone 标签
func ValidatePhoneNumber(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return phonePattern.MatchString(value)
}
