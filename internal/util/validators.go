package util

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

// IsHandleRune 判断单个字符（转大写后）是否属于用户名允许的字符集
func IsHandleRune(r rune) bool {
	u := unicode.ToUpper(r)
	return (u >= 'A' && u <= 'Z') || (u >= '0' && u <= '9') || u == '{' || u == '}'
}

// IsValidHandle 校验用户名是否只包含允许的字符
func IsValidHandle(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		if !IsHandleRune(r) {
			return false
		}
	}
	return true
}

// ValidateHandle 注册到 gin binding 的用户名验证器
func ValidateHandle(fl validator.FieldLevel) bool {
	username, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsValidHandle(username)
}
