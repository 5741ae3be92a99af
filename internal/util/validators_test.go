package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsValidHandle 测试用户名字符集校验
func TestIsValidHandle(t *testing.T) {
	assert.True(t, IsValidHandle("alice"))
	assert.True(t, IsValidHandle("Alice99"))
	assert.True(t, IsValidHandle("{bot}"))

	assert.False(t, IsValidHandle(""))
	assert.False(t, IsValidHandle("bad_user"))
	assert.False(t, IsValidHandle("no spaces"))
	assert.False(t, IsValidHandle("dash-name"))
}

// TestIsHandleRune 测试单字符判断不区分大小写
func TestIsHandleRune(t *testing.T) {
	assert.True(t, IsHandleRune('a'))
	assert.True(t, IsHandleRune('Z'))
	assert.True(t, IsHandleRune('0'))
	assert.True(t, IsHandleRune('{'))
	assert.True(t, IsHandleRune('}'))

	assert.False(t, IsHandleRune('_'))
	assert.False(t, IsHandleRune('!'))
	assert.False(t, IsHandleRune(' '))
}
