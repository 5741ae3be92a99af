package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseContent 测试正文解析：提及去掉前缀，标签保留前缀，
// 遇到第一个非法字符即截断
func TestParseContent(t *testing.T) {
	mentions, hashtags := parseContent("hello @Bob_2 check #Launch99!")
	assert.Equal(t, []string{"Bob"}, mentions)
	assert.Equal(t, []string{"#Launch99"}, hashtags)
}

// TestParseContentDedup 测试候选去重保持首次出现顺序，大小写敏感
func TestParseContentDedup(t *testing.T) {
	mentions, hashtags := parseContent("@alice @bob @alice #go #GO #go")
	assert.Equal(t, []string{"alice", "bob"}, mentions)
	assert.Equal(t, []string{"#go", "#GO"}, hashtags)
}

// TestParseContentEmptyCandidates 测试裸 "@" 和 "#" 被丢弃
func TestParseContentEmptyCandidates(t *testing.T) {
	mentions, hashtags := parseContent("just @ a # lonely @! marker")
	assert.Empty(t, mentions)
	assert.Empty(t, hashtags)
}

// TestParseContentNoEntities 测试普通正文不产生候选
func TestParseContentNoEntities(t *testing.T) {
	mentions, hashtags := parseContent("nothing to see here")
	assert.Nil(t, mentions)
	assert.Nil(t, hashtags)
}

// TestParseContentBraces 测试大括号属于允许的字符集
func TestParseContentBraces(t *testing.T) {
	mentions, hashtags := parseContent("ping @{bot} about #{42}")
	assert.Equal(t, []string{"{bot}"}, mentions)
	assert.Equal(t, []string{"#{42}"}, hashtags)
}
