package service

import (
	"microblog-backend/internal/util"
	"strings"
)

// parseContent 把推文正文切分为提及候选和话题标签候选。
// 以 "@" 开头的词产生提及候选（去掉前缀），以 "#" 开头的词产生
// 标签候选（保留前缀）。候选去重并保持首次出现的顺序，
// 空候选（裸 "@" 或 "#"）直接丢弃
func parseContent(content string) (mentions []string, hashtags []string) {
	seenMentions := make(map[string]bool)
	seenTags := make(map[string]bool)

	for _, word := range strings.Fields(content) {
		switch {
		case strings.HasPrefix(word, "@"):
			candidate := scanToken(word[1:])
			if candidate != "" && !seenMentions[candidate] {
				seenMentions[candidate] = true
				mentions = append(mentions, candidate)
			}
		case strings.HasPrefix(word, "#"):
			candidate := scanToken(word[1:])
			if candidate != "" && !seenTags[candidate] {
				seenTags[candidate] = true
				hashtags = append(hashtags, "#"+candidate)
			}
		}
	}
	return mentions, hashtags
}

// scanToken 从词首开始收集允许的字符，遇到第一个非法字符即停止
func scanToken(word string) string {
	for i, r := range word {
		if !util.IsHandleRune(r) {
			return word[:i]
		}
	}
	return word
}
