package model

import "time"

// Tweet 推文模型。回复和转推通过 InReplyToID / RepostOfID 关联到父推文，
// 创建后不再变更；删除为软删除，保留关联关系
type Tweet struct {
	ID          int       `json:"id"`
	AuthorID    int       `json:"author_id"`
	Content     string    `json:"content"` // 转推没有独立内容
	Posted      time.Time `json:"posted"`
	Deleted     bool      `json:"-"`
	InReplyToID *int      `json:"in_reply_to,omitempty"`
	RepostOfID  *int      `json:"repost_of,omitempty"`
	Author      *User     `json:"author,omitempty"`
}

// TweetContext 推文的会话上下文：Before 按最近祖先在前排列，
// After 按层序（BFS）排列
type TweetContext struct {
	Target *Tweet   `json:"target"`
	Before []*Tweet `json:"before"`
	After  []*Tweet `json:"after"`
}
