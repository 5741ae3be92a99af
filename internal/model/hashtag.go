package model

import "time"

// Hashtag 话题标签。Label 存储时带 "#" 前缀，对外展示时去掉前缀
type Hashtag struct {
	ID        int       `json:"id"`
	Label     string    `json:"label"`
	FirstUsed time.Time `json:"first_used"`
	LastUsed  time.Time `json:"last_used"`
}
