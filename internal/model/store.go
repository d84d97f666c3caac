package model

import "time"

// PersonalDocument 访客个性化数据，每个 (访客, 键) 一份 JSON 文档
type PersonalDocument struct {
	VisitorID string    `json:"visitor_id" gorm:"primaryKey;size:64"`
	Key       string    `json:"key" gorm:"primaryKey;size:32"`
	Value     string    `json:"value" gorm:"type:jsonb;not null;default:'[]'"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// SearchTerm 全站搜索词统计
type SearchTerm struct {
	Query          string    `json:"query" gorm:"primaryKey;size:200"`
	Type           string    `json:"type" gorm:"primaryKey;size:16"`
	Count          int       `json:"count"`
	LastSearchedAt time.Time `json:"last_searched_at" gorm:"index"`
}
