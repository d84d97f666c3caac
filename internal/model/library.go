package model

import (
	"strings"
	"time"
)

// 个性化列表的存储键，与前端 localStorage 键保持一致
const (
	KeyWatchlist        = "watchlist"
	KeyContinueWatching = "continueWatching"
	KeySearchHistory    = "search-history"
)

// 内容类型
const (
	MediaMovie  = "movie"
	MediaTV     = "tv"
	MediaMulti  = "multi"
	MediaPerson = "person"
)

// IsMediaType 是否为可收藏的内容类型（movie / tv）
func IsMediaType(t string) bool {
	return t == MediaMovie || t == MediaTV
}

// IsSearchType 是否为合法的搜索类型
func IsSearchType(t string) bool {
	return IsMediaType(t) || t == MediaMulti || t == MediaPerson
}

// MediaRef 内容标识
type MediaRef struct {
	ID   int    `json:"id" binding:"required,min=1"`
	Type string `json:"type" binding:"required,mediatype"`
}

// WatchlistEntry 片单条目
type WatchlistEntry struct {
	MediaRef
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// ContinueWatchingEntry 继续观看条目
type ContinueWatchingEntry struct {
	MediaRef
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Progress     float64   `json:"progress"` // 百分比 0-100
	Duration     float64   `json:"duration"` // 秒
	Season       *int      `json:"season,omitempty"`
	Episode      *int      `json:"episode,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SearchHistoryEntry 搜索历史条目
type SearchHistoryEntry struct {
	Query       string    `json:"query"`
	Type        string    `json:"type"`
	ResultCount *int      `json:"result_count,omitempty"`
	SearchedAt  time.Time `json:"searched_at"`
}

// SameQuery 判断两条搜索历史是否重复（忽略大小写与首尾空白）
func (e SearchHistoryEntry) SameQuery(query, typ string) bool {
	return e.Type == typ && strings.EqualFold(strings.TrimSpace(e.Query), strings.TrimSpace(query))
}
