package service

import (
	"sort"
	"strings"
	"time"

	"github.com/user/cinestream/internal/model"
)

const (
	// MaxContinueWatching 继续观看最多保留条数
	MaxContinueWatching = 6
	// MaxSearchHistory 搜索历史最多保留条数
	MaxSearchHistory = 50
	// MaxQueryLength 搜索词最大长度（字符），与 search_terms.query 列宽一致
	MaxQueryLength = 200
	// FinishedProgress 进度达到该百分比视为看完，从继续观看中移除
	FinishedProgress = 95.0
)

// ==================== 片单 ====================

// WatchlistAdd 添加到片单，已存在时保持原样并返回 false
func WatchlistAdd(list []model.WatchlistEntry, e model.WatchlistEntry, now time.Time) ([]model.WatchlistEntry, bool) {
	if WatchlistContains(list, e.MediaRef) {
		return list, false
	}
	e.AddedAt = now
	out := make([]model.WatchlistEntry, 0, len(list)+1)
	out = append(out, e)
	out = append(out, list...)
	return SortWatchlist(out), true
}

// WatchlistRemove 从片单移除
func WatchlistRemove(list []model.WatchlistEntry, ref model.MediaRef) ([]model.WatchlistEntry, bool) {
	out := make([]model.WatchlistEntry, 0, len(list))
	removed := false
	for _, item := range list {
		if item.MediaRef == ref {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// WatchlistToggle 切换片单状态，返回切换后是否在片单中
func WatchlistToggle(list []model.WatchlistEntry, e model.WatchlistEntry, now time.Time) ([]model.WatchlistEntry, bool) {
	if out, removed := WatchlistRemove(list, e.MediaRef); removed {
		return out, false
	}
	out, _ := WatchlistAdd(list, e, now)
	return out, true
}

// WatchlistContains 是否已在片单中
func WatchlistContains(list []model.WatchlistEntry, ref model.MediaRef) bool {
	for _, item := range list {
		if item.MediaRef == ref {
			return true
		}
	}
	return false
}

// SortWatchlist 按加入时间倒序
func SortWatchlist(list []model.WatchlistEntry) []model.WatchlistEntry {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AddedAt.After(list[j].AddedAt)
	})
	return list
}

// ==================== 继续观看 ====================

// ContinueUpsert 更新观看进度：最近更新的排在最前，超出上限的旧条目被丢弃，看完的条目被移除
func ContinueUpsert(list []model.ContinueWatchingEntry, e model.ContinueWatchingEntry, now time.Time) []model.ContinueWatchingEntry {
	e.Progress = clamp(e.Progress, 0, 100)
	if e.Duration < 0 {
		e.Duration = 0
	}

	out := make([]model.ContinueWatchingEntry, 0, len(list)+1)
	for _, item := range list {
		if item.MediaRef == e.MediaRef {
			// 进度上报通常不带展示信息，沿用旧值
			if e.Title == "" {
				e.Title = item.Title
			}
			if e.PosterPath == "" {
				e.PosterPath = item.PosterPath
			}
			if e.BackdropPath == "" {
				e.BackdropPath = item.BackdropPath
			}
			continue
		}
		out = append(out, item)
	}

	if e.Progress < FinishedProgress {
		e.UpdatedAt = now
		out = append([]model.ContinueWatchingEntry{e}, out...)
	}
	if len(out) > MaxContinueWatching {
		out = out[:MaxContinueWatching]
	}
	return out
}

// ContinueRemove 从继续观看移除
func ContinueRemove(list []model.ContinueWatchingEntry, ref model.MediaRef) ([]model.ContinueWatchingEntry, bool) {
	out := make([]model.ContinueWatchingEntry, 0, len(list))
	removed := false
	for _, item := range list {
		if item.MediaRef == ref {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// ==================== 搜索历史 ====================

// SearchAdd 记录一次搜索：按 (query, type) 去重并移到最前，最多保留 MaxSearchHistory 条
func SearchAdd(list []model.SearchHistoryEntry, e model.SearchHistoryEntry, now time.Time) []model.SearchHistoryEntry {
	e.Query = strings.TrimSpace(e.Query)
	e.SearchedAt = now

	out := make([]model.SearchHistoryEntry, 0, len(list)+1)
	out = append(out, e)
	for _, item := range list {
		if item.SameQuery(e.Query, e.Type) {
			continue
		}
		out = append(out, item)
	}
	if len(out) > MaxSearchHistory {
		out = out[:MaxSearchHistory]
	}
	return out
}

// SearchRemove 删除一条搜索历史
func SearchRemove(list []model.SearchHistoryEntry, query, typ string) ([]model.SearchHistoryEntry, bool) {
	out := make([]model.SearchHistoryEntry, 0, len(list))
	removed := false
	for _, item := range list {
		if item.SameQuery(query, typ) {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// SearchFilter 按类型过滤，typ 为空时返回全部
func SearchFilter(list []model.SearchHistoryEntry, typ string) []model.SearchHistoryEntry {
	if typ == "" {
		return list
	}
	out := make([]model.SearchHistoryEntry, 0, len(list))
	for _, item := range list {
		if item.Type == typ {
			out = append(out, item)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
