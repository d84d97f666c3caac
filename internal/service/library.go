package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/model"
)

// Store 访客个性化文档存储
type Store interface {
	// Load 读取文档，不存在时返回 nil
	Load(ctx context.Context, visitorID, key string) ([]byte, error)
	// Update 在同一事务内读取并改写文档
	Update(ctx context.Context, visitorID, key string, fn func(current []byte) ([]byte, error)) error
	// Delete 删除文档
	Delete(ctx context.Context, visitorID, key string) error
}

// SearchTermStore 全站搜索词统计
type SearchTermStore interface {
	Record(ctx context.Context, query, typ string) error
	Trending(ctx context.Context, hours, limit int) ([]*model.SearchTerm, error)
}

// LibraryService 片单、继续观看与搜索历史
type LibraryService struct {
	store Store
	terms SearchTermStore
	now   func() time.Time
}

// NewLibraryService 创建个性化服务，terms 可为 nil
func NewLibraryService(store Store, terms SearchTermStore) *LibraryService {
	return &LibraryService{store: store, terms: terms, now: time.Now}
}

// decodeList 解析文档；损坏的文档按空列表处理
func decodeList[T any](visitorID, key string, raw []byte) []T {
	var list []T
	if len(raw) == 0 {
		return list
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Warn().Str("component", "library").Str("visitor", visitorID).Str("key", key).Err(err).Msg("个性化数据损坏，已重置")
		return nil
	}
	return list
}

func loadList[T any](ctx context.Context, store Store, visitorID, key string) ([]T, error) {
	raw, err := store.Load(ctx, visitorID, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	list := decodeList[T](visitorID, key, raw)
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func updateList[T any](ctx context.Context, store Store, visitorID, key string, fn func([]T) []T) ([]T, error) {
	var result []T
	err := store.Update(ctx, visitorID, key, func(current []byte) ([]byte, error) {
		result = fn(decodeList[T](visitorID, key, current))
		if result == nil {
			result = []T{}
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}
	return result, nil
}

// ==================== 片单 ====================

// Watchlist 片单（按加入时间倒序）
func (s *LibraryService) Watchlist(ctx context.Context, visitorID string) ([]model.WatchlistEntry, error) {
	list, err := loadList[model.WatchlistEntry](ctx, s.store, visitorID, model.KeyWatchlist)
	if err != nil {
		return nil, err
	}
	return SortWatchlist(list), nil
}

// AddToWatchlist 添加到片单，重复添加无副作用
func (s *LibraryService) AddToWatchlist(ctx context.Context, visitorID string, e model.WatchlistEntry) ([]model.WatchlistEntry, bool, error) {
	var added bool
	list, err := updateList(ctx, s.store, visitorID, model.KeyWatchlist, func(list []model.WatchlistEntry) []model.WatchlistEntry {
		list, added = WatchlistAdd(list, e, s.now())
		return list
	})
	return list, added, err
}

// ToggleWatchlist 切换片单状态，返回切换后是否在片单中
func (s *LibraryService) ToggleWatchlist(ctx context.Context, visitorID string, e model.WatchlistEntry) (bool, error) {
	var inList bool
	_, err := updateList(ctx, s.store, visitorID, model.KeyWatchlist, func(list []model.WatchlistEntry) []model.WatchlistEntry {
		list, inList = WatchlistToggle(list, e, s.now())
		return list
	})
	return inList, err
}

// RemoveFromWatchlist 从片单移除
func (s *LibraryService) RemoveFromWatchlist(ctx context.Context, visitorID string, ref model.MediaRef) (bool, error) {
	var removed bool
	_, err := updateList(ctx, s.store, visitorID, model.KeyWatchlist, func(list []model.WatchlistEntry) []model.WatchlistEntry {
		list, removed = WatchlistRemove(list, ref)
		return list
	})
	return removed, err
}

// InWatchlist 是否已在片单中
func (s *LibraryService) InWatchlist(ctx context.Context, visitorID string, ref model.MediaRef) (bool, error) {
	list, err := loadList[model.WatchlistEntry](ctx, s.store, visitorID, model.KeyWatchlist)
	if err != nil {
		return false, err
	}
	return WatchlistContains(list, ref), nil
}

// ==================== 继续观看 ====================

// ContinueWatching 继续观看列表（最近更新在前）
func (s *LibraryService) ContinueWatching(ctx context.Context, visitorID string) ([]model.ContinueWatchingEntry, error) {
	return loadList[model.ContinueWatchingEntry](ctx, s.store, visitorID, model.KeyContinueWatching)
}

// UpdateProgress 上报观看进度
func (s *LibraryService) UpdateProgress(ctx context.Context, visitorID string, e model.ContinueWatchingEntry) ([]model.ContinueWatchingEntry, error) {
	return updateList(ctx, s.store, visitorID, model.KeyContinueWatching, func(list []model.ContinueWatchingEntry) []model.ContinueWatchingEntry {
		return ContinueUpsert(list, e, s.now())
	})
}

// RemoveContinueWatching 从继续观看移除
func (s *LibraryService) RemoveContinueWatching(ctx context.Context, visitorID string, ref model.MediaRef) (bool, error) {
	var removed bool
	_, err := updateList(ctx, s.store, visitorID, model.KeyContinueWatching, func(list []model.ContinueWatchingEntry) []model.ContinueWatchingEntry {
		list, removed = ContinueRemove(list, ref)
		return list
	})
	return removed, err
}

// ==================== 搜索历史 ====================

// SearchHistory 搜索历史，typ 为空时返回全部
func (s *LibraryService) SearchHistory(ctx context.Context, visitorID, typ string) ([]model.SearchHistoryEntry, error) {
	list, err := loadList[model.SearchHistoryEntry](ctx, s.store, visitorID, model.KeySearchHistory)
	if err != nil {
		return nil, err
	}
	return SearchFilter(list, typ), nil
}

// AddSearch 记录搜索并累计全站热度
func (s *LibraryService) AddSearch(ctx context.Context, visitorID string, e model.SearchHistoryEntry) ([]model.SearchHistoryEntry, error) {
	e.Query = strings.TrimSpace(truncate(e.Query, MaxQueryLength))
	if e.Query == "" {
		return nil, missingParam("query")
	}
	list, err := updateList(ctx, s.store, visitorID, model.KeySearchHistory, func(list []model.SearchHistoryEntry) []model.SearchHistoryEntry {
		return SearchAdd(list, e, s.now())
	})
	if err != nil {
		return nil, err
	}

	// 热度统计失败不影响个人历史
	if s.terms != nil {
		if err := s.terms.Record(ctx, strings.ToLower(e.Query), e.Type); err != nil {
			log.Warn().Str("component", "library").Err(err).Msg("记录搜索热度失败")
		}
	}
	return list, nil
}

// RemoveSearch 删除一条搜索历史
func (s *LibraryService) RemoveSearch(ctx context.Context, visitorID, query, typ string) (bool, error) {
	var removed bool
	_, err := updateList(ctx, s.store, visitorID, model.KeySearchHistory, func(list []model.SearchHistoryEntry) []model.SearchHistoryEntry {
		list, removed = SearchRemove(list, query, typ)
		return list
	})
	return removed, err
}

// Trending 全站热搜
func (s *LibraryService) Trending(ctx context.Context, hours, limit int) ([]*model.SearchTerm, error) {
	if s.terms == nil {
		return []*model.SearchTerm{}, nil
	}
	return s.terms.Trending(ctx, hours, limit)
}

// ==================== 清空 ====================

// Clear 清空某个列表
func (s *LibraryService) Clear(ctx context.Context, visitorID, key string) error {
	switch key {
	case model.KeyWatchlist, model.KeyContinueWatching, model.KeySearchHistory:
	default:
		return invalidParam("key")
	}
	if err := s.store.Delete(ctx, visitorID, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}
