package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
	"gorm.io/gorm"
)

type SearchTermRepository struct {
	db *gorm.DB
}

func NewSearchTermRepository(db *gorm.DB) *SearchTermRepository {
	return &SearchTermRepository{db: db}
}

// Record 累计搜索词热度
func (r *SearchTermRepository) Record(ctx context.Context, query, typ string) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO search_terms (query, type, count, last_searched_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (query, type) DO UPDATE SET
			count = search_terms.count + 1,
			last_searched_at = EXCLUDED.last_searched_at
	`, query, typ).Error
}

// Trending 获取热搜词；hours > 0 时只统计该时间段内仍有搜索的词
func (r *SearchTermRepository) Trending(ctx context.Context, hours, limit int) ([]*model.SearchTerm, error) {
	// 1. 检查缓存
	cacheKey := fmt.Sprintf("trending:%d:%d", hours, limit)
	if cached, found := utils.CacheGet(cacheKey); found {
		if terms, ok := cached.([]*model.SearchTerm); ok {
			return terms, nil
		}
	}

	// 2. 从数据库获取
	terms := []*model.SearchTerm{}
	q := r.db.WithContext(ctx).Model(&model.SearchTerm{})
	if hours > 0 {
		q = q.Where("last_searched_at > ?", time.Now().Add(-time.Duration(hours)*time.Hour))
	}
	if err := q.Order("count DESC").Order("last_searched_at DESC").Limit(limit).Find(&terms).Error; err != nil {
		return nil, err
	}

	// 3. 设置缓存
	utils.CacheSet(cacheKey, terms, 10*time.Minute)
	return terms, nil
}

// DeleteOld 清理超过指定天数未搜索的词
func (r *SearchTermRepository) DeleteOld(ctx context.Context, days int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_searched_at < ?", time.Now().AddDate(0, 0, -days)).
		Delete(&model.SearchTerm{})
	return result.RowsAffected, result.Error
}
