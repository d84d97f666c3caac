package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/model"
)

// StaleDocumentPurger 清理长期未访问的个性化文档
type StaleDocumentPurger interface {
	DeleteStale(ctx context.Context, before time.Time, keys []string) (int64, error)
}

// OldTermPurger 清理长期无人搜索的热搜词
type OldTermPurger interface {
	DeleteOld(ctx context.Context, days int) (int64, error)
}

// CleanupService 清理服务
type CleanupService struct {
	documents     StaleDocumentPurger
	terms         OldTermPurger
	retentionDays int
	termDays      int
	cron          *cron.Cron
}

// NewCleanupService 创建清理服务
func NewCleanupService(documents StaleDocumentPurger, terms OldTermPurger, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 180
	}
	return &CleanupService{
		documents:     documents,
		terms:         terms,
		retentionDays: retentionDays,
		termDays:      30,
		cron:          cron.New(),
	}
}

// Start 按 cron 表达式启动定时清理，启动时先运行一次
func (s *CleanupService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunCleanup(context.Background()) }); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	go s.RunCleanup(context.Background())
	s.cron.Start()
	return nil
}

// Stop 停止定时任务并等待正在运行的任务结束
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
}

// RunCleanup 执行一次清理
func (s *CleanupService) RunCleanup(ctx context.Context) {
	logger := log.With().Str("component", "cleanup").Logger()
	logger.Info().Msg("开始清理过期数据...")

	// 1. 清理长期未更新的访客数据
	before := time.Now().AddDate(0, 0, -s.retentionDays)
	keys := []string{model.KeyWatchlist, model.KeyContinueWatching, model.KeySearchHistory}
	affected, err := s.documents.DeleteStale(ctx, before, keys)
	if err != nil {
		logger.Error().Err(err).Msg("清理访客数据失败")
	} else {
		logger.Info().Int64("rows", affected).Int("days", s.retentionDays).Msg("已清理过期访客数据")
	}

	// 2. 清理超过 30 天未搜索的热搜词
	cleaned, err := s.terms.DeleteOld(ctx, s.termDays)
	if err != nil {
		logger.Error().Err(err).Msg("清理旧热搜词失败")
	} else if cleaned > 0 {
		logger.Info().Int64("rows", cleaned).Msg("已清理旧热搜词")
	}
}
