package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/middleware"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
)

// visitorID 取当前访客；未识别时直接返回 400
func visitorID(c *gin.Context) (string, bool) {
	vid := middleware.GetVisitorID(c)
	if vid == "" {
		utils.BadRequest(c, "无法识别访客")
		return "", false
	}
	return vid, true
}

// ==================== 片单 ====================

// Watchlist 片单列表 GET /api/watchlist
func (h *Handler) Watchlist(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	list, err := h.Library.Watchlist(c.Request.Context(), vid)
	if err != nil {
		h.fail(c, err, "获取片单失败")
		return
	}
	utils.Success(c, list)
}

// AddToWatchlist 加入片单 POST /api/watchlist
func (h *Handler) AddToWatchlist(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	var entry model.WatchlistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}

	list, added, err := h.Library.AddToWatchlist(c.Request.Context(), vid, entry)
	if err != nil {
		h.fail(c, err, "加入片单失败")
		return
	}
	utils.Success(c, gin.H{"added": added, "items": list})
}

// ToggleWatchlist 切换片单状态 POST /api/watchlist/toggle
func (h *Handler) ToggleWatchlist(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	var entry model.WatchlistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}

	inList, err := h.Library.ToggleWatchlist(c.Request.Context(), vid, entry)
	if err != nil {
		h.fail(c, err, "更新片单失败")
		return
	}
	utils.Success(c, gin.H{"in_watchlist": inList})
}

// WatchlistStatus 是否在片单中 GET /api/watchlist/:type/:id
func (h *Handler) WatchlistStatus(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	inList, err := h.Library.InWatchlist(c.Request.Context(), vid, ref)
	if err != nil {
		h.fail(c, err, "获取片单状态失败")
		return
	}
	utils.Success(c, gin.H{"in_watchlist": inList})
}

// RemoveFromWatchlist 移出片单 DELETE /api/watchlist/:type/:id
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	removed, err := h.Library.RemoveFromWatchlist(c.Request.Context(), vid, ref)
	if err != nil {
		h.fail(c, err, "移出片单失败")
		return
	}
	utils.Success(c, gin.H{"removed": removed})
}

// ClearWatchlist 清空片单 DELETE /api/watchlist
func (h *Handler) ClearWatchlist(c *gin.Context) {
	h.clear(c, model.KeyWatchlist)
}

// ==================== 继续观看 ====================

// ContinueWatching 继续观看列表 GET /api/continue-watching
func (h *Handler) ContinueWatching(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	list, err := h.Library.ContinueWatching(c.Request.Context(), vid)
	if err != nil {
		h.fail(c, err, "获取继续观看失败")
		return
	}
	utils.Success(c, list)
}

// UpdateProgress 上报播放进度 PUT /api/continue-watching
func (h *Handler) UpdateProgress(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	var entry model.ContinueWatchingEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}

	list, err := h.Library.UpdateProgress(c.Request.Context(), vid, entry)
	if err != nil {
		h.fail(c, err, "保存播放进度失败")
		return
	}
	utils.Success(c, list)
}

// RemoveContinueWatching 删除一条继续观看 DELETE /api/continue-watching/:type/:id
func (h *Handler) RemoveContinueWatching(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	removed, err := h.Library.RemoveContinueWatching(c.Request.Context(), vid, ref)
	if err != nil {
		h.fail(c, err, "删除继续观看失败")
		return
	}
	utils.Success(c, gin.H{"removed": removed})
}

// ClearContinueWatching 清空继续观看 DELETE /api/continue-watching
func (h *Handler) ClearContinueWatching(c *gin.Context) {
	h.clear(c, model.KeyContinueWatching)
}

// ==================== 搜索历史 ====================

type searchHistoryRequest struct {
	Query       string `json:"query" binding:"required,max=200"`
	Type        string `json:"type"`
	ResultCount *int   `json:"result_count"`
}

// SearchHistory 搜索历史 GET /api/search-history?type=
func (h *Handler) SearchHistory(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	typ := c.Query("type")
	if typ != "" && !model.IsSearchType(typ) {
		utils.BadRequest(c, "不支持的搜索类型")
		return
	}

	list, err := h.Library.SearchHistory(c.Request.Context(), vid, typ)
	if err != nil {
		h.fail(c, err, "获取搜索历史失败")
		return
	}
	utils.Success(c, list)
}

// AddSearchHistory 记录搜索 POST /api/search-history
func (h *Handler) AddSearchHistory(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	var req searchHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		utils.BadRequest(c, "搜索词不能为空")
		return
	}
	if req.Type == "" {
		req.Type = model.MediaMulti
	}
	if !model.IsSearchType(req.Type) {
		utils.BadRequest(c, "不支持的搜索类型")
		return
	}

	list, err := h.Library.AddSearch(c.Request.Context(), vid, model.SearchHistoryEntry{
		Query:       req.Query,
		Type:        req.Type,
		ResultCount: req.ResultCount,
	})
	if err != nil {
		h.fail(c, err, "保存搜索历史失败")
		return
	}
	utils.Success(c, list)
}

// RemoveSearchHistory 删除一条搜索历史 DELETE /api/search-history?query=&type=
func (h *Handler) RemoveSearchHistory(c *gin.Context) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.BadRequest(c, "缺少参数 query")
		return
	}

	removed, err := h.Library.RemoveSearch(c.Request.Context(), vid, query, c.DefaultQuery("type", model.MediaMulti))
	if err != nil {
		h.fail(c, err, "删除搜索历史失败")
		return
	}
	utils.Success(c, gin.H{"removed": removed})
}

// ClearSearchHistory 清空搜索历史 DELETE /api/search-history/all
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	h.clear(c, model.KeySearchHistory)
}

// TrendingSearches 全站热搜 GET /api/search-history/trending?hours=24&limit=10
func (h *Handler) TrendingSearches(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours < 1 || hours > 24*30 {
		utils.BadRequest(c, "hours 参数无效")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		utils.BadRequest(c, "limit 参数无效")
		return
	}

	terms, err := h.Library.Trending(c.Request.Context(), hours, limit)
	if err != nil {
		h.fail(c, err, "获取热搜失败")
		return
	}
	utils.Success(c, terms)
}

func (h *Handler) clear(c *gin.Context, key string) {
	vid, ok := visitorID(c)
	if !ok {
		return
	}
	if err := h.Library.Clear(c.Request.Context(), vid, key); err != nil {
		h.fail(c, err, "清空失败")
		return
	}
	utils.Success(c, nil)
}
