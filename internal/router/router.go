package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/handler"
	"github.com/user/cinestream/internal/middleware"
	"github.com/user/cinestream/internal/utils"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "")
	})

	api := r.Group("/api")
	api.Use(middleware.Visitor(h.Config.AppSecret, h.Config.VisitorTokenExpiry, h.Config.IsProduction()))

	// ==================== TMDB 代理 ====================
	{
		api.GET("/tmdb", h.TMDBRequest)
		api.GET("/search", h.Search)
		api.GET("/movie/:id", h.MovieDetails)
		api.GET("/tv/:id", h.TVDetails)
		api.GET("/tv/:id/season/:season", h.TVSeason)
		api.GET("/person/:id", h.PersonDetails)
		api.GET("/genres/:type", h.Genres)
		api.GET("/discover/:type", h.Discover)
		api.GET("/poster/:size/*path", h.Poster)
	}

	// ==================== 体育赛事 ====================
	sports := api.Group("/sports")
	{
		sports.GET("/leagues", h.SportsLeagues)
		sports.GET("/matches", h.SportsMatches)
		sports.GET("/event/:id", h.SportsEvent)
		sports.GET("/teams", h.SportsTeams)
	}

	// ==================== 片单 ====================
	watchlist := api.Group("/watchlist")
	{
		watchlist.GET("", h.Watchlist)
		watchlist.POST("", h.AddToWatchlist)
		watchlist.DELETE("", h.ClearWatchlist)
		watchlist.POST("/toggle", h.ToggleWatchlist)
		watchlist.GET("/:type/:id", h.WatchlistStatus)
		watchlist.DELETE("/:type/:id", h.RemoveFromWatchlist)
	}

	// ==================== 继续观看 ====================
	continueWatching := api.Group("/continue-watching")
	{
		continueWatching.GET("", h.ContinueWatching)
		continueWatching.PUT("", h.UpdateProgress)
		continueWatching.DELETE("", h.ClearContinueWatching)
		continueWatching.DELETE("/:type/:id", h.RemoveContinueWatching)
	}

	// ==================== 搜索历史 ====================
	history := api.Group("/search-history")
	{
		history.GET("", h.SearchHistory)
		history.POST("", h.AddSearchHistory)
		history.DELETE("", h.RemoveSearchHistory)
		history.DELETE("/all", h.ClearSearchHistory)
		history.GET("/trending", h.TrendingSearches)
	}

	// ==================== AI 助手 ====================
	ai := api.Group("/ai")
	{
		ai.POST("/recommend", h.Recommend)
		ai.POST("/chat", h.Chat)
	}

	// ==================== 偏好设置 ====================
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
}
