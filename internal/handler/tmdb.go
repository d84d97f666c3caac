package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
)

// 详情页默认附带的子资源
const (
	detailsAppend = "credits,videos,recommendations,external_ids"
	personAppend  = "combined_credits,external_ids"
)

// TMDBRequest 统一代理入口 GET /api/tmdb?requestID=...
func (h *Handler) TMDBRequest(c *gin.Context) {
	params := c.Request.URL.Query()
	requestID := params.Get("requestID")
	params.Del("requestID")
	params.Del("api_key")

	h.proxyTMDB(c, requestID, params)
}

// Search 搜索 GET /api/search?query=&type=&page=
func (h *Handler) Search(c *gin.Context) {
	typ := c.DefaultQuery("type", model.MediaMulti)

	var requestID string
	switch typ {
	case model.MediaMulti:
		requestID = "searchMulti"
	case model.MediaMovie:
		requestID = "searchMovies"
	case model.MediaTV:
		requestID = "searchTv"
	case model.MediaPerson:
		requestID = "searchPerson"
	default:
		utils.BadRequest(c, "不支持的搜索类型")
		return
	}

	params := url.Values{}
	copyQuery(c, params, "query", "page", "include_adult", "language", "year")
	h.proxyTMDB(c, requestID, params)
}

// MovieDetails 电影详情 GET /api/movie/:id
func (h *Handler) MovieDetails(c *gin.Context) {
	h.details(c, "movieDetails", detailsAppend)
}

// TVDetails 剧集详情 GET /api/tv/:id
func (h *Handler) TVDetails(c *gin.Context) {
	h.details(c, "tvDetails", detailsAppend)
}

// PersonDetails 人物详情 GET /api/person/:id
func (h *Handler) PersonDetails(c *gin.Context) {
	h.details(c, "personDetails", personAppend)
}

func (h *Handler) details(c *gin.Context, requestID, appendDefault string) {
	params := url.Values{}
	params.Set("id", c.Param("id"))
	params.Set("append_to_response", c.DefaultQuery("append_to_response", appendDefault))
	copyQuery(c, params, "language")
	h.proxyTMDB(c, requestID, params)
}

// TVSeason 季详情 GET /api/tv/:id/season/:season
func (h *Handler) TVSeason(c *gin.Context) {
	params := url.Values{}
	params.Set("id", c.Param("id"))
	params.Set("season", c.Param("season"))
	copyQuery(c, params, "language", "append_to_response")
	h.proxyTMDB(c, "tvSeason", params)
}

// Genres 类型列表 GET /api/genres/:type
func (h *Handler) Genres(c *gin.Context) {
	switch c.Param("type") {
	case model.MediaMovie:
		h.proxyTMDB(c, "movieGenres", url.Values{})
	case model.MediaTV:
		h.proxyTMDB(c, "tvGenres", url.Values{})
	default:
		utils.BadRequest(c, "类型必须是 movie 或 tv")
	}
}

// Discover 条件发现 GET /api/discover/:type
func (h *Handler) Discover(c *gin.Context) {
	params := c.Request.URL.Query()
	params.Del("api_key")

	switch c.Param("type") {
	case model.MediaMovie:
		h.proxyTMDB(c, "discoverMovies", params)
	case model.MediaTV:
		h.proxyTMDB(c, "discoverTv", params)
	default:
		utils.BadRequest(c, "类型必须是 movie 或 tv")
	}
}

// Poster 海报图片代理 GET /api/poster/:size/*path
func (h *Handler) Poster(c *gin.Context) {
	resp, err := h.Posters.Fetch(c.Request.Context(), c.Param("size"), c.Param("path"))
	if err != nil {
		h.fail(c, err, "获取图片失败")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Cache-Control": "public, max-age=604800",
	})
}

func (h *Handler) proxyTMDB(c *gin.Context, requestID string, params url.Values) {
	body, err := h.TMDB.Request(c.Request.Context(), requestID, params)
	if err != nil {
		h.fail(c, err, "获取影视数据失败")
		return
	}
	utils.RawJSON(c, body)
}

// copyQuery 复制非空查询参数
func copyQuery(c *gin.Context, dst url.Values, keys ...string) {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			dst.Set(k, v)
		}
	}
}
