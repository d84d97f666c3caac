package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/repository"
	"github.com/user/cinestream/internal/service"
	"github.com/user/cinestream/internal/utils"
)

// TMDBProxy TMDB 统一代理
type TMDBProxy interface {
	Request(ctx context.Context, requestID string, params url.Values) ([]byte, error)
}

// SportsFeed 赛事数据
type SportsFeed interface {
	Leagues() []model.League
	Matches(ctx context.Context, leagueIDs []string) ([]model.SportsEvent, error)
	Event(ctx context.Context, eventID string) ([]byte, error)
	SearchTeams(ctx context.Context, name string) ([]byte, error)
}

// PosterFetcher 海报图片代理
type PosterFetcher interface {
	Fetch(ctx context.Context, size, file string) (*http.Response, error)
}

// Assistant 对话式推荐
type Assistant interface {
	Recommend(ctx context.Context, items []model.RecommendItem, prompt string) (string, error)
	Chat(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// Handler HTTP 处理器
type Handler struct {
	Config    *config.Config
	TMDB      TMDBProxy
	Sports    SportsFeed
	Posters   PosterFetcher
	Assistant Assistant
	Library   *service.LibraryService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	RegisterValidators()

	return &Handler{
		Config:    cfg,
		TMDB:      service.NewTMDBService(cfg),
		Sports:    service.NewSportsService(cfg),
		Posters:   service.NewPosterService(cfg),
		Assistant: service.NewAssistantService(cfg),
		Library:   service.NewLibraryService(repos.Documents, repos.SearchTerms),
	}
}

var registerOnce sync.Once

// RegisterValidators 注册自定义校验规则
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
			return model.IsMediaType(fl.Field().String())
		})
	})
}

// fail 统一错误处理：参数错误 400，上游错误透传状态码，其余 500
func (h *Handler) fail(c *gin.Context, err error, message string) {
	if service.IsClientError(err) {
		utils.BadRequest(c, err.Error())
		return
	}

	var upstream *service.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		utils.Error(c, status, upstream.Message)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	_ = c.Error(err)
	utils.InternalServerError(c, message)
}

// parseRef 解析路径中的 :type/:id
func parseRef(c *gin.Context) (model.MediaRef, bool) {
	typ := c.Param("type")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 || !model.IsMediaType(typ) {
		utils.BadRequest(c, "无效的内容标识")
		return model.MediaRef{}, false
	}
	return model.MediaRef{ID: id, Type: typ}, true
}
