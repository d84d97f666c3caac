package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/utils"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// TMDBService TMDB 统一代理
type TMDBService struct {
	client   *utils.HTTPClient
	baseURL  string
	apiKey   string
	language string
	cache    *utils.TTLCache[[]byte] // nil 表示不缓存
	limiter  *rate.Limiter
	group    singleflight.Group
}

// NewTMDBService 创建 TMDB 服务
func NewTMDBService(cfg *config.Config) *TMDBService {
	s := &TMDBService{
		client:   utils.NewHTTPClient(15 * time.Second),
		baseURL:  cfg.TMDBBaseURL,
		apiKey:   cfg.TMDBAPIKey,
		language: cfg.TMDBLanguage,
		limiter:  rate.NewLimiter(rate.Inf, 0),
	}
	if cfg.TMDBCacheTTL > 0 {
		s.cache = utils.NewTTLCache[[]byte](2000, cfg.TMDBCacheTTL)
	}
	if cfg.TMDBRateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.TMDBRateLimit), int(cfg.TMDBRateLimit)+1)
	}
	return s
}

type tmdbErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// Request 按 requestID 构造上游请求并返回原始 JSON
func (s *TMDBService) Request(ctx context.Context, requestID string, params url.Values) ([]byte, error) {
	path, query, err := buildTMDBPath(requestID, s.withLanguage(requestID, params))
	if err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("tmdb: %w", ErrNotConfigured)
	}

	cacheKey := path + "?" + query.Encode()
	if s.cache != nil {
		if body, ok := s.cache.Get(cacheKey); ok {
			return body, nil
		}
	}

	// 使用 singleflight 合并并发的相同请求；上游调用不随单个客户端断开而取消
	val, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), path, query)
	})
	if err != nil {
		return nil, err
	}
	body := val.([]byte)

	if s.cache != nil {
		s.cache.Set(cacheKey, body)
	}
	return body, nil
}

func (s *TMDBService) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tmdb rate limiter: %w", err)
	}

	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("api_key", s.apiKey)

	body, err := s.client.Get(ctx, s.baseURL+path+"?"+q.Encode())
	if err == nil {
		return body, nil
	}

	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		msg := "TMDB request failed"
		var tmdbErr tmdbErrorResponse
		if json.Unmarshal(statusErr.Body, &tmdbErr) == nil && tmdbErr.StatusMessage != "" {
			msg = tmdbErr.StatusMessage
		}
		log.Warn().Str("component", "tmdb").Str("path", path).Int("status", statusErr.Status).Msg(msg)
		return nil, &UpstreamError{Service: "tmdb", Status: statusErr.Status, Message: msg}
	}
	return nil, fmt.Errorf("tmdb request %s: %w", path, err)
}

// withLanguage 客户端未指定 language 时使用配置的默认语言
func (s *TMDBService) withLanguage(requestID string, params url.Values) url.Values {
	if s.language == "" || params.Get("language") != "" {
		return params
	}
	route, ok := tmdbRoutes[requestID]
	if !ok {
		return params
	}
	for _, name := range route.optional {
		if name == "language" {
			out := url.Values{}
			for k, v := range params {
				out[k] = v
			}
			out.Set("language", s.language)
			return out
		}
	}
	return params
}
