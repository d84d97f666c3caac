package service

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/utils"
)

// posterSizes 允许代理的图片尺寸
var posterSizes = map[string]bool{
	"w92": true, "w154": true, "w185": true, "w300": true, "w342": true,
	"w500": true, "w780": true, "w1280": true, "h632": true, "original": true,
}

var posterFileRe = regexp.MustCompile(`^/[A-Za-z0-9_\-]+\.(jpg|jpeg|png|webp|svg)$`)

// PosterService 海报图片代理
type PosterService struct {
	client  *utils.HTTPClient
	baseURL string
}

// NewPosterService 创建海报代理
func NewPosterService(cfg *config.Config) *PosterService {
	return &PosterService{
		client:  utils.NewHTTPClient(20 * time.Second),
		baseURL: cfg.PosterBaseURL,
	}
}

// Fetch 请求海报图片，调用方负责关闭 Body；上游非 200 返回 *UpstreamError
func (s *PosterService) Fetch(ctx context.Context, size, file string) (*http.Response, error) {
	if !posterSizes[size] {
		return nil, invalidParam("size")
	}
	file = "/" + strings.TrimLeft(path.Clean("/"+file), "/")
	if !posterFileRe.MatchString(file) {
		return nil, invalidParam("path")
	}

	resp, err := s.client.Stream(ctx, s.baseURL+"/"+size+file)
	if err != nil {
		return nil, fmt.Errorf("poster request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &UpstreamError{Service: "poster", Status: resp.StatusCode, Message: "poster request failed"}
	}
	return resp, nil
}
