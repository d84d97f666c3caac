package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// maxBodySize 上游响应体上限
const maxBodySize = 8 << 20

// HTTPClient 上游 JSON 接口客户端
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPClient 创建新的HTTP客户端，timeout 为单次请求超时
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "cinestream/1.0 (+https://github.com/user/cinestream)",
	}
}

// StatusError 上游返回非 2xx
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Get 发送GET请求，返回响应体；非 2xx 返回 *StatusError
func (c *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// GetJSON 发送GET请求并解析JSON响应
func (c *HTTPClient) GetJSON(ctx context.Context, url string, target interface{}) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Stream 发送GET请求并返回响应，由调用方负责关闭 Body
func (c *HTTPClient) Stream(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.httpClient.Do(req)
}
