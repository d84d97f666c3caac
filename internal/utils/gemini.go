package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrGeminiNotConfigured 未配置 GEMINI_API_KEY
var ErrGeminiNotConfigured = errors.New("GEMINI_API_KEY is not set")

// GeminiRequest Gemini API 请求结构
type GeminiRequest struct {
	SystemInstruction *GeminiContent          `json:"systemInstruction,omitempty"`
	Contents          []GeminiContent         `json:"contents"`
	GenerationConfig  *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GeminiResponse Gemini API 响应结构
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient Gemini generateContent 客户端
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient 创建客户端；LLM 生成较慢，超时放宽到 30 秒
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate 调用 generateContent，返回第一个候选的文本
func (g *GeminiClient) Generate(ctx context.Context, reqBody GeminiRequest) (string, error) {
	if g.apiKey == "" {
		return "", ErrGeminiNotConfigured
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post request to gemini failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response failed: %w", err)
	}

	var result GeminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response failed (status %d): %w", resp.StatusCode, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", result.Error.Message)
	}

	if len(result.Candidates) > 0 {
		var sb strings.Builder
		for _, p := range result.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("gemini returned no content")
}

// GeminiText 构造单段文本内容
func GeminiText(role, text string) GeminiContent {
	return GeminiContent{Role: role, Parts: []GeminiPart{{Text: text}}}
}
