package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
)

const (
	maxRecommendItems = 30
	maxChatMessages   = 40
	maxMessageChars   = 4000
)

const assistantInstruction = `You are a friendly movie and TV recommendation assistant for a streaming catalogue.
Recommend titles that exist on TMDB, give the release year in parentheses, and keep each
suggestion to one or two sentences. Do not invent plot details you are unsure about.
If the user asks about something unrelated to movies, TV or sports, steer back politely.`

// TextGenerator 文本生成接口
type TextGenerator interface {
	Generate(ctx context.Context, req utils.GeminiRequest) (string, error)
}

// AssistantService 对话式推荐助手
type AssistantService struct {
	llm TextGenerator
}

// NewAssistantService 使用 Gemini 创建助手
func NewAssistantService(cfg *config.Config) *AssistantService {
	return &AssistantService{
		llm: utils.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel),
	}
}

// NewAssistantServiceWith 使用指定的生成器创建助手
func NewAssistantServiceWith(llm TextGenerator) *AssistantService {
	return &AssistantService{llm: llm}
}

// Recommend 根据一组作品生成推荐
func (s *AssistantService) Recommend(ctx context.Context, items []model.RecommendItem, prompt string) (string, error) {
	if len(items) == 0 {
		return "", missingParam("items")
	}
	if len(items) > maxRecommendItems {
		items = items[:maxRecommendItems]
	}

	var sb strings.Builder
	sb.WriteString("Here are titles I have saved or watched recently:\n")
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(strings.TrimSpace(it.Title))
		if it.Year != "" {
			fmt.Fprintf(&sb, " (%s)", it.Year)
		}
		if it.Type != "" {
			fmt.Fprintf(&sb, " [%s]", it.Type)
		}
		if it.VoteAverage > 0 {
			fmt.Fprintf(&sb, " rated %.1f", it.VoteAverage)
		}
		sb.WriteString("\n")
	}
	if p := strings.TrimSpace(prompt); p != "" {
		sb.WriteString("\n")
		sb.WriteString(truncate(p, maxMessageChars))
	} else {
		sb.WriteString("\nRecommend 5 titles I have not listed that I am likely to enjoy, and say why.")
	}

	return s.generate(ctx, "recommend", []utils.GeminiContent{utils.GeminiText("user", sb.String())})
}

// Chat 多轮对话，最后一条必须来自用户；只保留最近的消息，且窗口以用户消息开头
func (s *AssistantService) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", missingParam("messages")
	}
	for _, m := range messages {
		if m.Role != "user" && m.Role != "model" {
			return "", invalidParam("role")
		}
		if strings.TrimSpace(m.Content) == "" {
			return "", missingParam("content")
		}
	}
	if messages[len(messages)-1].Role != "user" {
		return "", invalidParam("messages")
	}

	if len(messages) > maxChatMessages {
		messages = messages[len(messages)-maxChatMessages:]
	}
	for messages[0].Role != "user" {
		messages = messages[1:]
	}

	contents := make([]utils.GeminiContent, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, utils.GeminiText(m.Role, truncate(strings.TrimSpace(m.Content), maxMessageChars)))
	}
	return s.generate(ctx, "chat", contents)
}

func (s *AssistantService) generate(ctx context.Context, kind string, contents []utils.GeminiContent) (string, error) {
	instruction := utils.GeminiText("", assistantInstruction)
	text, err := s.llm.Generate(ctx, utils.GeminiRequest{
		SystemInstruction: &instruction,
		Contents:          contents,
		GenerationConfig:  &utils.GeminiGenerationConfig{Temperature: 0.7, MaxOutputTokens: 1024},
	})
	if err != nil {
		log.Error().Str("component", "assistant").Str("kind", kind).Err(err).Msg("生成推荐失败")
		return "", fmt.Errorf("assistant %s: %w", kind, err)
	}
	return text, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
