package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
)

type recommendRequest struct {
	Items  []model.RecommendItem `json:"items"`
	Prompt string                `json:"prompt"`
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

// Recommend AI 推荐 POST /api/ai/recommend
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}

	text, err := h.Assistant.Recommend(c.Request.Context(), req.Items, req.Prompt)
	if err != nil {
		h.fail(c, err, "AI 推荐暂不可用")
		return
	}
	utils.Success(c, gin.H{"text": text})
}

// Chat AI 对话 POST /api/ai/chat
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}

	text, err := h.Assistant.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		h.fail(c, err, "AI 对话暂不可用")
		return
	}
	utils.Success(c, gin.H{"text": text})
}
