package model

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user model"`
	Content string `json:"content" binding:"required"`
}

// RecommendItem 推荐依据（通常来自片单或继续观看）
type RecommendItem struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title" binding:"required"`
	Year        string  `json:"year,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Overview    string  `json:"overview,omitempty"`
}
