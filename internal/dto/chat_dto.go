package dto

import "library-assistant-be/pkg/rag/stream"

type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Messages  []ChatMessageDTO `json:"messages" validate:"required,min=1,max=50,dive"`
	SessionId string           `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

type ChatResponse struct {
	TurnId    string            `json:"turn_id"`
	Response  string            `json:"response"`
	Books     []stream.BookCard `json:"books"`
	Intent    string            `json:"intent,omitempty"`
	Truncated bool              `json:"truncated"`
}
