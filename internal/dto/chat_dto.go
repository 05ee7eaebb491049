package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	IsUser    bool      `json:"is_user"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	Id          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	LastMessage string            `json:"last_message"`
	IsActive    bool              `json:"is_active"`
	Messages    []MessageResponse `json:"messages"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ChatListResponse struct {
	Chats        []ChatResponse `json:"chats"`
	ActiveChatId *uuid.UUID     `json:"active_chat_id"`
	ModelType    string         `json:"model_type"`
	Busy         bool           `json:"busy"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	ChatId *uuid.UUID `json:"chat_id"`
	Busy   bool       `json:"busy"`
}

type SetModelTypeRequest struct {
	ModelType string `json:"model_type" validate:"required,oneof=Balanced Creative Precise"`
}

type ModelTypeResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	Selected    bool    `json:"selected"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Message   string `json:"message"`
	Indicator string `json:"indicator"`
}
