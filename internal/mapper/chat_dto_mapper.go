package mapper

import (
	"apin-chat/internal/dto"
	"apin-chat/internal/entity"
	"apin-chat/pkg/llm"

	"github.com/google/uuid"
)

// Response Mappers

func (m *ChatMapper) ChatToResponse(c entity.Chat, activeId uuid.UUID) dto.ChatResponse {
	messages := make([]dto.MessageResponse, 0, len(c.Messages))
	for _, msg := range c.Messages {
		messages = append(messages, m.MessageToResponse(msg))
	}
	return dto.ChatResponse{
		Id:          c.Id,
		Title:       c.Title,
		LastMessage: c.LastMessage(),
		IsActive:    c.Id == activeId,
		Messages:    messages,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *ChatMapper) MessageToResponse(msg entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        msg.Id,
		Content:   msg.Content,
		Role:      string(msg.Role),
		IsUser:    msg.IsUser(),
		Pending:   msg.Pending,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) ModelTypesToResponse(types []entity.ModelType, selected entity.ModelType) []dto.ModelTypeResponse {
	res := make([]dto.ModelTypeResponse, 0, len(types))
	for _, t := range types {
		res = append(res, dto.ModelTypeResponse{
			Name:        string(t),
			Description: t.Description(),
			Temperature: t.Temperature(),
			Selected:    t == selected,
		})
	}
	return res
}

func (m *ChatMapper) AvailabilityToResponse(a llm.Availability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		Available: a.Available,
		Reason:    string(a.Reason),
		Detail:    a.Detail,
		Message:   a.Describe(),
		Indicator: string(a.Indicator()),
	}
}
