package mapper

import (
	"apin-chat/internal/entity"
	"apin-chat/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Chat Mappers

func (m *ChatMapper) ChatsToModel(chats []entity.Chat) *model.StoredChats {
	stored := &model.StoredChats{
		Version: model.StoredChatsVersion,
		Chats:   make([]model.StoredChat, 0, len(chats)),
	}
	for _, c := range chats {
		stored.Chats = append(stored.Chats, m.ChatToModel(c))
	}
	return stored
}

func (m *ChatMapper) ChatsToEntity(stored *model.StoredChats) []entity.Chat {
	if stored == nil {
		return []entity.Chat{}
	}
	chats := make([]entity.Chat, 0, len(stored.Chats))
	for _, c := range stored.Chats {
		chats = append(chats, m.ChatToEntity(c))
	}
	return chats
}

func (m *ChatMapper) ChatToModel(c entity.Chat) model.StoredChat {
	messages := make([]model.StoredMessage, 0, len(c.Messages))
	for _, msg := range c.Messages {
		messages = append(messages, m.MessageToModel(msg))
	}
	return model.StoredChat{
		Id:        c.Id,
		Title:     c.Title,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ChatMapper) ChatToEntity(c model.StoredChat) entity.Chat {
	messages := make([]entity.Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		messages = append(messages, m.MessageToEntity(msg))
	}
	updatedAt := c.UpdatedAt
	if updatedAt.Before(c.CreatedAt) {
		updatedAt = c.CreatedAt
	}
	return entity.Chat{
		Id:        c.Id,
		Title:     c.Title,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToModel(msg entity.Message) model.StoredMessage {
	return model.StoredMessage{
		Id:        msg.Id,
		Content:   msg.Content,
		IsUser:    msg.IsUser(),
		Timestamp: msg.CreatedAt,
		Pending:   msg.Pending,
	}
}

func (m *ChatMapper) MessageToEntity(msg model.StoredMessage) entity.Message {
	role := entity.MessageRoleAssistant
	if msg.IsUser {
		role = entity.MessageRoleUser
	}
	return entity.Message{
		Id:        msg.Id,
		Content:   msg.Content,
		Role:      role,
		CreatedAt: msg.Timestamp,
		Pending:   msg.Pending,
	}
}
