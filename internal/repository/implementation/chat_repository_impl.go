package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"apin-chat/internal/constant"
	"apin-chat/internal/entity"
	"apin-chat/internal/mapper"
	"apin-chat/internal/model"
	"apin-chat/internal/pkg/logger"
	"apin-chat/internal/repository/contract"
	"apin-chat/pkg/kvstore"
)

const module = "ChatRepository"

type ChatRepositoryImpl struct {
	store  kvstore.Store
	key    string
	mapper *mapper.ChatMapper
	logger logger.ILogger
}

func NewChatRepository(store kvstore.Store, log logger.ILogger) contract.ChatRepository {
	return &ChatRepositoryImpl{
		store:  store,
		key:    constant.StoredChatsKey,
		mapper: mapper.NewChatMapper(),
		logger: log,
	}
}

func (r *ChatRepositoryImpl) Save(ctx context.Context, chats []entity.Chat) {
	data, err := json.Marshal(r.mapper.ChatsToModel(chats))
	if err != nil {
		r.logger.Error(module, "Failed to encode chats", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		r.logger.Error(module, "Failed to save chats", map[string]interface{}{"error": err.Error()})
		return
	}
	r.logger.Debug(module, "Saved chats", map[string]interface{}{"count": len(chats)})
}

func (r *ChatRepositoryImpl) Load(ctx context.Context) []entity.Chat {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		r.logger.Info(module, "No saved chats found", nil)
		return []entity.Chat{}
	}
	if err != nil {
		r.logger.Error(module, "Failed to load chats", map[string]interface{}{"error": err.Error()})
		return []entity.Chat{}
	}

	var stored model.StoredChats
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Error(module, "Failed to decode chats", map[string]interface{}{"error": err.Error()})
		return []entity.Chat{}
	}

	chats := r.mapper.ChatsToEntity(&stored)
	r.logger.Info(module, "Loaded chats", map[string]interface{}{"count": len(chats)})
	return chats
}

func (r *ChatRepositoryImpl) Clear(ctx context.Context) {
	if err := r.store.Delete(ctx, r.key); err != nil {
		r.logger.Error(module, "Failed to clear chats", map[string]interface{}{"error": err.Error()})
		return
	}
	r.logger.Info(module, "Cleared all chats", nil)
}
