package implementation

import (
	"context"
	"testing"
	"time"

	"apin-chat/internal/constant"
	"apin-chat/internal/entity"
	"apin-chat/internal/pkg/logger"
	"apin-chat/pkg/kvstore/memory"
	"apin-chat/pkg/kvstore/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChats() []entity.Chat {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	updated := created.Add(2 * time.Minute)

	first := entity.NewChat(created)
	first.Title = "Weekend Plans"
	first.Messages = []entity.Message{
		entity.NewUserMessage("What should I do this weekend?", created),
		entity.NewAssistantMessage("How about a hike?", updated),
	}
	first.UpdatedAt = updated

	second := entity.NewChat(updated)
	second.Messages = []entity.Message{
		entity.NewUserMessage("Hi", updated),
		entity.NewPendingMessage(updated),
	}

	empty := entity.NewChat(updated)

	return []entity.Chat{first, second, empty}
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	repo := NewChatRepository(memory.NewStore(), logger.NewNopLogger())
	chats := sampleChats()

	repo.Save(context.Background(), chats)
	loaded := repo.Load(context.Background())

	assert.Equal(t, chats, loaded)
}

func TestChatRepositoryRoundTripSQLite(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	repo := NewChatRepository(store, logger.NewNopLogger())
	chats := sampleChats()

	repo.Save(context.Background(), chats)
	assert.Equal(t, chats, repo.Load(context.Background()))

	// A second save replaces the first.
	repo.Save(context.Background(), chats[:1])
	assert.Equal(t, chats[:1], repo.Load(context.Background()))
}

func TestChatRepositoryLoadEmpty(t *testing.T) {
	repo := NewChatRepository(memory.NewStore(), logger.NewNopLogger())

	loaded := repo.Load(context.Background())
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestChatRepositoryLoadCorrupt(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Set(context.Background(), constant.StoredChatsKey, []byte("{not json")))
	repo := NewChatRepository(store, logger.NewNopLogger())

	loaded := repo.Load(context.Background())
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestChatRepositoryClear(t *testing.T) {
	store := memory.NewStore()
	repo := NewChatRepository(store, logger.NewNopLogger())
	repo.Save(context.Background(), sampleChats())

	repo.Clear(context.Background())

	assert.Empty(t, repo.Load(context.Background()))
	_, err := store.Get(context.Background(), constant.StoredChatsKey)
	assert.Error(t, err)
}

func TestChatRepositorySaveEmptyList(t *testing.T) {
	repo := NewChatRepository(memory.NewStore(), logger.NewNopLogger())
	repo.Save(context.Background(), sampleChats())

	repo.Save(context.Background(), []entity.Chat{})

	loaded := repo.Load(context.Background())
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}
