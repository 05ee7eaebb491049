package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apin-chat/internal/entity"
	"apin-chat/internal/pkg/serverutils"
	"apin-chat/internal/service"
	"apin-chat/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatStore struct {
	chats        []entity.Chat
	activeId     uuid.UUID
	modelType    entity.ModelType
	busy         bool
	availability llm.Availability
	sendErr      error
	sentText     string
	deleted      []uuid.UUID
}

func (s *stubChatStore) Init(ctx context.Context) {}

func (s *stubChatStore) CreateChat(ctx context.Context) entity.Chat {
	chat := entity.NewChat(time.Now())
	s.chats = append([]entity.Chat{chat}, s.chats...)
	s.activeId = chat.Id
	return chat
}

func (s *stubChatStore) DeleteChat(ctx context.Context, id uuid.UUID) {
	s.deleted = append(s.deleted, id)
}

func (s *stubChatStore) SelectChat(ctx context.Context, id uuid.UUID) bool {
	for _, c := range s.chats {
		if c.Id == id {
			s.activeId = id
			return true
		}
	}
	return false
}

func (s *stubChatStore) CheckAvailability(ctx context.Context) llm.Availability {
	return s.availability
}

func (s *stubChatStore) SendMessage(ctx context.Context, text string) error {
	s.sentText = text
	return s.sendErr
}

func (s *stubChatStore) ClearAllChats(ctx context.Context) entity.Chat {
	s.chats = nil
	return s.CreateChat(ctx)
}

func (s *stubChatStore) SetModelType(ctx context.Context, modelType entity.ModelType) error {
	s.modelType = modelType
	return nil
}

func (s *stubChatStore) Chats() []entity.Chat { return s.chats }

func (s *stubChatStore) ActiveChat() (entity.Chat, bool) {
	for _, c := range s.chats {
		if c.Id == s.activeId {
			return c, true
		}
	}
	return entity.Chat{}, false
}

func (s *stubChatStore) ModelType() entity.ModelType { return s.modelType }

func (s *stubChatStore) ModelTypes() []entity.ModelType { return entity.AllModelTypes }

func (s *stubChatStore) IsBusy() bool { return s.busy }

func (s *stubChatStore) Availability() llm.Availability { return s.availability }

func (s *stubChatStore) Wait() {}

func newTestApp(store service.IChatStoreService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(store).RegisterRoutes(app)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func seededStore() *stubChatStore {
	chat := entity.NewChat(time.Now())
	chat.Messages = append(chat.Messages, entity.NewUserMessage("hello", time.Now()))
	return &stubChatStore{
		chats:        []entity.Chat{chat},
		activeId:     chat.Id,
		modelType:    entity.ModelTypeBalanced,
		availability: llm.Available(),
	}
}

func TestChatController_GetAll(t *testing.T) {
	store := seededStore()
	app := newTestApp(store)

	status, env := do(t, app, fiber.MethodGet, "/chat/v1/chats", "")
	require.Equal(t, fiber.StatusOK, status)

	var data struct {
		Chats []struct {
			Id          uuid.UUID `json:"id"`
			LastMessage string    `json:"last_message"`
			IsActive    bool      `json:"is_active"`
		} `json:"chats"`
		ActiveChatId *uuid.UUID `json:"active_chat_id"`
		ModelType    string     `json:"model_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Chats, 1)
	assert.Equal(t, "hello", data.Chats[0].LastMessage)
	assert.True(t, data.Chats[0].IsActive)
	require.NotNil(t, data.ActiveChatId)
	assert.Equal(t, store.activeId, *data.ActiveChatId)
	assert.Equal(t, "Balanced", data.ModelType)
}

func TestChatController_SendMessage(t *testing.T) {
	tests := []struct {
		name       string
		sendErr    error
		avail      llm.Availability
		wantStatus int
		wantMsg    string
	}{
		{"accepted", nil, llm.Available(), fiber.StatusAccepted, "Message accepted"},
		{"busy", service.ErrBusy, llm.Available(), fiber.StatusConflict, service.ErrBusy.Error()},
		{
			"unavailable",
			service.ErrModelUnavailable,
			llm.Unavailable(llm.ReasonModelDownloading),
			fiber.StatusServiceUnavailable,
			llm.Unavailable(llm.ReasonModelDownloading).Describe(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			store.sendErr = tt.sendErr
			store.availability = tt.avail
			app := newTestApp(store)

			status, env := do(t, app, fiber.MethodPost, "/chat/v1/messages", `{"text":"hi there"}`)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, env.Message)
			assert.Equal(t, "hi there", store.sentText)
		})
	}
}

func TestChatController_SendMessage_BadBody(t *testing.T) {
	app := newTestApp(seededStore())

	status, env := do(t, app, fiber.MethodPost, "/chat/v1/messages", `{"text":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestChatController_Select(t *testing.T) {
	store := seededStore()
	other := entity.NewChat(time.Now())
	store.chats = append(store.chats, other)
	app := newTestApp(store)

	status, _ := do(t, app, fiber.MethodPut, "/chat/v1/chats/"+other.Id.String()+"/select", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, other.Id, store.activeId)

	status, env := do(t, app, fiber.MethodPut, "/chat/v1/chats/"+uuid.NewString()+"/select", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Chat not found", env.Message)

	status, _ = do(t, app, fiber.MethodPut, "/chat/v1/chats/not-a-uuid/select", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatController_Delete(t *testing.T) {
	store := seededStore()
	app := newTestApp(store)
	id := uuid.New()

	status, _ := do(t, app, fiber.MethodDelete, "/chat/v1/chats/"+id.String(), "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uuid.UUID{id}, store.deleted)
}

func TestChatController_GetActive_None(t *testing.T) {
	app := newTestApp(&stubChatStore{availability: llm.Available()})

	status, _ := do(t, app, fiber.MethodGet, "/chat/v1/chats/active", "")

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestChatController_Create(t *testing.T) {
	store := seededStore()
	app := newTestApp(store)

	status, env := do(t, app, fiber.MethodPost, "/chat/v1/chats", "")

	require.Equal(t, fiber.StatusCreated, status)
	var data struct {
		Title    string `json:"title"`
		IsActive bool   `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "New Chat", data.Title)
	assert.True(t, data.IsActive)
	assert.Len(t, store.chats, 2)
}

func TestChatController_SetModelType(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   entity.ModelType
	}{
		{"valid", `{"model_type":"Creative"}`, fiber.StatusOK, entity.ModelTypeCreative},
		{"unknown", `{"model_type":"Chaotic"}`, fiber.StatusBadRequest, entity.ModelTypeBalanced},
		{"missing", `{}`, fiber.StatusBadRequest, entity.ModelTypeBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			app := newTestApp(store)

			status, _ := do(t, app, fiber.MethodPut, "/chat/v1/model-type", tt.body)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, store.modelType)
		})
	}
}

func TestChatController_Availability(t *testing.T) {
	store := seededStore()
	store.availability = llm.Unavailable(llm.ReasonFeatureDisabled)
	app := newTestApp(store)

	status, env := do(t, app, fiber.MethodGet, "/chat/v1/availability", "")
	require.Equal(t, fiber.StatusOK, status)

	var data struct {
		Available bool   `json:"available"`
		Reason    string `json:"reason"`
		Indicator string `json:"indicator"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Available)
	assert.Equal(t, "feature_disabled", data.Reason)
	assert.Equal(t, "disabled", data.Indicator)
}
