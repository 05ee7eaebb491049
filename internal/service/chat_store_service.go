package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"apin-chat/internal/constant"
	"apin-chat/internal/entity"
	"apin-chat/internal/pkg/logger"
	"apin-chat/internal/repository/contract"
	"apin-chat/pkg/chatbot"
	"apin-chat/pkg/events"
	"apin-chat/pkg/llm"

	"github.com/google/uuid"
)

const chatStoreModule = "ChatStore"

var (
	ErrBusy             = errors.New("a response is already being generated")
	ErrModelUnavailable = errors.New("language model is unavailable")
)

// IChatStoreService owns every chat session and drives the send, respond, and
// title protocol. All read methods return copies.
type IChatStoreService interface {
	Init(ctx context.Context)
	CreateChat(ctx context.Context) entity.Chat
	DeleteChat(ctx context.Context, id uuid.UUID)
	SelectChat(ctx context.Context, id uuid.UUID) bool
	CheckAvailability(ctx context.Context) llm.Availability
	SendMessage(ctx context.Context, text string) error
	ClearAllChats(ctx context.Context) entity.Chat
	SetModelType(ctx context.Context, modelType entity.ModelType) error

	Chats() []entity.Chat
	ActiveChat() (entity.Chat, bool)
	ModelType() entity.ModelType
	ModelTypes() []entity.ModelType
	IsBusy() bool
	Availability() llm.Availability

	// Wait blocks until every background generation has finished.
	Wait()
}

type chatStoreService struct {
	mu           sync.Mutex
	chats        []entity.Chat
	activeChatId uuid.UUID
	modelType    entity.ModelType
	busy         bool
	availability llm.Availability

	// probeGen counts started probes, availabilityGen is the probe the cache came from.
	probeGen        uint64
	availabilityGen uint64

	// seq numbers events in mutation order. pubMu keeps publishing in that order.
	seq   uint64
	pubMu sync.Mutex

	gateway    chatbot.ModelGateway
	repository contract.ChatRepository
	publisher  events.Publisher
	logger     logger.ILogger

	now func() time.Time
	wg  sync.WaitGroup
}

func NewChatStoreService(
	gateway chatbot.ModelGateway,
	repository contract.ChatRepository,
	publisher events.Publisher,
	modelType entity.ModelType,
	log logger.ILogger,
) IChatStoreService {
	if _, err := entity.ParseModelType(string(modelType)); err != nil {
		modelType = entity.ModelTypeBalanced
	}
	return &chatStoreService{
		chats:        []entity.Chat{},
		modelType:    modelType,
		availability: llm.UnavailableOther("availability has not been checked yet"),
		gateway:      gateway,
		repository:   repository,
		publisher:    publisher,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Init loads the saved chats, makes sure one is active, and probes the model.
func (s *chatStoreService) Init(ctx context.Context) {
	chats := s.repository.Load(ctx)

	s.mu.Lock()
	s.chats = chats
	recovered := s.resolveInterruptedLocked()
	if len(s.chats) == 0 {
		chat := entity.NewChat(s.now())
		s.chats = append(s.chats, chat)
		s.activeChatId = chat.Id
		s.repository.Save(ctx, s.chats)
	} else {
		s.activeChatId = s.chats[0].Id
		if recovered > 0 {
			s.repository.Save(ctx, s.chats)
		}
	}
	count := len(s.chats)
	s.mu.Unlock()

	s.logger.Info(chatStoreModule, "Chat store initialized", map[string]interface{}{
		"chats":     count,
		"recovered": recovered,
	})

	s.CheckAvailability(ctx)
}

// resolveInterruptedLocked replaces placeholders saved by a run that ended mid-generation.
func (s *chatStoreService) resolveInterruptedLocked() int {
	recovered := 0
	for i := range s.chats {
		for j, m := range s.chats[i].Messages {
			if m.Pending {
				s.chats[i].Messages[j] = entity.NewAssistantMessage(constant.ResponseFailedMessage, m.CreatedAt)
				recovered++
			}
		}
	}
	return recovered
}

func (s *chatStoreService) CreateChat(ctx context.Context) entity.Chat {
	s.mu.Lock()
	chat := entity.NewChat(s.now())
	s.chats = append(s.chats, chat)
	s.activeChatId = chat.Id
	s.repository.Save(ctx, s.chats)

	s.unlockAndPublish(ctx, constant.EventChatCreated, map[string]interface{}{
		"chat_id": chat.Id.String(),
		"title":   chat.Title,
	})
	return chat.Clone()
}

func (s *chatStoreService) DeleteChat(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	idx := s.indexOfChatLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.chats = slices.Delete(s.chats, idx, idx+1)
	if s.activeChatId == id {
		s.activeChatId = uuid.Nil
		if len(s.chats) > 0 {
			s.activeChatId = s.chats[0].Id
		}
	}
	s.repository.Save(ctx, s.chats)

	s.unlockAndPublish(ctx, constant.EventChatDeleted, map[string]interface{}{
		"chat_id":        id.String(),
		"active_chat_id": idString(s.activeChatId),
	})
}

func (s *chatStoreService) SelectChat(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	if s.indexOfChatLocked(id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.activeChatId = id

	s.unlockAndPublish(ctx, constant.EventChatSelected, map[string]interface{}{
		"chat_id": id.String(),
	})
	return true
}

// CheckAvailability probes the gateway and caches the result. When probes
// overlap, only the most recently started one may update the cache.
func (s *chatStoreService) CheckAvailability(ctx context.Context) llm.Availability {
	s.mu.Lock()
	s.probeGen++
	gen := s.probeGen
	s.mu.Unlock()

	a := s.gateway.Availability(ctx)

	s.mu.Lock()
	if gen < s.availabilityGen {
		cached := s.availability
		s.mu.Unlock()
		return cached
	}
	s.availabilityGen = gen
	if s.availability == a {
		s.mu.Unlock()
		return a
	}
	s.availability = a
	s.logger.Info(chatStoreModule, "Model availability changed", map[string]interface{}{
		"availability": a.String(),
	})
	s.unlockAndPublish(ctx, constant.EventAvailabilityChanged, availabilityPayload(a))
	return a
}

// SendMessage appends the user turn and a pending placeholder, then generates the
// reply in the background. Generation failures never surface here.
func (s *chatStoreService) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	idx := s.indexOfChatLocked(s.activeChatId)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if !s.availability.Available {
		a := s.availability
		s.logger.Warn(chatStoreModule, "Message rejected, model unavailable", map[string]interface{}{
			"availability": a.String(),
		})
		s.unlockAndPublish(ctx, constant.EventModelUnavailable, availabilityPayload(a))
		return ErrModelUnavailable
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}

	now := s.now()
	userMessage := entity.NewUserMessage(text, now)
	placeholder := entity.NewPendingMessage(now)

	chat := &s.chats[idx]
	history := make([]entity.Message, 0, len(chat.Messages)+1)
	history = append(history, chat.Messages...)
	history = append(history, userMessage)
	chat.Messages = append(chat.Messages, userMessage, placeholder)

	s.repository.Save(ctx, s.chats)
	s.busy = true

	chatId := chat.Id
	modelType := s.modelType
	s.wg.Add(1)

	s.unlockAndPublish(ctx, constant.EventMessageSent, map[string]interface{}{
		"chat_id":        chatId.String(),
		"message_id":     userMessage.Id.String(),
		"placeholder_id": placeholder.Id.String(),
		"busy":           true,
	})

	go s.generateResponse(context.WithoutCancel(ctx), chatId, placeholder.Id, text, history, modelType)
	return nil
}

func (s *chatStoreService) generateResponse(
	ctx context.Context,
	chatId uuid.UUID,
	placeholderId uuid.UUID,
	seed string,
	history []entity.Message,
	modelType entity.ModelType,
) {
	defer s.wg.Done()

	reply, err := s.gateway.GenerateResponse(ctx, history, modelType)

	s.mu.Lock()
	now := s.now()
	resolved := entity.NewAssistantMessage(reply, now)
	if err != nil {
		resolved = entity.NewAssistantMessage(apologyFor(err), now)
	}
	s.busy = false

	chatIdx := s.indexOfChatLocked(chatId)
	msgIdx := -1
	if chatIdx >= 0 {
		msgIdx = s.chats[chatIdx].IndexOfMessage(placeholderId)
	}
	if msgIdx < 0 {
		s.logger.Warn(chatStoreModule, "Chat removed before response arrived, dropping result", map[string]interface{}{
			"chat_id": chatId.String(),
		})
		s.unlockAndPublish(ctx, constant.EventResponseFailed, map[string]interface{}{
			"chat_id": chatId.String(),
			"dropped": true,
			"busy":    false,
		})
		return
	}

	chat := &s.chats[chatIdx]
	chat.Messages[msgIdx] = resolved
	chat.UpdatedAt = now
	firstExchange := err == nil && len(chat.Messages) == 2
	s.repository.Save(ctx, s.chats)
	if firstExchange {
		s.wg.Add(1)
	}

	eventType := constant.EventResponseCompleted
	if err != nil {
		eventType = constant.EventResponseFailed
		s.logger.Error(chatStoreModule, "Response generation failed", map[string]interface{}{
			"chat_id": chatId.String(),
			"error":   err.Error(),
		})
	}
	s.unlockAndPublish(ctx, eventType, map[string]interface{}{
		"chat_id":    chatId.String(),
		"message_id": resolved.Id.String(),
		"content":    resolved.Content,
		"busy":       false,
	})

	if firstExchange {
		go s.generateTitle(ctx, chatId, seed)
	}
}

func (s *chatStoreService) generateTitle(ctx context.Context, chatId uuid.UUID, seed string) {
	defer s.wg.Done()

	raw, err := s.gateway.GenerateTitle(ctx, seed)
	if err != nil {
		s.logger.Warn(chatStoreModule, "Keeping default title", map[string]interface{}{
			"chat_id": chatId.String(),
			"error":   err.Error(),
		})
		return
	}
	title := FormatTitle(raw)

	s.mu.Lock()
	idx := s.indexOfChatLocked(chatId)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.chats[idx].Title = title
	s.repository.Save(ctx, s.chats)

	s.unlockAndPublish(ctx, constant.EventTitleUpdated, map[string]interface{}{
		"chat_id": chatId.String(),
		"title":   title,
	})
}

// ClearAllChats wipes storage and starts over with a single fresh chat.
func (s *chatStoreService) ClearAllChats(ctx context.Context) entity.Chat {
	s.mu.Lock()
	s.repository.Clear(ctx)
	chat := entity.NewChat(s.now())
	s.chats = []entity.Chat{chat}
	s.activeChatId = chat.Id
	s.repository.Save(ctx, s.chats)

	s.unlockAndPublish(ctx, constant.EventChatsCleared, map[string]interface{}{
		"active_chat_id": chat.Id.String(),
	})
	return chat.Clone()
}

func (s *chatStoreService) SetModelType(ctx context.Context, modelType entity.ModelType) error {
	if _, err := entity.ParseModelType(string(modelType)); err != nil {
		return err
	}

	s.mu.Lock()
	s.modelType = modelType

	s.unlockAndPublish(ctx, constant.EventModelTypeChanged, map[string]interface{}{
		"model_type": string(modelType),
	})
	return nil
}

func (s *chatStoreService) Chats() []entity.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.Clone()
	}
	return out
}

func (s *chatStoreService) ActiveChat() (entity.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfChatLocked(s.activeChatId)
	if idx < 0 {
		return entity.Chat{}, false
	}
	return s.chats[idx].Clone(), true
}

func (s *chatStoreService) ModelType() entity.ModelType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelType
}

func (s *chatStoreService) ModelTypes() []entity.ModelType {
	return slices.Clone(entity.AllModelTypes)
}

func (s *chatStoreService) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *chatStoreService) Availability() llm.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availability
}

func (s *chatStoreService) Wait() {
	s.wg.Wait()
}

func (s *chatStoreService) indexOfChatLocked(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	return slices.IndexFunc(s.chats, func(c entity.Chat) bool { return c.Id == id })
}

// unlockAndPublish must be called with s.mu held. The event gets the next
// sequence number under s.mu, and pubMu is taken before s.mu is released, so
// events leave in the same order as the mutations they describe.
func (s *chatStoreService) unlockAndPublish(ctx context.Context, eventType string, data map[string]interface{}) {
	s.seq++
	data["seq"] = s.seq
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: s.now(),
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error(chatStoreModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// FormatTitle cleans raw model output into a chat title.
func FormatTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.ReplaceAll(title, `"`, "")
	title = strings.Trim(title, "'")
	title = strings.TrimSpace(title)
	if title == "" {
		return constant.DefaultChatTitle
	}

	runes := []rune(title)
	if len(runes) > constant.MaxTitleLength {
		return string(runes[:constant.TruncatedTitleLength]) + constant.TitleEllipsis
	}
	return title
}

func apologyFor(err error) string {
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		return constant.ResponseFailedMessage
	}
	switch genErr.Kind {
	case llm.KindUnavailable:
		return constant.ResponseUnavailableMessage
	case llm.KindTimeout:
		return constant.ResponseTimeoutMessage
	case llm.KindBusy:
		return constant.ResponseBusyMessage
	default:
		return constant.ResponseFailedMessage
	}
}

func availabilityPayload(a llm.Availability) map[string]interface{} {
	return map[string]interface{}{
		"available": a.Available,
		"reason":    string(a.Reason),
		"detail":    a.Detail,
		"message":   a.Describe(),
		"indicator": string(a.Indicator()),
	}
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
