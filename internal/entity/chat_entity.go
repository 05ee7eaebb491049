package entity

import (
	"time"

	"apin-chat/internal/constant"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is a single turn inside a Chat.
// A pending message is the assistant placeholder awaiting a model result.
type Message struct {
	Id        uuid.UUID
	Content   string
	Role      MessageRole
	CreatedAt time.Time
	Pending   bool
}

func (m Message) IsUser() bool {
	return m.Role == MessageRoleUser
}

// Chat is one saved conversation.
type Chat struct {
	Id        uuid.UUID
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewChat(now time.Time) Chat {
	return Chat{
		Id:        uuid.New(),
		Title:     constant.DefaultChatTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewUserMessage(content string, now time.Time) Message {
	return Message{
		Id:        uuid.New(),
		Content:   content,
		Role:      MessageRoleUser,
		CreatedAt: now,
	}
}

func NewAssistantMessage(content string, now time.Time) Message {
	return Message{
		Id:        uuid.New(),
		Content:   content,
		Role:      MessageRoleAssistant,
		CreatedAt: now,
	}
}

func NewPendingMessage(now time.Time) Message {
	return Message{
		Id:        uuid.New(),
		Role:      MessageRoleAssistant,
		CreatedAt: now,
		Pending:   true,
	}
}

// LastMessage returns the content of the most recent turn for list previews.
func (c Chat) LastMessage() string {
	if len(c.Messages) == 0 {
		return constant.NoMessagesPreview
	}
	return c.Messages[len(c.Messages)-1].Content
}

func (c Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// IndexOfMessage returns the position of the message with the given id, or -1.
func (c Chat) IndexOfMessage(id uuid.UUID) int {
	for i, m := range c.Messages {
		if m.Id == id {
			return i
		}
	}
	return -1
}

// PendingCount reports how many placeholder turns the chat holds.
func (c Chat) PendingCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Pending {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no message storage with c.
func (c Chat) Clone() Chat {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
