package model

import (
	"time"

	"github.com/google/uuid"
)

// StoredChatsVersion is bumped whenever the blob layout changes.
const StoredChatsVersion = 1

// StoredChats is the JSON document persisted under the chat list key.
type StoredChats struct {
	Version int          `json:"version"`
	Chats   []StoredChat `json:"chats"`
}

type StoredChat struct {
	Id        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Messages  []StoredMessage `json:"messages"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type StoredMessage struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
	Pending   bool      `json:"is_processing"`
}
