package contract

import (
	"context"

	"apin-chat/internal/entity"
)

// ChatRepository persists the whole chat list as one unit.
// Implementations are best-effort: failures are logged, never returned.
type ChatRepository interface {
	Save(ctx context.Context, chats []entity.Chat)
	// Load returns an empty list when nothing is stored or the data cannot be decoded.
	Load(ctx context.Context) []entity.Chat
	Clear(ctx context.Context)
}
