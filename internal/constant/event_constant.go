package constant

// Topic carrying chat store events on the in-process bus.
const ChatEventsTopic = "chat_events"

const (
	EventChatCreated         = "CHAT_CREATED"
	EventChatDeleted         = "CHAT_DELETED"
	EventChatSelected        = "CHAT_SELECTED"
	EventChatsCleared        = "CHATS_CLEARED"
	EventMessageSent         = "MESSAGE_SENT"
	EventResponseCompleted   = "RESPONSE_COMPLETED"
	EventResponseFailed      = "RESPONSE_FAILED"
	EventTitleUpdated        = "TITLE_UPDATED"
	EventModelUnavailable    = "MODEL_UNAVAILABLE"
	EventAvailabilityChanged = "AVAILABILITY_CHANGED"
	EventModelTypeChanged    = "MODEL_TYPE_CHANGED"
)
