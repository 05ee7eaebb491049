package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	DefaultChatTitle  = "New Chat"
	NoMessagesPreview = "No messages"

	// Titles longer than MaxTitleLength are cut to TruncatedTitleLength plus TitleEllipsis.
	MaxTitleLength       = 30
	TruncatedTitleLength = 27
	TitleEllipsis        = "..."
	TitleMaxTokens       = 24

	// Storage key of the chat list blob.
	StoredChatsKey = "stored_chats"

	BalancedInstructions = `You are Apin, a helpful AI assistant. Respond conversationally and be concise.
Keep your responses friendly and natural while being helpful and informative.`

	CreativeInstructions = `You are Apin, a creative AI assistant. Feel free to be imaginative, expressive,
and think outside the box. Use creative language and explore interesting perspectives
while remaining helpful.`

	PreciseInstructions = `You are Apin, a precise AI assistant. Focus on accuracy, facts, and clear information.
Provide well-structured responses with specific details. Respond as briefly as possible
while maintaining completeness.`

	TitleInstructions = `Create a very short title (3-5 words) for a conversation that starts with this message. Return only the title without quotes or additional text.`

	// Assistant turns written in place of a failed response.
	ResponseFailedMessage      = "Sorry, I wasn't able to respond. Please try again."
	ResponseUnavailableMessage = "Sorry, the language model isn't available right now. Please try again later."
	ResponseTimeoutMessage     = "Sorry, the language model took too long to respond. Please try again."
	ResponseBusyMessage        = "Sorry, I'm still working on another reply. Please try again in a moment."

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"
	OllamaChatEndpoint   = "/api/chat"
	OllamaTagsEndpoint   = "/api/tags"
	OllamaPullEndpoint   = "/api/pull"
)
