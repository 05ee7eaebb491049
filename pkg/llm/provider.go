package llm

import "context"

// Message is one turn as a backend sees it. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Options tunes a single request. Zero values leave the backend default in place.
type Options struct {
	Temperature float64
	MaxTokens   int
}

type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider is a text generation backend.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate is Chat with a single user turn.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Availability probes whether requests can be served right now. It never
	// returns an error, failures map to an unavailable state.
	Availability(ctx context.Context) Availability
}
