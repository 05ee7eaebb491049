// Package chatbot is the model gateway used by the chat store.
// It turns chat turns and a generation profile into provider requests.
package chatbot

import (
	"context"

	"apin-chat/internal/constant"
	"apin-chat/internal/entity"
	"apin-chat/internal/pkg/logger"
	"apin-chat/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const module = "ModelGateway"

// ModelGateway is the capability boundary in front of the language model.
type ModelGateway interface {
	Availability(ctx context.Context) llm.Availability
	GenerateResponse(ctx context.Context, messages []entity.Message, modelType entity.ModelType) (string, error)
	GenerateTitle(ctx context.Context, seed string) (string, error)
}

type Gateway struct {
	provider llm.LLMProvider
	enabled  bool
	inFlight *semaphore.Weighted
	probes   singleflight.Group
	tracer   trace.Tracer
	logger   logger.ILogger
}

var _ ModelGateway = &Gateway{}

// NewGateway wraps provider. maxConcurrent bounds simultaneous response generations;
// requests beyond it fail with a busy GenerationError.
func NewGateway(provider llm.LLMProvider, enabled bool, maxConcurrent int64, log logger.ILogger) *Gateway {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Gateway{
		provider: provider,
		enabled:  enabled,
		inFlight: semaphore.NewWeighted(maxConcurrent),
		tracer:   otel.Tracer("apin-chat/chatbot"),
		logger:   log,
	}
}

func (g *Gateway) Availability(ctx context.Context) llm.Availability {
	if !g.enabled {
		return llm.Unavailable(llm.ReasonFeatureDisabled)
	}

	v, _, _ := g.probes.Do("availability", func() (interface{}, error) {
		ctx, span := g.tracer.Start(ctx, "chatbot.Availability")
		defer span.End()

		a := g.provider.Availability(ctx)
		span.SetAttributes(
			attribute.Bool("llm.available", a.Available),
			attribute.String("llm.unavailable_reason", string(a.Reason)),
		)
		return a, nil
	})
	return v.(llm.Availability)
}

func (g *Gateway) GenerateResponse(ctx context.Context, messages []entity.Message, modelType entity.ModelType) (string, error) {
	if !g.enabled {
		return "", &llm.GenerationError{Kind: llm.KindUnavailable}
	}
	if !g.inFlight.TryAcquire(1) {
		return "", &llm.GenerationError{Kind: llm.KindBusy}
	}
	defer g.inFlight.Release(1)

	ctx, span := g.tracer.Start(ctx, "chatbot.GenerateResponse", trace.WithAttributes(
		attribute.String("chat.model_type", string(modelType)),
		attribute.Int("chat.turns", len(messages)),
	))
	defer span.End()

	history := BuildHistory(modelType.Instructions(), messages)

	g.logger.Debug(module, "Generating response", map[string]interface{}{
		"model_type": modelType,
		"turns":      len(history),
	})

	reply, err := g.provider.Chat(ctx, history, llm.WithTemperature(modelType.Temperature()))
	if err != nil {
		genErr := llm.NewGenerationError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(genErr.Kind))
		g.logger.Error(module, "Response generation failed", map[string]interface{}{
			"kind":  genErr.Kind,
			"error": err.Error(),
		})
		return "", genErr
	}

	g.logger.Info(module, "Received response from model", map[string]interface{}{
		"model_type": modelType,
		"length":     len(reply),
	})
	return reply, nil
}

// GenerateTitle returns the raw model output; callers format it.
func (g *Gateway) GenerateTitle(ctx context.Context, seed string) (string, error) {
	if !g.enabled {
		return "", &llm.GenerationError{Kind: llm.KindUnavailable}
	}

	ctx, span := g.tracer.Start(ctx, "chatbot.GenerateTitle")
	defer span.End()

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.TitleInstructions},
		{Role: constant.ChatMessageRoleUser, Content: seed},
	}

	title, err := g.provider.Chat(ctx, history,
		llm.WithTemperature(entity.ModelTypePrecise.Temperature()),
		llm.WithMaxTokens(constant.TitleMaxTokens),
	)
	if err != nil {
		genErr := llm.NewGenerationError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(genErr.Kind))
		g.logger.Warn(module, "Title generation failed", map[string]interface{}{
			"kind":  genErr.Kind,
			"error": err.Error(),
		})
		return "", genErr
	}
	return title, nil
}

// BuildHistory prepends the system instructions and maps chat turns to provider messages.
// Pending placeholders are never sent.
func BuildHistory(instructions string, messages []entity.Message) []llm.Message {
	history := make([]llm.Message, 0, len(messages)+1)
	history = append(history, llm.Message{Role: constant.ChatMessageRoleSystem, Content: instructions})
	for _, m := range messages {
		if m.Pending {
			continue
		}
		role := constant.ChatMessageRoleAssistant
		if m.IsUser() {
			role = constant.ChatMessageRoleUser
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history
}
