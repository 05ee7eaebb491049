package bootstrap

import (
	"context"
	"fmt"

	"apin-chat/internal/config"
	"apin-chat/internal/constant"
	"apin-chat/internal/controller"
	"apin-chat/internal/entity"
	"apin-chat/internal/handler"
	"apin-chat/internal/pkg/logger"
	"apin-chat/internal/repository/implementation"
	"apin-chat/internal/service"
	"apin-chat/internal/websocket"
	"apin-chat/pkg/chatbot"
	"apin-chat/pkg/events"
	"apin-chat/pkg/kvstore"
	"apin-chat/pkg/llm/factory"
	pktNats "apin-chat/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const containerModule = "Bootstrap"

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	EventStreamHandler *handler.EventStreamHandler

	// Core
	ChatStoreService service.IChatStoreService

	// Background Services (Exposed for main.go to run)
	EventRelayService service.IEventRelayService
	WebSocketHub      *websocket.Hub

	Logger logger.ILogger

	kvStore kvstore.Store
	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Logging
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Persistence
	kvStore, err := NewKVStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	chatRepository := implementation.NewChatRepository(kvStore, sysLogger)
	sysLogger.Info(containerModule, "Storage ready", map[string]interface{}{"driver": cfg.Storage.Driver})

	// 3. Model Gateway
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider:       cfg.Ai.LLMProvider,
		Model:          cfg.Ai.LLMModel,
		BaseURL:        cfg.Ai.ProviderBaseURL(),
		APIKey:         cfg.Ai.HFAPIKey,
		AutoPull:       cfg.Ai.AutoPull,
		RequestTimeout: cfg.Ai.RequestTimeout,
	})
	if err != nil {
		kvStore.Close()
		return nil, err
	}
	gateway := chatbot.NewGateway(llmProvider, cfg.Ai.Enabled, int64(cfg.Ai.MaxConcurrent), sysLogger)
	sysLogger.Info(containerModule, "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
		"enabled":  cfg.Ai.Enabled,
	})

	// 4. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := events.NewOrderedPubSub(watermillLogger)
	publishers := []events.Publisher{
		events.NewWatermillPublisher(pubSub, constant.ChatEventsTopic),
	}

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(containerModule, "Failed to connect to NATS, events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			publishers = append(publishers, natsPub)
		}
	}

	// 5. Chat Store
	defaultModelType, err := entity.ParseModelType(cfg.Ai.DefaultModelType)
	if err != nil {
		sysLogger.Warn(containerModule, "Invalid default model type, using Balanced", map[string]interface{}{"error": err.Error()})
		defaultModelType = entity.ModelTypeBalanced
	}
	chatStore := service.NewChatStoreService(
		gateway,
		chatRepository,
		events.Multi(publishers...),
		defaultModelType,
		sysLogger,
	)

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(wsLogger)
	relayService := service.NewEventRelayService(pubSub, constant.ChatEventsTopic, wsHub, sysLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatStore),
		EventStreamHandler: handler.NewEventStreamHandler(wsHub, wsLogger),
		ChatStoreService:   chatStore,
		EventRelayService:  relayService,
		WebSocketHub:       wsHub,
		Logger:             sysLogger,
		kvStore:            kvStore,
		pubSub:             pubSub,
		natsPub:            natsPub,
	}, nil
}

// Close waits for in-flight generations so their results are persisted, then releases resources.
func (c *Container) Close() {
	c.ChatStoreService.Wait()

	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn(containerModule, "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.kvStore.Close(); err != nil {
		c.Logger.Warn(containerModule, "Failed to close storage", map[string]interface{}{"error": err.Error()})
	}
	c.Logger.Sync()
}
