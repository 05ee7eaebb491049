package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"apin-chat/internal/bootstrap"
	"apin-chat/internal/config"
	"apin-chat/internal/server"
	"apin-chat/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing stays a no-op unless OTEL_ENABLED=true
	shutdownTracer, err := tracer.InitTracer(ctx, tracer.Config{
		Enabled:     cfg.App.OtelEnabled,
		Endpoint:    cfg.App.OtelEndpoint,
		ServiceName: "apin-chat",
		Environment: cfg.App.Environment,
	})
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	defer shutdownTracer(context.Background())

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// 3. Start Background Services
	go container.WebSocketHub.Run(ctx)
	if err := container.EventRelayService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start event relay: %v", err)
	}

	// 4. Load chats and probe the model
	container.ChatStoreService.Init(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
