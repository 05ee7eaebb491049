package service

import (
	"context"

	"apin-chat/internal/pkg/logger"
	"apin-chat/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const eventRelayModule = "EventRelay"

// Broadcaster receives encoded events for live clients.
type Broadcaster interface {
	Broadcast(data []byte)
}

// IEventRelayService forwards chat store events from the bus to live clients.
type IEventRelayService interface {
	Consume(ctx context.Context) error
}

type eventRelayService struct {
	subscriber  message.Subscriber
	topicName   string
	broadcaster Broadcaster
	logger      logger.ILogger
}

func NewEventRelayService(
	subscriber message.Subscriber,
	topicName string,
	broadcaster Broadcaster,
	log logger.ILogger,
) IEventRelayService {
	return &eventRelayService{
		subscriber:  subscriber,
		topicName:   topicName,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Consume subscribes and relays in the background until ctx is cancelled.
func (rs *eventRelayService) Consume(ctx context.Context) error {
	messages, err := rs.subscriber.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(msg)
		}
	}()

	return nil
}

func (rs *eventRelayService) processMessage(msg *message.Message) {
	// Undecodable messages are acked so they are not redelivered forever.
	defer msg.Ack()

	evt, err := events.Decode(msg.Payload)
	if err != nil {
		rs.logger.Error(eventRelayModule, "Failed to decode event", map[string]interface{}{"error": err.Error()})
		return
	}

	rs.broadcaster.Broadcast(msg.Payload)
	rs.logger.Debug(eventRelayModule, "Relayed event", map[string]interface{}{"type": evt.Type})
}
