package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	BrokerGoChannel = "gochannel"
	BrokerKafka     = "kafka"
)

// Config selects and configures the broker.
type Config struct {
	Broker       string
	KafkaBrokers []string
}

// WatermillPublisher publishes events as JSON watermill messages.
type WatermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// NewPublisher builds a publisher for cfg.Broker: an in-process gochannel
// (the default) or Kafka.
func NewPublisher(cfg Config, logger *slog.Logger) (*WatermillPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch strings.ToLower(cfg.Broker) {
	case "", BrokerGoChannel:
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		logger.Info("Event publisher ready", "broker", BrokerGoChannel)
		return NewWatermillPublisher(pubSub, logger), nil

	case BrokerKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka broker list is empty")
		}
		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		logger.Info("Event publisher ready", "broker", BrokerKafka, "brokers", cfg.KafkaBrokers)
		return NewWatermillPublisher(publisher, logger), nil

	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Broker)
	}
}

func (p *WatermillPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.ID)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"error", err,
			"topic", topic,
			"event_type", event.Type)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		"topic", topic,
		"event_type", event.Type,
		"event_id", event.ID)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
