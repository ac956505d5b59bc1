// Package kafka provides the default Kafka transport for the fan-out
// consumer. Offsets are committed automatically by the consumer group, giving
// at-least-once delivery: a crash between projection and commit reprocesses
// the message.
package kafka

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/taskstream/fanout/internal/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "kafka"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

// SubscriberFactory allows overriding the subscriber creation for testing.
var SubscriberFactory = func(cfg kafka.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	return kafka.NewSubscriber(cfg, logger)
}

func init() {
	transport.Register(TransportName, Build)
	transport.RegisterKeyExtractor(func(msg *message.Message) string {
		if key, ok := kafka.MessageKeyFromCtx(msg.Context()); ok {
			return string(key)
		}
		return ""
	})
}

// Build creates a new Kafka transport. The publisher keys messages by the
// partition_key metadata set by producers; the subscriber joins the configured
// consumer group and starts from the configured initial offset when the group
// has no committed one.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	brokers := cfg.GetKafkaBrokers()

	marshaler := kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(transport.MetadataPartitionKey), nil
	})

	publisher, err := PublisherFactory(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: marshaler,
		},
		logger,
	)
	if err != nil {
		return transport.Transport{}, err
	}

	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	if strings.EqualFold(cfg.GetKafkaOffsetReset(), "latest") {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	subscriber, err := SubscriberFactory(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			ConsumerGroup:         cfg.GetKafkaConsumerGroup(),
			OverwriteSaramaConfig: saramaConfig,
		},
		logger,
	)
	if err != nil {
		return transport.Transport{}, err
	}

	return transport.Transport{
		Publisher:  publisher,
		Subscriber: subscriber,
	}, nil
}
