// Package publish serialises envelopes onto a topic through any configured
// transport. The consumer never publishes; this is the producer-side contract
// used by the emit tool and by tests driving the consumer end to end.
package publish

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/taskstream/fanout/internal/event"
	"github.com/taskstream/fanout/internal/ids"
	transportpkg "github.com/taskstream/fanout/internal/transport"
)

var (
	ErrPublisherRequired = errors.New("publish: publisher is required")
	ErrTopicRequired     = errors.New("publish: topic is required")
)

// NewMessage converts an envelope into a Watermill message with a ULID UUID
// and the optional partition key in metadata.
func NewMessage(env event.Envelope, key string) (*message.Message, error) {
	payload, err := event.Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(ids.CreateULID(), payload)
	if key != "" {
		msg.Metadata.Set(transportpkg.MetadataPartitionKey, key)
	}
	return msg, nil
}

// Publish encodes the envelope and publishes it to the topic.
func Publish(ctx context.Context, publisher message.Publisher, topic string, env event.Envelope, key string) error {
	if publisher == nil {
		return ErrPublisherRequired
	}
	if topic == "" {
		return ErrTopicRequired
	}

	msg, err := NewMessage(env, key)
	if err != nil {
		return err
	}

	if ctx != nil {
		msg.SetContext(ctx)
	}

	return publisher.Publish(topic, msg)
}
