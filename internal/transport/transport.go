// Package transport defines the interface and registry for the broker
// backends the daemon can consume from. Each implementation lives in its own
// sub-package and registers itself here.
package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataPartitionKey carries the producer-assigned partition/routing key in
// message metadata for transports without a native key concept.
const MetadataPartitionKey = "partition_key"

// Transport combines the publisher and subscriber pair produced by a builder.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Builder is the function signature for creating a transport from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error)

// Config provides the configuration values needed by transports. The narrow
// interface lets transports access only the keys they need without depending
// on the full config package.
type Config interface {
	// GetPubSubSystem returns the transport type name.
	GetPubSubSystem() string

	// Kafka
	GetKafkaBrokers() []string
	GetKafkaConsumerGroup() string
	GetKafkaOffsetReset() string

	// RabbitMQ
	GetRabbitMQURL() string

	// NATS
	GetNATSURL() string
}

// Registry maintains a mapping of transport names to their builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// DefaultRegistry is the global transport registry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new transport registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a transport builder to the registry. The name should match
// the PubSubSystem config value (e.g. "kafka", "rabbitmq").
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build creates a transport using the registered builder for the config's
// PubSubSystem.
func (r *Registry) Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	if cfg == nil {
		return Transport{}, fmt.Errorf("config is required")
	}

	name := cfg.GetPubSubSystem()

	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return Transport{}, fmt.Errorf("unknown transport: %q (registered: %v)", name, r.Names())
	}

	return builder(ctx, cfg, logger)
}

// Names returns the list of registered transport names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// Has returns true if a transport is registered with the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Register adds a transport builder to the default registry.
func Register(name string, builder Builder) {
	DefaultRegistry.Register(name, builder)
}

// Build creates a transport using the default registry.
func Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	return DefaultRegistry.Build(ctx, cfg, logger)
}

// KeyExtractor recovers the partition key of a consumed message for transports
// that carry it outside message metadata.
type KeyExtractor func(msg *message.Message) string

var (
	extractorsMu sync.RWMutex
	extractors   []KeyExtractor
)

// RegisterKeyExtractor adds a transport-specific key extractor consulted by
// MessageKey.
func RegisterKeyExtractor(f KeyExtractor) {
	extractorsMu.Lock()
	defer extractorsMu.Unlock()
	extractors = append(extractors, f)
}

// MessageKey returns the partition key of a consumed message, or the empty
// string when the producer did not set one.
func MessageKey(msg *message.Message) string {
	extractorsMu.RLock()
	defer extractorsMu.RUnlock()
	for _, f := range extractors {
		if key := f(msg); key != "" {
			return key
		}
	}
	return msg.Metadata.Get(MetadataPartitionKey)
}
