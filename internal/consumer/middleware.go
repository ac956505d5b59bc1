package consumer

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taskstream/fanout/internal/ids"
	"github.com/taskstream/fanout/internal/logging"
)

// registerMiddlewares installs the middleware chain. Registration order is
// execution order, so the drop-on-failure middleware is outermost: whatever
// error survives the retry middleware gets logged and swallowed, keeping a
// single bad message from stalling the loop.
func (c *Consumer) registerMiddlewares() {
	c.router.AddMiddleware(c.dropOnFailureMiddleware())
	c.router.AddMiddleware(c.correlationIDMiddleware())
	c.router.AddMiddleware(c.logMessagesMiddleware())
	c.router.AddMiddleware(c.tracerMiddleware())
	if c.conf.RetryMaxRetries > 0 {
		c.router.AddMiddleware(c.retryMiddleware())
	}
	c.router.AddMiddleware(middleware.Recoverer)
}

// dropOnFailureMiddleware implements the projection failure contract: log,
// count, drop, continue.
func (c *Consumer) dropOnFailureMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err == nil {
				return produced, nil
			}
			topic := message.SubscribeTopicFromCtx(msg.Context())
			projectionFailures.WithLabelValues(c.roleLabel, topic).Inc()
			c.logger.Error("projection failed, dropping message", err, logging.LogFields{
				"message_uuid": msg.UUID,
				"topic":        topic,
			})
			return nil, nil
		}
	}
}

// correlationIDMiddleware injects a correlation ID into the message metadata
// when missing.
func (c *Consumer) correlationIDMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			if _, ok := msg.Metadata["correlation_id"]; !ok {
				msg.Metadata["correlation_id"] = ids.CreateULID()
			}
			return h(msg)
		}
	}
}

// logMessagesMiddleware logs the payload and metadata of handled messages at
// debug level.
func (c *Consumer) logMessagesMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			c.logger.Debug("processing message", logging.LogFields{
				"message_uuid": msg.UUID,
				"payload":      string(msg.Payload),
				"metadata":     msg.Metadata,
			})
			return h(msg)
		}
	}
}

// retryMiddleware retries failed projections with exponential backoff, bounded
// by configuration.
func (c *Consumer) retryMiddleware() message.HandlerMiddleware {
	return middleware.Retry{
		MaxRetries:      c.conf.RetryMaxRetries,
		InitialInterval: c.conf.RetryInitialInterval,
		MaxInterval:     c.conf.RetryMaxInterval,
	}.Middleware
}

// tracerMiddleware wraps message handling in an OpenTelemetry span.
func (c *Consumer) tracerMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			tracer := otel.Tracer("fanout-consumer")
			ctx, span := tracer.Start(
				msg.Context(),
				"ProjectMessage",
			)
			defer span.End()
			msg.SetContext(ctx)

			span.SetAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("message.metadata", fmt.Sprintf("%v", msg.Metadata)),
			)
			return h(msg)
		}
	}
}
