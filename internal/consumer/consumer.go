// Package consumer wires the Watermill router that turns subscribed topics
// into projector invocations. One process handles every configured topic with
// the single projector chosen at startup; routing is static, not per-message.
package consumer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/event"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/projector"
	transportpkg "github.com/taskstream/fanout/internal/transport"
)

// Consumer hosts the router, the subscriber, and the active projector.
type Consumer struct {
	conf      *config.Config
	logger    logging.ServiceLogger
	router    *message.Router
	proj      projector.Projector
	roleLabel string
}

// New builds a consumer for the supplied configuration. The subscriber and
// projector are injected so tests can substitute in-memory implementations.
func New(conf *config.Config, log logging.ServiceLogger, subscriber message.Subscriber, proj projector.Projector) (*Consumer, error) {
	wmLogger := logging.NewWatermillAdapter(log)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("consumer: create router: %w", err)
	}
	router.AddPlugin(plugin.SignalsHandler)

	c := &Consumer{
		conf:      conf,
		logger:    log,
		router:    router,
		proj:      proj,
		roleLabel: strings.ReplaceAll(string(conf.Role), "-", "_"),
	}
	c.registerMiddlewares()
	c.registerMetrics()

	// Every role subscribes to the full topic list; filtering by relevance
	// happens inside the projector.
	for _, topic := range conf.Topics {
		name := fmt.Sprintf("%s_%s", c.roleLabel, topic)
		router.AddNoPublisherHandler(name, topic, subscriber, c.handleTopic(topic))
	}

	return c, nil
}

// handleTopic decodes one message and hands it to the projector. Undecodable
// payloads are logged and dropped so they never stall the partition.
func (c *Consumer) handleTopic(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		env, err := event.Decode(msg.Payload)
		if err != nil {
			decodeFailures.WithLabelValues(c.roleLabel, topic).Inc()
			c.logger.Error("dropping undecodable message", err, logging.LogFields{
				"message_uuid": msg.UUID,
				"topic":        topic,
			})
			return nil
		}

		d := projector.Delivery{
			Topic: topic,
			Key:   transportpkg.MessageKey(msg),
			Raw:   msg.Payload,
			Event: env,
		}
		if err := c.proj.Project(msg.Context(), d); err != nil {
			return err
		}

		eventsProjected.WithLabelValues(c.roleLabel, topic).Inc()
		return nil
	}
}

// Run starts the metrics endpoint and blocks on the router until the context
// is cancelled or a termination signal arrives. In-flight messages finish
// before the router closes.
func (c *Consumer) Run(ctx context.Context) error {
	c.startMetricsServer()
	return c.router.Run(ctx)
}

// Running is closed once all handlers are up. Useful in tests.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close shuts the router down gracefully.
func (c *Consumer) Close() error {
	return c.router.Close()
}

func (c *Consumer) startMetricsServer() {
	if c.conf.MetricsPort <= 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", c.conf.MetricsPort)
	c.logger.Info("starting metrics server", logging.LogFields{"address": addr})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			c.logger.Error("metrics server stopped", err, logging.LogFields{"address": addr})
		}
	}()
}
