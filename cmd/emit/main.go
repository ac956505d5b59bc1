// Command emit publishes a single test envelope to a topic through the
// configured transport. Useful for smoke-testing a consumer deployment:
//
//	emit -topic task-events -type task_created -user 5 -data '{"task_id":42,"title":"Fix bug"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/event"
	"github.com/taskstream/fanout/internal/jsoncodec"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/publish"
	transportpkg "github.com/taskstream/fanout/internal/transport"
	_ "github.com/taskstream/fanout/internal/transport/channel"
	_ "github.com/taskstream/fanout/internal/transport/kafka"
	_ "github.com/taskstream/fanout/internal/transport/nats"
	_ "github.com/taskstream/fanout/internal/transport/rabbitmq"
)

func main() {
	var (
		topic     = flag.String("topic", "task-events", "topic to publish to")
		eventType = flag.String("type", "task_created", "event_type tag")
		userID    = flag.Int64("user", 0, "acting user id (0 = system)")
		key       = flag.String("key", "", "optional partition key")
		data      = flag.String("data", "", "JSON object for the data payload")
		metadata  = flag.String("metadata", "", "JSON object for the metadata bag")
	)
	flag.Parse()

	if err := run(*topic, *eventType, *userID, *key, *data, *metadata); err != nil {
		fmt.Fprintln(os.Stderr, "emit:", err)
		os.Exit(1)
	}
}

func run(topic, eventType string, userID int64, key, data, metadata string) error {
	ctx := context.Background()
	logger := logging.NewSlogServiceLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	env := event.New(eventType)
	env.UserID = userID
	if data != "" {
		if err := jsoncodec.Unmarshal([]byte(data), &env.Data); err != nil {
			return fmt.Errorf("parse -data: %w", err)
		}
	}
	if metadata != "" {
		if err := jsoncodec.Unmarshal([]byte(metadata), &env.Metadata); err != nil {
			return fmt.Errorf("parse -metadata: %w", err)
		}
	}

	conf, err := config.FromEnv()
	if err != nil {
		return err
	}

	tr, err := transportpkg.Build(ctx, conf, logging.NewWatermillAdapter(logger))
	if err != nil {
		return err
	}
	defer tr.Publisher.Close()

	if err := publish.Publish(ctx, tr.Publisher, topic, env, key); err != nil {
		return err
	}
	logger.Info("envelope published", logging.LogFields{
		"topic":      topic,
		"event_type": eventType,
		"user_id":    userID,
	})
	return nil
}
