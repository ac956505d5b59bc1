// Command fanout runs the multi-role event fan-out consumer. The ROLE
// environment variable selects which projection this process applies; the
// process runs until SIGINT or SIGTERM and exits 0 after a clean shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/consumer"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/projector"
	"github.com/taskstream/fanout/internal/storage"
	transportpkg "github.com/taskstream/fanout/internal/transport"
	_ "github.com/taskstream/fanout/internal/transport/channel"
	_ "github.com/taskstream/fanout/internal/transport/kafka"
	_ "github.com/taskstream/fanout/internal/transport/nats"
	_ "github.com/taskstream/fanout/internal/transport/rabbitmq"
)

func main() {
	ctx := context.Background()
	base := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger := logging.NewSlogServiceLogger(base)

	conf, err := config.FromEnv()
	if err != nil {
		fatal(base, "invalid configuration", err)
	}
	if err := conf.Validate(); err != nil {
		fatal(base, "invalid configuration", err)
	}
	logger.Info("starting fan-out consumer", logging.LogFields{
		"role":     conf.Role,
		"topics":   conf.Topics,
		"group_id": conf.GroupID,
		"config":   conf.String(),
	})

	tr, err := transportpkg.Build(ctx, conf, logging.NewWatermillAdapter(logger))
	if err != nil {
		fatal(base, "failed to build transport", err)
	}

	// Exactly one connection per storage backend, opened once and reused for
	// the process lifetime.
	deps := projector.Deps{Logger: logger}
	var (
		pg *storage.Postgres
		kv *storage.Redis
	)
	if conf.Role.NeedsRelational() {
		if pg, err = storage.ConnectPostgres(ctx, conf.PostgresDSN); err != nil {
			fatal(base, "failed to connect to postgres", err)
		}
		deps.DB = pg
	}
	if conf.Role.NeedsKeyValue() {
		if kv, err = storage.ConnectRedis(ctx, conf.RedisURL); err != nil {
			fatal(base, "failed to connect to redis", err)
		}
		deps.KV = kv
	}

	proj, err := projector.Build(conf.Role, deps)
	if err != nil {
		fatal(base, "failed to build projector", err)
	}
	if err := proj.Bootstrap(ctx); err != nil {
		fatal(base, "projector bootstrap failed", err)
	}

	cons, err := consumer.New(conf, logger, tr.Subscriber, proj)
	if err != nil {
		fatal(base, "failed to build consumer", err)
	}

	// The signals plugin closes the router on SIGINT/SIGTERM; Run returns
	// once in-flight messages have finished.
	if err := cons.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("router stopped", err, nil)
	}

	// Release resources in reverse order of acquisition.
	if kv != nil {
		if err := kv.Close(); err != nil {
			logger.Error("error closing redis", err, nil)
		}
	}
	if pg != nil {
		if err := pg.Close(context.Background()); err != nil {
			logger.Error("error closing postgres", err, nil)
		}
	}
	logger.Info("shutdown complete", nil)
}

func fatal(base *slog.Logger, msg string, err error) {
	base.Error(msg, "error", err)
	os.Exit(1)
}
