package projector

import (
	"context"
	"fmt"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

func init() {
	Register(config.RoleAnalytics, func(deps Deps) (Projector, error) {
		return &analytics{kv: deps.KV, logger: deps.Logger}, nil
	})
}

// analytics increments a per-day, per-event-type counter for every event.
// The increment is not idempotent: redelivery after a crash inflates counts.
// That drift is an accepted approximation for rolling dashboards, not an
// exactness guarantee.
type analytics struct {
	kv     storage.KeyValue
	logger logging.ServiceLogger
}

func (a *analytics) Role() config.Role { return config.RoleAnalytics }

func (a *analytics) Bootstrap(ctx context.Context) error { return nil }

func (a *analytics) Project(ctx context.Context, d Delivery) error {
	key := fmt.Sprintf("analytics:%s", d.Event.Day())
	field := d.Event.EventType
	if field == "" {
		field = "unknown"
	}

	if err := a.kv.HIncrBy(ctx, key, field, 1); err != nil {
		return err
	}
	a.logger.Info("analytics counter incremented", logging.LogFields{
		"key":   key,
		"field": field,
	})
	return nil
}
