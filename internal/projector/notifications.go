package projector

import (
	"context"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/jsoncodec"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

// notificationsKey is the shared list an unspecified downstream worker drains.
const notificationsKey = "notifications"

func init() {
	Register(config.RoleNotifications, func(deps Deps) (Projector, error) {
		return &notifications{kv: deps.KV, logger: deps.Logger}, nil
	})
}

// notifications pushes a compact record for every event onto a shared Redis
// list. Duplicate pushes on redelivery are acceptable; the downstream worker
// deduplicates or tolerates them.
type notifications struct {
	kv     storage.KeyValue
	logger logging.ServiceLogger
}

type notificationRecord struct {
	Topic     string         `json:"topic"`
	EventType string         `json:"event_type"`
	UserID    int64          `json:"user_id"`
	Data      map[string]any `json:"data"`
}

func (n *notifications) Role() config.Role { return config.RoleNotifications }

func (n *notifications) Bootstrap(ctx context.Context) error { return nil }

func (n *notifications) Project(ctx context.Context, d Delivery) error {
	record, err := jsoncodec.Marshal(notificationRecord{
		Topic:     d.Topic,
		EventType: d.Event.EventType,
		UserID:    d.Event.UserID,
		Data:      d.Event.Data,
	})
	if err != nil {
		return err
	}
	if err := n.kv.LPush(ctx, notificationsKey, record); err != nil {
		return err
	}
	n.logger.Info("notification queued", logging.LogFields{
		"topic":      d.Topic,
		"event_type": d.Event.EventType,
		"user_id":    d.Event.UserID,
	})
	return nil
}
