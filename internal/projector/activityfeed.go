package projector

import (
	"context"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

const activityFeedDDL = `create table if not exists activity_feed(
	id bigserial primary key,
	user_id bigint,
	event_type text,
	entity text,
	entity_id bigint,
	ts timestamptz default now(),
	payload jsonb not null
)`

const activityFeedInsert = `insert into activity_feed(user_id,event_type,entity,entity_id,payload)
values ($1,$2,$3,$4,$5::jsonb)`

func init() {
	Register(config.RoleActivityFeed, func(deps Deps) (Projector, error) {
		return &activityFeed{db: deps.DB, logger: deps.Logger}, nil
	})
}

// activityFeed appends one row per event to an append-only feed table. The
// entity kind and id are derived heuristically: a payload carrying task_id is
// a task event, everything else is generic. Rows are keyed by a generated id,
// so redelivery produces a duplicate row; acceptable for a feed.
type activityFeed struct {
	db     storage.Relational
	logger logging.ServiceLogger
}

func (a *activityFeed) Role() config.Role { return config.RoleActivityFeed }

func (a *activityFeed) Bootstrap(ctx context.Context) error {
	return a.db.Exec(ctx, activityFeedDDL)
}

func (a *activityFeed) Project(ctx context.Context, d Delivery) error {
	entity := "generic"
	var entityID any
	if id, ok := d.Event.DataInt64("task_id"); ok {
		entity = "task"
		entityID = id
	}

	if err := a.db.Exec(ctx, activityFeedInsert,
		d.Event.UserID, d.Event.EventType, entity, entityID, string(d.Raw),
	); err != nil {
		return err
	}
	a.logger.Info("feed entry inserted", logging.LogFields{
		"event_type": d.Event.EventType,
		"entity":     entity,
		"entity_id":  entityID,
	})
	return nil
}
