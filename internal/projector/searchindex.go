package projector

import (
	"context"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

const searchIndexDDL = `create table if not exists search_index_tasks(
	task_id bigint primary key,
	search tsvector
)`

const searchIndexUpsert = `insert into search_index_tasks(task_id, search)
values ($1, to_tsvector('simple', $2))
on conflict (task_id) do update
set search = excluded.search`

func init() {
	Register(config.RoleSearchIndex, func(deps Deps) (Projector, error) {
		return &searchIndex{db: deps.DB, logger: deps.Logger}, nil
	})
}

// searchIndex rebuilds the full-text document for a task whenever an event
// carries its task_id, concatenating title and description from the payload.
// The upsert is keyed by task_id so the last write wins, which makes this the
// one projection that is safe under redelivery by construction. Events without
// a task_id are skipped: search indexing is task-specific.
type searchIndex struct {
	db     storage.Relational
	logger logging.ServiceLogger
}

func (s *searchIndex) Role() config.Role { return config.RoleSearchIndex }

func (s *searchIndex) Bootstrap(ctx context.Context) error {
	return s.db.Exec(ctx, searchIndexDDL)
}

func (s *searchIndex) Project(ctx context.Context, d Delivery) error {
	taskID, ok := d.Event.DataInt64("task_id")
	if !ok {
		s.logger.Info("reindex skipped, no task_id", logging.LogFields{
			"event_type": d.Event.EventType,
		})
		return nil
	}

	title, _ := d.Event.DataString("title")
	description, _ := d.Event.DataString("description")
	text := title + " " + description

	if err := s.db.Exec(ctx, searchIndexUpsert, taskID, text); err != nil {
		return err
	}
	s.logger.Info("task reindexed", logging.LogFields{"task_id": taskID})
	return nil
}
