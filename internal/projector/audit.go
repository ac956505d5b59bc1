package projector

import (
	"context"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

const auditDDL = `create table if not exists audit_logs(
	id bigserial primary key,
	user_id bigint,
	event_type text,
	ts timestamptz default now(),
	payload jsonb not null
)`

const auditInsert = `insert into audit_logs(user_id,event_type,payload)
values ($1,$2,$3::jsonb)`

func init() {
	Register(config.RoleAudit, func(deps Deps) (Projector, error) {
		return &audit{db: deps.DB, logger: deps.Logger}, nil
	})
}

// audit appends the verbatim wire payload of every event, regardless of type.
// Redelivery duplicates rows; audit trails tolerate over-recording, never
// under-recording.
type audit struct {
	db     storage.Relational
	logger logging.ServiceLogger
}

func (a *audit) Role() config.Role { return config.RoleAudit }

func (a *audit) Bootstrap(ctx context.Context) error {
	return a.db.Exec(ctx, auditDDL)
}

func (a *audit) Project(ctx context.Context, d Delivery) error {
	if err := a.db.Exec(ctx, auditInsert,
		d.Event.UserID, d.Event.EventType, string(d.Raw),
	); err != nil {
		return err
	}
	a.logger.Info("audit entry recorded", logging.LogFields{
		"event_type": d.Event.EventType,
		"user_id":    d.Event.UserID,
	})
	return nil
}
