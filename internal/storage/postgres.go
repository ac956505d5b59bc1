package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Postgres wraps a single pgx connection and implements Relational.
type Postgres struct {
	conn *pgx.Conn
}

// ConnectPostgres opens one connection to the relational store and verifies it
// with a ping. An unreachable store is a startup failure, not something to
// retry into a degraded state.
func ConnectPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	return &Postgres{conn: conn}, nil
}

// Exec runs a statement, discarding the command tag.
func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.conn.Exec(ctx, sql, args...)
	return err
}

// Close releases the connection.
func (p *Postgres) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}
