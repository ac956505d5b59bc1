// Package fanout hosts a multi-role event fan-out consumer built on Watermill.
// One process subscribes to the shared task-management topics (user activity,
// task events, analytics events, system notifications) under a single consumer
// group and projects every decoded event into the store owned by its configured
// ROLE: a Redis notification queue, a Postgres activity feed, rolling Redis
// analytics counters, a Postgres full-text search index, or an append-only
// Postgres audit log.
//
// Delivery is at-least-once: offsets are committed by the broker transport
// after handlers finish, so every projection is written to tolerate
// redelivery. Malformed payloads are logged and dropped so a single bad
// message never stalls a partition.
//
// The consumer daemon lives in cmd/fanout; cmd/emit publishes a test envelope
// through the same transport stack. See internal/projector for the five role
// strategies and internal/transport for the broker backends (kafka by default,
// plus rabbitmq, nats, and an in-memory channel for tests).
package fanout
