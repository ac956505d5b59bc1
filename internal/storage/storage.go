// Package storage owns the per-process connections to the projection stores.
// Each process opens exactly one connection per backend at start and reuses it
// for the process lifetime; there is no pooling because each role writes a
// disjoint set of tables and keys.
package storage

import "context"

// Relational is the surface projectors need from the relational store.
type Relational interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// KeyValue is the surface projectors need from the key-value store.
type KeyValue interface {
	LPush(ctx context.Context, key string, value []byte) error
	HIncrBy(ctx context.Context, key, field string, incr int64) error
}
