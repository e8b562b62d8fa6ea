// Package session provides per-session key/value state for the login
// pipeline, with in-memory and Redis backends.
//
// A Store is the state of one session. Values survive the round trip
// as strings, bools, and float64 numbers; richer types are not
// supported by the Redis backend.
package session

import (
	"context"
)

// Store is a handle on one session's key/value state. Get returns nil
// for a missing key; the error return is reserved for backend
// failures.
type Store interface {
	ID() string
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager hands out the state of individual sessions
type Manager interface {
	Session(sessionID string) Store
}
