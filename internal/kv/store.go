// Package kv provides the durable string key-value stores the offline record
// store is built on.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

var ErrClosed = errors.New("kv: store is closed")

// Store is a persistent string-keyed store of string values.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// MultiRemove deletes all keys in one step; absent keys are ignored.
	MultiRemove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
