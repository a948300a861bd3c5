// Package storage provides the key-value cache behind wallet session
// artifacts and per-address credential records. The browser localStorage the
// web client used maps onto this interface; implementations must support
// prefix enumeration so session purges can sweep related keys in bulk.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// KV is the opaque key-value cache consumed by the wallet session manager
// and the humanity credential cache. Values are stored verbatim; callers own
// serialization.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix, used for bulk purges.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// DeletePrefix removes every key with the given prefix. Shared helper so all
// implementations purge identically.
func DeletePrefix(ctx context.Context, kv KV, prefix string) error {
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
