// Package metadata is a small key/value repository over the local SQLite
// database. It backs the token store and any other per-device settings.
package metadata

import "context"

// Repository stores opaque byte values by key. Get returns sql.ErrNoRows
// (wrapped) when the key is absent; callers match with errors.Is.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
