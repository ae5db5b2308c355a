package repositories

import "context"

// KeyValueStore is the persistence collaborator for the gallery: string
// values under string keys, whole-value reads and writes, no transactions.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error

	Close() error
}
