package metadata

import "context"

// Repository is a small key/value store for client-local state that must
// survive restarts, such as the stable device identifier.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
