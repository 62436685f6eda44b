package session

import "context"

// Store keeps one value per browser session. Nothing outlives the process.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	GetOrCreate(ctx context.Context, id string, create func() T) (T, error)
	NewID() string
}
