package task

import "context"

// Storage persists a whole task collection. Implementations rewrite the
// backing file or table on every Save; there is no incremental diffing.
//
// Load returns an error for a missing or unreadable backing store so callers
// can decide how to recover.
type Storage interface {
	Load(ctx context.Context) ([]Task, error)
	Save(ctx context.Context, tasks []Task) error
	Close() error
}
