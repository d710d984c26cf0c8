package trackjob

import "context"

// Store exposes job record persistence operations.
type Store interface {
	Get(ctx context.Context, matchID string) (Job, bool, error)
	List(ctx context.Context) ([]Job, error)
	Save(ctx context.Context, job Job) error
	Delete(ctx context.Context, matchID string) error
}
