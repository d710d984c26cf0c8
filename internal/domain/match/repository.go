package match

import "context"

// StatusRepository exposes live status persistence operations.
type StatusRepository interface {
	Get(ctx context.Context, matchID string) (LiveStatus, bool, error)
	Upsert(ctx context.Context, status LiveStatus) error
	Delete(ctx context.Context, matchID string) error
}
